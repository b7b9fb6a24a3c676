package model

import (
	"time"

	"gorm.io/gorm"
)

// Instruction is a named block of additional system-prompt text attached to
// an assistant. Active instructions are concatenated after the prompt.
type Instruction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AssistantID uint           `gorm:"not null;index:idx_instruction_assistant" json:"assistant_id"`
	Name        string         `gorm:"type:varchar(128);not null" json:"name"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Assistant *Assistant `gorm:"foreignKey:AssistantID" json:"-"`
}

func (Instruction) TableName() string { return "instructions" }
