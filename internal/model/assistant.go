package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assistant is the user-owned chat entity: a system prompt plus attached
// instructions and callable functions, addressable by its own API key.
type Assistant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_assistant_user" json:"user_id"`
	Name      string         `gorm:"type:varchar(128);not null;index:idx_assistant_name" json:"name"`
	Prompt    string         `gorm:"type:text" json:"prompt"`
	APIKey    string         `gorm:"type:varchar(64);uniqueIndex:idx_assistant_api_key;not null" json:"-"`
	Config    datatypes.JSON `gorm:"type:json" json:"config,omitempty"`
	IsActive  bool           `gorm:"default:true;index:idx_assistant_active" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User         *User         `gorm:"foreignKey:UserID" json:"-"`
	Instructions []Instruction `gorm:"foreignKey:AssistantID" json:"instructions,omitempty"`
	Functions    []Function    `gorm:"foreignKey:AssistantID" json:"functions,omitempty"`
	Usages       []Usage       `gorm:"foreignKey:AssistantID" json:"usages,omitempty"`
}

func (Assistant) TableName() string { return "assistants" }

type AssistantBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (a *Assistant) Brief() AssistantBrief {
	return AssistantBrief{ID: a.ID, Name: a.Name}
}
