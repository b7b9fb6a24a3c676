package model

import (
	"time"
)

// Usage is a per-assistant per-day token ledger. Counters are incremented,
// never decremented; one row exists per (assistant, day).
type Usage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssistantID  uint      `gorm:"not null;uniqueIndex:idx_usage_assistant_day" json:"assistant_id"`
	Day          time.Time `gorm:"type:date;not null;uniqueIndex:idx_usage_assistant_day" json:"day"`
	InputTokens  int64     `gorm:"not null;default:0" json:"input_tokens"`
	OutputTokens int64     `gorm:"not null;default:0" json:"output_tokens"`
	Cost         float64   `gorm:"type:decimal(10,6);not null;default:0" json:"cost"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Usage) TableName() string { return "usages" }
