package model

import (
	"time"

	"gorm.io/gorm"
)

// Message roles and statuses.
const (
	RoleUser   = "user"
	RoleAI     = "ai"
	RoleSystem = "system"

	MessagePending   = "pending"
	MessageCompleted = "completed"
	MessageError     = "error"
)

type Conversation struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AssistantID uint           `gorm:"not null;index:idx_conversation_assistant" json:"assistant_id"`
	SessionID   string         `gorm:"type:varchar(64);uniqueIndex:idx_conversation_session;not null" json:"session_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Assistant *Assistant `gorm:"foreignKey:AssistantID" json:"-"`
	Messages  []Message  `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

// Message is one turn in a conversation, ordered by creation time.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index:idx_message_conversation" json:"conversation_id"`
	Role           string    `gorm:"type:varchar(8);not null" json:"role"`
	Content        string    `gorm:"type:text" json:"content"`
	Tokens         int       `gorm:"default:0" json:"tokens"`
	Status         string    `gorm:"type:varchar(12);default:pending" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Message) TableName() string { return "messages" }
