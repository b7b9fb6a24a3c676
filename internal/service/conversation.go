package service

import (
	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"gorm.io/gorm"
)

type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// List returns an owned assistant's conversations with messages in creation
// order, newest conversation first.
func (s *ConversationService) List(assistantID, userID uint) ([]model.Conversation, error) {
	if _, err := ownedAssistant(s.db, assistantID, userID); err != nil {
		return nil, err
	}
	var conversations []model.Conversation
	err := s.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("assistant_id = ? AND deleted_at IS NULL", assistantID).
		Order("created_at DESC").Find(&conversations).Error
	if err != nil {
		return nil, apperr.Internal("Failed to list conversations")
	}
	return conversations, nil
}
