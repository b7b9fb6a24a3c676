package service

import (
	"strings"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/config"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/pkg/apikey"
	"gorm.io/gorm"
)

type AssistantService struct {
	db       *gorm.DB
	defaults config.AssistantConfig
}

func NewAssistantService(db *gorm.DB, defaults config.AssistantConfig) *AssistantService {
	return &AssistantService{db: db, defaults: defaults}
}

func (s *AssistantService) reserved(name string) bool {
	for _, r := range s.defaults.ReservedNames {
		if strings.EqualFold(name, r) {
			return true
		}
	}
	return false
}

// Create persists a new assistant with a fresh API key and the default
// system prompt, returning only the minimal projection.
func (s *AssistantService) Create(name string, userID uint) (*model.AssistantBrief, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	if s.reserved(name) {
		return nil, apperr.ReservedName("This name is reserved")
	}

	var count int64
	s.db.Model(&model.Assistant{}).
		Where("user_id = ? AND name = ? AND deleted_at IS NULL", userID, name).
		Count(&count)
	if count > 0 {
		return nil, apperr.DuplicateName("An assistant with this name already exists")
	}

	key, err := apikey.New()
	if err != nil {
		return nil, apperr.Internal("Failed to generate API key")
	}

	assistant := &model.Assistant{
		UserID:   userID,
		Name:     name,
		Prompt:   s.defaults.DefaultPrompt,
		APIKey:   key,
		IsActive: true,
	}
	if err := s.db.Create(assistant).Error; err != nil {
		return nil, apperr.Internal("Failed to create assistant")
	}

	brief := assistant.Brief()
	return &brief, nil
}

func (s *AssistantService) List(userID uint) ([]model.Assistant, error) {
	var assistants []model.Assistant
	err := s.db.Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("created_at DESC").Find(&assistants).Error
	if err != nil {
		return nil, apperr.Internal("Failed to list assistants")
	}
	return assistants, nil
}

// GetOne loads full detail with nested active instructions, functions, and
// usage history newest-first. Absent and foreign-owned are both NotFound so
// existence never leaks across tenants.
func (s *AssistantService) GetOne(id, userID uint) (*model.Assistant, error) {
	var assistant model.Assistant
	err := s.db.
		Preload("Instructions", "is_active = ? AND deleted_at IS NULL", true).
		Preload("Functions", "is_active = ? AND deleted_at IS NULL", true).
		Preload("Usages", func(db *gorm.DB) *gorm.DB {
			return db.Order("day DESC")
		}).
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, userID).
		First(&assistant).Error
	if err != nil {
		return nil, apperr.NotFound("Assistant not found")
	}
	return &assistant, nil
}

// UpdatePrompt replaces the system prompt inside a transaction; the
// ownership check runs inside it and any failure rolls back entirely.
func (s *AssistantService) UpdatePrompt(id, userID uint, prompt string) error {
	return s.withOwned(id, userID, func(tx *gorm.DB, assistant *model.Assistant) error {
		if err := tx.Model(assistant).Update("prompt", prompt).Error; err != nil {
			return apperr.Internal("Failed to update prompt")
		}
		return nil
	})
}

func (s *AssistantService) Update(id, userID uint, updates map[string]interface{}) error {
	return s.withOwned(id, userID, func(tx *gorm.DB, assistant *model.Assistant) error {
		if raw, ok := updates["name"]; ok {
			name, _ := raw.(string)
			name = strings.TrimSpace(name)
			if name == "" {
				return apperr.Validation("Name is required")
			}
			if s.reserved(name) {
				return apperr.ReservedName("This name is reserved")
			}
			var count int64
			tx.Model(&model.Assistant{}).
				Where("user_id = ? AND name = ? AND id != ? AND deleted_at IS NULL", userID, name, id).
				Count(&count)
			if count > 0 {
				return apperr.DuplicateName("An assistant with this name already exists")
			}
			updates["name"] = name
		}
		if err := tx.Model(assistant).Updates(updates).Error; err != nil {
			return apperr.Internal("Failed to update assistant")
		}
		return nil
	})
}

func (s *AssistantService) Delete(id, userID uint) error {
	return s.withOwned(id, userID, func(tx *gorm.DB, assistant *model.Assistant) error {
		if err := tx.Delete(assistant).Error; err != nil {
			return apperr.Internal("Failed to delete assistant")
		}
		return nil
	})
}

// RegenerateKey rotates the assistant's API key and returns the new value.
func (s *AssistantService) RegenerateKey(id, userID uint) (string, error) {
	key, err := apikey.New()
	if err != nil {
		return "", apperr.Internal("Failed to generate API key")
	}
	err = s.withOwned(id, userID, func(tx *gorm.DB, assistant *model.Assistant) error {
		if err := tx.Model(assistant).Update("api_key", key).Error; err != nil {
			return apperr.Internal("Failed to rotate API key")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// withOwned runs fn in a transaction after verifying ownership inside it.
func (s *AssistantService) withOwned(id, userID uint, fn func(tx *gorm.DB, assistant *model.Assistant) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var assistant model.Assistant
		err := tx.Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, userID).
			First(&assistant).Error
		if err != nil {
			return apperr.NotFound("Assistant not found")
		}
		return fn(tx, &assistant)
	})
}
