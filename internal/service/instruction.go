package service

import (
	"strings"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"gorm.io/gorm"
)

type InstructionService struct {
	db *gorm.DB
}

func NewInstructionService(db *gorm.DB) *InstructionService {
	return &InstructionService{db: db}
}

// ownedAssistant resolves an assistant only if the caller owns it; foreign
// and missing look identical.
func ownedAssistant(tx *gorm.DB, assistantID, userID uint) (*model.Assistant, error) {
	var assistant model.Assistant
	err := tx.Where("id = ? AND user_id = ? AND deleted_at IS NULL", assistantID, userID).
		First(&assistant).Error
	if err != nil {
		return nil, apperr.NotFound("Assistant not found")
	}
	return &assistant, nil
}

func (s *InstructionService) Create(assistantID, userID uint, name, content string) (*model.Instruction, error) {
	name = strings.TrimSpace(name)
	if name == "" || content == "" {
		return nil, apperr.Validation("Name and content are required")
	}

	var instruction *model.Instruction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ownedAssistant(tx, assistantID, userID); err != nil {
			return err
		}

		var count int64
		tx.Model(&model.Instruction{}).
			Where("assistant_id = ? AND name = ? AND is_active = ? AND deleted_at IS NULL", assistantID, name, true).
			Count(&count)
		if count > 0 {
			return apperr.DuplicateName("An instruction with this name already exists")
		}

		instruction = &model.Instruction{
			AssistantID: assistantID,
			Name:        name,
			Content:     content,
			IsActive:    true,
		}
		if err := tx.Create(instruction).Error; err != nil {
			return apperr.Internal("Failed to create instruction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return instruction, nil
}

func (s *InstructionService) List(assistantID, userID uint) ([]model.Instruction, error) {
	if _, err := ownedAssistant(s.db, assistantID, userID); err != nil {
		return nil, err
	}
	var instructions []model.Instruction
	err := s.db.Where("assistant_id = ? AND deleted_at IS NULL", assistantID).
		Order("created_at ASC").Find(&instructions).Error
	if err != nil {
		return nil, apperr.Internal("Failed to list instructions")
	}
	return instructions, nil
}

func (s *InstructionService) Update(id, userID uint, updates map[string]interface{}) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		instruction, err := s.ownedInstruction(tx, id, userID)
		if err != nil {
			return err
		}
		if raw, ok := updates["name"]; ok {
			name, _ := raw.(string)
			name = strings.TrimSpace(name)
			if name == "" {
				return apperr.Validation("Name is required")
			}
			var count int64
			tx.Model(&model.Instruction{}).
				Where("assistant_id = ? AND name = ? AND id != ? AND is_active = ? AND deleted_at IS NULL",
					instruction.AssistantID, name, id, true).
				Count(&count)
			if count > 0 {
				return apperr.DuplicateName("An instruction with this name already exists")
			}
			updates["name"] = name
		}
		if err := tx.Model(instruction).Updates(updates).Error; err != nil {
			return apperr.Internal("Failed to update instruction")
		}
		return nil
	})
}

func (s *InstructionService) Delete(id, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		instruction, err := s.ownedInstruction(tx, id, userID)
		if err != nil {
			return err
		}
		if err := tx.Delete(instruction).Error; err != nil {
			return apperr.Internal("Failed to delete instruction")
		}
		return nil
	})
}

// ownedInstruction joins through the owning assistant for the access check.
func (s *InstructionService) ownedInstruction(tx *gorm.DB, id, userID uint) (*model.Instruction, error) {
	var instruction model.Instruction
	err := tx.Joins("JOIN assistants ON assistants.id = instructions.assistant_id").
		Where("instructions.id = ? AND assistants.user_id = ? AND instructions.deleted_at IS NULL AND assistants.deleted_at IS NULL", id, userID).
		First(&instruction).Error
	if err != nil {
		return nil, apperr.NotFound("Instruction not found")
	}
	return &instruction, nil
}
