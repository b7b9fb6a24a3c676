package service

import (
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageService struct {
	db             *gorm.DB
	costPerKTokens float64
}

func NewUsageService(db *gorm.DB, costPerKTokens float64) *UsageService {
	return &UsageService{db: db, costPerKTokens: costPerKTokens}
}

// Record increments the (assistant, day) counters, creating the day bucket
// on first use. Counters only ever go up.
func (s *UsageService) Record(assistantID uint, inputTokens, outputTokens int) error {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	cost := float64(inputTokens+outputTokens) / 1000 * s.costPerKTokens

	usage := model.Usage{
		AssistantID:  assistantID,
		Day:          day,
		InputTokens:  int64(inputTokens),
		OutputTokens: int64(outputTokens),
		Cost:         cost,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assistant_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"input_tokens":  gorm.Expr("input_tokens + ?", inputTokens),
			"output_tokens": gorm.Expr("output_tokens + ?", outputTokens),
			"cost":          gorm.Expr("cost + ?", cost),
			"updated_at":    time.Now(),
		}),
	}).Create(&usage).Error
}

// Summary returns the day buckets for an owned assistant, newest first.
func (s *UsageService) Summary(assistantID, userID uint) ([]model.Usage, error) {
	if _, err := ownedAssistant(s.db, assistantID, userID); err != nil {
		return nil, err
	}
	var usages []model.Usage
	err := s.db.Where("assistant_id = ?", assistantID).Order("day DESC").Find(&usages).Error
	if err != nil {
		return nil, apperr.Internal("Failed to load usage")
	}
	return usages, nil
}
