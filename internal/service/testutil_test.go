package service

import (
	"fmt"
	"testing"

	"github.com/biswacs/lmscale-backend-sub000/internal/config"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema. The
// shared-cache DSN keeps the database alive across pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Assistant{},
		&model.Instruction{},
		&model.Function{},
		&model.Usage{},
		&model.Gpu{},
		&model.Conversation{},
		&model.Message{},
	))
	return db
}

func testAssistantConfig() config.AssistantConfig {
	return config.AssistantConfig{
		DefaultPrompt: "You are a helpful assistant.",
		ReservedNames: []string{"playground"},
	}
}

// seedUser inserts a user row directly; register/login flows get their own
// coverage in user_test.go.
func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "x",
		APIKey:       "lm_" + uuid.NewString(),
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedAssistant(t *testing.T, db *gorm.DB, userID uint, name string) *model.Assistant {
	t.Helper()
	assistant := &model.Assistant{
		UserID:   userID,
		Name:     name,
		Prompt:   "You are a helpful assistant.",
		APIKey:   "lm_" + uuid.NewString(),
		IsActive: true,
	}
	require.NoError(t, db.Create(assistant).Error)
	return assistant
}
