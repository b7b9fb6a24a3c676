package service

import (
	"testing"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationList(t *testing.T) {
	db := newTestDB(t)
	s := NewConversationService(db)
	owner := seedUser(t, db, "owner@x.com")
	stranger := seedUser(t, db, "stranger@x.com")
	assistant := seedAssistant(t, db, owner.ID, "conv-bot")

	conv := model.Conversation{AssistantID: assistant.ID, SessionID: "sess-1"}
	require.NoError(t, db.Create(&conv).Error)
	require.NoError(t, db.Create(&model.Message{
		ConversationID: conv.ID, Role: model.RoleUser, Content: "hi", Status: model.MessageCompleted,
	}).Error)
	require.NoError(t, db.Create(&model.Message{
		ConversationID: conv.ID, Role: model.RoleAI, Content: "hello", Status: model.MessageCompleted,
	}).Error)

	t.Run("owner sees messages in order", func(t *testing.T) {
		conversations, err := s.List(assistant.ID, owner.ID)
		require.NoError(t, err)
		require.Len(t, conversations, 1)
		require.Len(t, conversations[0].Messages, 2)
		assert.Equal(t, model.RoleUser, conversations[0].Messages[0].Role)
		assert.Equal(t, model.RoleAI, conversations[0].Messages[1].Role)
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		_, err := s.List(assistant.ID, stranger.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
	})
}
