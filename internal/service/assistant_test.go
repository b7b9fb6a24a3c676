package service

import (
	"testing"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantCreate(t *testing.T) {
	db := newTestDB(t)
	s := NewAssistantService(db, testAssistantConfig())
	owner := seedUser(t, db, "owner@x.com")

	t.Run("create returns the minimal projection", func(t *testing.T) {
		brief, err := s.Create("support-bot", owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "support-bot", brief.Name)
		assert.NotZero(t, brief.ID)

		var stored model.Assistant
		require.NoError(t, db.First(&stored, brief.ID).Error)
		assert.NotEmpty(t, stored.APIKey)
		assert.Equal(t, "You are a helpful assistant.", stored.Prompt)
	})

	t.Run("duplicate name under the same owner is rejected", func(t *testing.T) {
		_, err := s.Create("support-bot", owner.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeDuplicateName, apperr.From(err).Code)
	})

	t.Run("same name under a different owner is fine", func(t *testing.T) {
		other := seedUser(t, db, "other@x.com")
		_, err := s.Create("support-bot", other.ID)
		assert.NoError(t, err)
	})

	t.Run("reserved name rejected in any casing", func(t *testing.T) {
		for _, name := range []string{"playground", "Playground", "PLAYGROUND"} {
			_, err := s.Create(name, owner.ID)
			require.Error(t, err, name)
			assert.Equal(t, apperr.CodeReservedName, apperr.From(err).Code)
		}
	})

	t.Run("a soft-deleted sibling frees the name", func(t *testing.T) {
		brief, err := s.Create("temp-bot", owner.ID)
		require.NoError(t, err)
		require.NoError(t, s.Delete(brief.ID, owner.ID))

		_, err = s.Create("temp-bot", owner.ID)
		assert.NoError(t, err)
	})
}

func TestAssistantOwnership(t *testing.T) {
	db := newTestDB(t)
	s := NewAssistantService(db, testAssistantConfig())
	alice := seedUser(t, db, "alice@x.com")
	bob := seedUser(t, db, "bob@x.com")
	assistant := seedAssistant(t, db, alice.ID, "alice-bot")

	t.Run("getOne disguises foreign ownership as not found", func(t *testing.T) {
		_, err := s.GetOne(assistant.ID, bob.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)

		_, err = s.GetOne(99999, bob.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeNotFound, apperr.From(err).Code)
	})

	t.Run("list never leaks foreign assistants", func(t *testing.T) {
		list, err := s.List(bob.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("list is idempotent", func(t *testing.T) {
		first, err := s.List(alice.ID)
		require.NoError(t, err)
		second, err := s.List(alice.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("foreign update rolls back as not found", func(t *testing.T) {
		err := s.UpdatePrompt(assistant.ID, bob.ID, "hijacked")
		require.Error(t, err)

		var stored model.Assistant
		require.NoError(t, db.First(&stored, assistant.ID).Error)
		assert.NotEqual(t, "hijacked", stored.Prompt)
	})
}

func TestAssistantGetOneNesting(t *testing.T) {
	db := newTestDB(t)
	s := NewAssistantService(db, testAssistantConfig())
	owner := seedUser(t, db, "owner@x.com")
	assistant := seedAssistant(t, db, owner.ID, "nested-bot")

	require.NoError(t, db.Create(&model.Instruction{
		AssistantID: assistant.ID, Name: "tone", Content: "Be kind.", IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&model.Instruction{
		AssistantID: assistant.ID, Name: "off", Content: "Inactive.", IsActive: false,
	}).Error)

	got, err := s.GetOne(assistant.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, got.Instructions, 1)
	assert.Equal(t, "tone", got.Instructions[0].Name)
}

func TestAssistantUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	s := NewAssistantService(db, testAssistantConfig())
	owner := seedUser(t, db, "owner@x.com")
	assistant := seedAssistant(t, db, owner.ID, "old-name")
	seedAssistant(t, db, owner.ID, "taken")

	t.Run("rename to an existing sibling fails", func(t *testing.T) {
		err := s.Update(assistant.ID, owner.ID, map[string]interface{}{"name": "taken"})
		require.Error(t, err)
		assert.Equal(t, apperr.CodeDuplicateName, apperr.From(err).Code)
	})

	t.Run("rename to a reserved name fails", func(t *testing.T) {
		err := s.Update(assistant.ID, owner.ID, map[string]interface{}{"name": "Playground"})
		require.Error(t, err)
		assert.Equal(t, apperr.CodeReservedName, apperr.From(err).Code)
	})

	t.Run("update prompt persists", func(t *testing.T) {
		require.NoError(t, s.UpdatePrompt(assistant.ID, owner.ID, "New prompt"))
		got, err := s.GetOne(assistant.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "New prompt", got.Prompt)
	})

	t.Run("regenerate key rotates the key", func(t *testing.T) {
		var before model.Assistant
		require.NoError(t, db.First(&before, assistant.ID).Error)

		key, err := s.RegenerateKey(assistant.ID, owner.ID)
		require.NoError(t, err)
		assert.NotEqual(t, before.APIKey, key)
	})

	t.Run("delete soft-deletes and hides from list", func(t *testing.T) {
		require.NoError(t, s.Delete(assistant.ID, owner.ID))

		list, err := s.List(owner.ID)
		require.NoError(t, err)
		for _, a := range list {
			assert.NotEqual(t, assistant.ID, a.ID)
		}

		var raw int64
		db.Unscoped().Model(&model.Assistant{}).Where("id = ?", assistant.ID).Count(&raw)
		assert.Equal(t, int64(1), raw, "soft delete must keep the row")
	})
}
