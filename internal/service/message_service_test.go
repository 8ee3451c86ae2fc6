package service

import (
	"context"
	"net/http"
	"testing"

	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_CreateMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewMessageService(env.uowFactory, env.metrics)
	chat := env.mustChat("c")

	t.Run("blank content is rejected", func(t *testing.T) {
		_, err := svc.CreateMessage(ctx, chat.Id, &dto.CreateMessageRequest{Role: "user", Content: " \n\t"})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.From(err).StatusCode)

		messages, _ := svc.GetMessages(ctx, chat.Id)
		assert.Empty(t, messages)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := svc.CreateMessage(ctx, chat.Id, &dto.CreateMessageRequest{Role: "system", Content: "hi"})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.From(err).StatusCode)
	})

	t.Run("unknown chat is not found", func(t *testing.T) {
		_, err := svc.CreateMessage(ctx, 999, &dto.CreateMessageRequest{Role: "user", Content: "hi"})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("optional fields default to null", func(t *testing.T) {
		msg, err := svc.CreateMessage(ctx, chat.Id, &dto.CreateMessageRequest{
			Role:     "user",
			Content:  "hi",
			ImageUrl: strPtr(""),
		})
		require.NoError(t, err)
		assert.Nil(t, msg.ImageUrl)
		assert.Nil(t, msg.EditedImageUrl)
		assert.Nil(t, msg.Metadata)
	})

	t.Run("metadata is kept", func(t *testing.T) {
		msg, err := svc.CreateMessage(ctx, chat.Id, &dto.CreateMessageRequest{
			Role:     "assistant",
			Content:  "working",
			Metadata: &dto.MessageMetadataDTO{Status: "processing"},
		})
		require.NoError(t, err)
		assert.Equal(t, entity.MessageStatusProcessing, msg.Status())
	})
}

func TestMessageService_GetMessages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewMessageService(env.uowFactory, env.metrics)
	chat := env.mustChat("c")

	_, err := svc.GetMessages(ctx, 999)
	assert.True(t, apperror.IsNotFound(err))

	for _, content := range []string{"first", "second"} {
		_, err := svc.CreateMessage(ctx, chat.Id, &dto.CreateMessageRequest{Role: "user", Content: content})
		require.NoError(t, err)
	}

	messages, err := svc.GetMessages(ctx, chat.Id)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
}

func TestMessageService_GetMessageStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewMessageService(env.uowFactory, env.metrics)
	chat := env.mustChat("c")

	plain, err := svc.CreateMessage(ctx, chat.Id, &dto.CreateMessageRequest{Role: "user", Content: "hello"})
	require.NoError(t, err)

	status, err := svc.GetMessageStatus(ctx, plain.Id)
	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)

	failed, err := svc.CreateMessage(ctx, chat.Id, &dto.CreateMessageRequest{
		Role:     "assistant",
		Content:  "oops",
		Metadata: &dto.MessageMetadataDTO{Status: "error", Error: "boom"},
	})
	require.NoError(t, err)

	status, err = svc.GetMessageStatus(ctx, failed.Id)
	require.NoError(t, err)
	assert.Equal(t, "error", status.Status)
	assert.Equal(t, "boom", status.Error)

	_, err = svc.GetMessageStatus(ctx, 999)
	assert.True(t, apperror.IsNotFound(err))
}
