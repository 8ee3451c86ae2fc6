package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestMessage() Message {
	img := "https://x/img.jpg"
	return Message{
		Id:        7,
		ChatId:    3,
		Role:      MessageRoleAssistant,
		Content:   "working on it",
		ImageUrl:  &img,
		Metadata:  &MessageMetadata{Status: MessageStatusProcessing},
		CreatedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}
}

func TestMessageWithHelpers(t *testing.T) {
	original := newTestMessage()

	edited := original.WithEditedImage("https://x/edited.jpg")
	assert.True(t, edited.HasEditedImage())
	assert.False(t, original.HasEditedImage(), "original must stay untouched")

	seed := int64(42)
	done := edited.WithMetadata(MessageMetadata{Status: MessageStatusCompleted, OriginalPrompt: "brighten it", Seed: &seed})
	assert.Equal(t, MessageStatusCompleted, done.Status())
	assert.Equal(t, MessageStatusProcessing, edited.Status())
	assert.Equal(t, original.CreatedAt, done.CreatedAt)
}

func TestMessageApplyPreservesImmutableFields(t *testing.T) {
	original := newTestMessage()

	patched := original.Apply(MessagePatch{
		EditedImageUrl: Set("https://x/edited.jpg"),
		Metadata:       Set(MessageMetadata{Status: MessageStatusError, Error: "boom"}),
	})

	assert.Equal(t, original.Id, patched.Id)
	assert.Equal(t, original.ChatId, patched.ChatId)
	assert.Equal(t, original.Role, patched.Role)
	assert.Equal(t, original.Content, patched.Content)
	assert.Equal(t, original.CreatedAt, patched.CreatedAt)
	assert.Equal(t, original.ImageUrl, patched.ImageUrl, "absent fields are kept")
	assert.Equal(t, "https://x/edited.jpg", *patched.EditedImageUrl)
	assert.Equal(t, "boom", patched.Metadata.Error)
}

func TestMessageApplyClear(t *testing.T) {
	original := newTestMessage()

	patched := original.Apply(MessagePatch{ImageUrl: Clear[string](), Metadata: Clear[MessageMetadata]()})

	assert.Nil(t, patched.ImageUrl)
	assert.Nil(t, patched.Metadata)
	assert.Equal(t, MessageStatusCompleted, patched.Status())
	assert.True(t, MessagePatch{}.IsEmpty())
}

func TestMessageIsValid(t *testing.T) {
	m := newTestMessage()
	assert.True(t, m.IsValid())

	m.Content = "   "
	assert.False(t, m.IsValid())

	m = newTestMessage()
	m.ChatId = 0
	assert.False(t, m.IsValid())

	m = newTestMessage()
	m.Role = "system"
	assert.False(t, m.IsValid())
}
