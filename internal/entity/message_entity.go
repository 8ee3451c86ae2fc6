package entity

import (
	"strings"
	"time"
)

type MessageRole string
type MessageStatus string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"

	MessageStatusProcessing MessageStatus = "processing"
	MessageStatusCompleted  MessageStatus = "completed"
	MessageStatusError      MessageStatus = "error"
)

func (r MessageRole) IsValid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

func (s MessageStatus) IsTerminal() bool {
	return s == MessageStatusCompleted || s == MessageStatusError
}

// MessageMetadata tracks edit-job progress and provenance.
type MessageMetadata struct {
	Status         MessageStatus `json:"status,omitempty"`
	Error          string        `json:"error,omitempty"`
	OriginalPrompt string        `json:"originalPrompt,omitempty"`
	Seed           *int64        `json:"seed,omitempty"`
}

// Message is an immutable value; repositories replace it wholesale on update.
type Message struct {
	Id             int64
	ChatId         int64
	Role           MessageRole
	Content        string
	ImageUrl       *string
	EditedImageUrl *string
	Metadata       *MessageMetadata
	CreatedAt      time.Time
}

func (m Message) IsValid() bool {
	return strings.TrimSpace(m.Content) != "" && m.ChatId > 0 && m.Role.IsValid()
}

func (m Message) IsUserMessage() bool {
	return m.Role == MessageRoleUser
}

func (m Message) IsAssistantMessage() bool {
	return m.Role == MessageRoleAssistant
}

func (m Message) HasImage() bool {
	return m.ImageUrl != nil && *m.ImageUrl != ""
}

func (m Message) HasEditedImage() bool {
	return m.EditedImageUrl != nil && *m.EditedImageUrl != ""
}

// Status reports the edit-job status. Messages that never carried a job are completed.
func (m Message) Status() MessageStatus {
	if m.Metadata == nil || m.Metadata.Status == "" {
		return MessageStatusCompleted
	}
	return m.Metadata.Status
}

func (m Message) WithEditedImage(editedImageUrl string) Message {
	m.EditedImageUrl = &editedImageUrl
	return m
}

func (m Message) WithMetadata(metadata MessageMetadata) Message {
	m.Metadata = &metadata
	return m
}

// Apply returns a copy with the patch applied. Id, ChatId, Role, Content and
// CreatedAt are never touched.
func (m Message) Apply(patch MessagePatch) Message {
	if patch.ImageUrl.Present {
		m.ImageUrl = cloneString(patch.ImageUrl.Value)
	}
	if patch.EditedImageUrl.Present {
		m.EditedImageUrl = cloneString(patch.EditedImageUrl.Value)
	}
	if patch.Metadata.Present {
		if patch.Metadata.Value == nil {
			m.Metadata = nil
		} else {
			md := *patch.Metadata.Value
			m.Metadata = &md
		}
	}
	return m
}

// Optional distinguishes "leave unchanged" (Present=false) from "set to null"
// (Present=true, Value=nil).
type Optional[T any] struct {
	Present bool
	Value   *T
}

func Set[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: &v}
}

func Clear[T any]() Optional[T] {
	return Optional[T]{Present: true}
}

// MessagePatch names exactly the fields a message update may replace.
type MessagePatch struct {
	ImageUrl       Optional[string]
	EditedImageUrl Optional[string]
	Metadata       Optional[MessageMetadata]
}

func (p MessagePatch) IsEmpty() bool {
	return !p.ImageUrl.Present && !p.EditedImageUrl.Present && !p.Metadata.Present
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
