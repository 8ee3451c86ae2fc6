package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dreambees-be/internal/constant"
	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/repository/contract"
	"dreambees-be/pkg/events"
	"dreambees-be/pkg/fal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type editFixture struct {
	env      *testEnv
	editor   *fakeEditor
	notifier *recordingNotifier
	events   *recordingEventPublisher
	svc      IImageEditService
	job      dto.ImageEditJobMessage
}

func newEditFixture(t *testing.T, editor *fakeEditor, timeout time.Duration) *editFixture {
	t.Helper()

	env := newTestEnv()
	chat := env.mustChat("c")
	placeholder, err := env.uowFactory.NewUnitOfWork(context.Background()).MessageRepository().Create(context.Background(), contract.CreateMessageData{
		ChatId:   chat.Id,
		Role:     entity.MessageRoleAssistant,
		Content:  constant.AssistantProcessingMessage,
		Metadata: &entity.MessageMetadata{Status: entity.MessageStatusProcessing},
	})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	eventPublisher := &recordingEventPublisher{}
	svc := NewImageEditService(
		env.uowFactory,
		editor,
		ImageEditConfig{Model: "fal-ai/flux-pro/kontext", Timeout: timeout},
		notifier,
		NewMessageEventService(eventPublisher, env.logger),
		env.metrics,
		env.logger,
	)

	return &editFixture{
		env:      env,
		editor:   editor,
		notifier: notifier,
		events:   eventPublisher,
		svc:      svc,
		job: dto.ImageEditJobMessage{
			MessageId: placeholder.Id,
			ChatId:    chat.Id,
			ImageUrl:  "https://x/img.jpg",
			Prompt:    "brighten it",
		},
	}
}

func TestImageEdit_Success(t *testing.T) {
	seed := int64(1234)
	f := newEditFixture(t, &fakeEditor{output: &fal.EditImageOutput{
		Images: []fal.Image{{URL: "https://cdn/out.jpg"}},
		Seed:   &seed,
	}}, time.Second)

	f.svc.ProcessImageEdit(context.Background(), f.job)

	msg := f.env.message(f.job.MessageId)
	require.NotNil(t, msg.EditedImageUrl)
	assert.Equal(t, "https://cdn/out.jpg", *msg.EditedImageUrl)
	assert.Equal(t, entity.MessageStatusCompleted, msg.Status())
	assert.Equal(t, "brighten it", msg.Metadata.OriginalPrompt)
	assert.Equal(t, int64(1234), *msg.Metadata.Seed)
	assert.Equal(t, constant.AssistantProcessingMessage, msg.Content)

	calls := f.editor.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, fal.EditImageInput{
		ImageURL:        "https://x/img.jpg",
		Prompt:          "brighten it",
		GuidanceScale:   3.5,
		NumImages:       1,
		OutputFormat:    "jpeg",
		SafetyTolerance: "2",
	}, calls[0])

	assert.Equal(t, []string{"processing", "completed"}, f.notifier.Statuses())
	assert.Equal(t, []string{constant.EventMessageEditCompleted}, f.events.Types())
}

func TestImageEdit_Failures(t *testing.T) {
	cases := []struct {
		name    string
		editor  *fakeEditor
		timeout time.Duration
		errText string
	}{
		{"upstream error", &fakeEditor{err: errors.New("fal: unexpected status 500")}, time.Second, "unexpected status 500"},
		{"missing credentials", &fakeEditor{err: fal.ErrMissingCredentials}, time.Second, "FAL_KEY"},
		{"empty image list", &fakeEditor{output: &fal.EditImageOutput{}}, time.Second, "no images"},
		{"timeout", &fakeEditor{block: true}, 20 * time.Millisecond, "timed out"},
		{"panic", &fakeEditor{panics: true}, time.Second, "editor exploded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newEditFixture(t, tc.editor, tc.timeout)

			assert.NotPanics(t, func() {
				f.svc.ProcessImageEdit(context.Background(), f.job)
			})

			msg := f.env.message(f.job.MessageId)
			assert.Equal(t, entity.MessageStatusError, msg.Status())
			assert.Contains(t, msg.Metadata.Error, tc.errText)
			assert.Nil(t, msg.EditedImageUrl)
			assert.Equal(t, []string{constant.EventMessageEditFailed}, f.events.Types())
		})
	}
}

func TestImageEdit_MessageDeletedMidway(t *testing.T) {
	f := newEditFixture(t, &fakeEditor{output: &fal.EditImageOutput{Images: []fal.Image{{URL: "https://cdn/out.jpg"}}}}, time.Second)

	_, err := f.env.uowFactory.NewUnitOfWork(context.Background()).MessageRepository().Delete(context.Background(), f.job.MessageId)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		f.svc.ProcessImageEdit(context.Background(), f.job)
	})
	assert.Nil(t, f.env.message(f.job.MessageId))
	assert.Empty(t, f.events.Types())
}

type panickingNotifier struct{}

func (panickingNotifier) NotifyMessageUpdated(chatId int64, event *dto.MessageEvent) {
	if event.Data.Metadata != nil && event.Data.Metadata.Status == string(entity.MessageStatusCompleted) {
		panic("socket gone")
	}
}

type panickingEventPublisher struct{}

func (panickingEventPublisher) Publish(ctx context.Context, event events.Event) error {
	panic("nats gone")
}

func TestImageEdit_PanicAfterCompletedWriteKeepsCompleted(t *testing.T) {
	output := &fal.EditImageOutput{Images: []fal.Image{{URL: "https://cdn/out.jpg"}}}

	t.Run("notifier", func(t *testing.T) {
		f := newEditFixture(t, &fakeEditor{output: output}, time.Second)
		svc := NewImageEditService(
			f.env.uowFactory,
			f.editor,
			ImageEditConfig{Model: "fal-ai/flux-pro/kontext", Timeout: time.Second},
			panickingNotifier{},
			NewMessageEventService(f.events, f.env.logger),
			f.env.metrics,
			f.env.logger,
		)

		assert.NotPanics(t, func() { svc.ProcessImageEdit(context.Background(), f.job) })

		msg := f.env.message(f.job.MessageId)
		assert.Equal(t, entity.MessageStatusCompleted, msg.Status())
		require.NotNil(t, msg.EditedImageUrl)
		assert.Equal(t, []string{constant.EventMessageEditCompleted}, f.events.Types())
	})

	t.Run("event publisher", func(t *testing.T) {
		f := newEditFixture(t, &fakeEditor{output: output}, time.Second)
		svc := NewImageEditService(
			f.env.uowFactory,
			f.editor,
			ImageEditConfig{Model: "fal-ai/flux-pro/kontext", Timeout: time.Second},
			f.notifier,
			NewMessageEventService(panickingEventPublisher{}, f.env.logger),
			f.env.metrics,
			f.env.logger,
		)

		assert.NotPanics(t, func() { svc.ProcessImageEdit(context.Background(), f.job) })

		msg := f.env.message(f.job.MessageId)
		assert.Equal(t, entity.MessageStatusCompleted, msg.Status())
		assert.Empty(t, msg.Metadata.Error)
		require.NotNil(t, msg.EditedImageUrl)
		assert.Equal(t, []string{"processing", "completed"}, f.notifier.Statuses())
	})
}
