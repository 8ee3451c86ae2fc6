package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dreambees-be/internal/constant"
	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/mapper"
	"dreambees-be/internal/metrics"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/internal/repository/unitofwork"
	"dreambees-be/pkg/fal"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ImageEditor runs one image-to-image request. *fal.Client satisfies it.
type ImageEditor interface {
	EditImage(ctx context.Context, model string, input fal.EditImageInput) (*fal.EditImageOutput, error)
}

type IImageEditService interface {
	// ProcessImageEdit drives one job to completed or error. It never returns
	// or panics; every failure ends up on the message.
	ProcessImageEdit(ctx context.Context, job dto.ImageEditJobMessage)
}

const DefaultImageEditTimeout = 5 * time.Minute

type ImageEditConfig struct {
	Model   string
	Timeout time.Duration
}

type imageEditService struct {
	uowFactory unitofwork.RepositoryFactory
	editor     ImageEditor
	cfg        ImageEditConfig
	notifier   MessageNotifier
	events     IMessageEventService
	metrics    *metrics.Metrics
	logger     logger.ILogger
	mapper     *mapper.ChatMapper
	tracer     trace.Tracer
}

func NewImageEditService(
	uowFactory unitofwork.RepositoryFactory,
	editor ImageEditor,
	cfg ImageEditConfig,
	notifier MessageNotifier,
	events IMessageEventService,
	m *metrics.Metrics,
	log logger.ILogger,
) IImageEditService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultImageEditTimeout
	}
	return &imageEditService{
		uowFactory: uowFactory,
		editor:     editor,
		cfg:        cfg,
		notifier:   notifier,
		events:     events,
		metrics:    m,
		logger:     log,
		mapper:     mapper.NewChatMapper(),
		tracer:     otel.Tracer("dreambees-be/image-edit"),
	}
}

func (s *imageEditService) ProcessImageEdit(ctx context.Context, job dto.ImageEditJobMessage) {
	ctx, span := s.tracer.Start(ctx, "ImageEdit.Process", trace.WithAttributes(
		attribute.Int64("message.id", job.MessageId),
		attribute.Int64("chat.id", job.ChatId),
	))
	defer span.End()

	outcome := string(entity.MessageStatusError)
	done := s.metrics.EditStarted()
	defer func() { done(outcome) }()

	// set once the completed state is stored, an error must not overwrite it
	completed := false
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("image edit panicked: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if completed {
				s.logger.Error("IMAGE_EDIT", "Panic after edit was stored", map[string]interface{}{
					"message_id": job.MessageId,
					"error":      err.Error(),
				})
				return
			}
			s.fail(ctx, job, err)
		}
	}()

	s.logger.Info("IMAGE_EDIT", "Processing image edit", map[string]interface{}{
		"message_id": job.MessageId,
		"chat_id":    job.ChatId,
	})

	if _, err := s.update(ctx, job.MessageId, entity.MessagePatch{
		Metadata: entity.Set(entity.MessageMetadata{Status: entity.MessageStatusProcessing}),
	}); err != nil {
		s.logger.Error("IMAGE_EDIT", "Failed to mark message processing", map[string]interface{}{
			"message_id": job.MessageId,
			"error":      err.Error(),
		})
	}

	imageUrl, seed, err := s.edit(ctx, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.fail(ctx, job, err)
		return
	}

	msg, err := s.update(ctx, job.MessageId, entity.MessagePatch{
		EditedImageUrl: entity.Set(imageUrl),
		Metadata: entity.Set(entity.MessageMetadata{
			Status:         entity.MessageStatusCompleted,
			OriginalPrompt: job.Prompt,
			Seed:           seed,
		}),
	})
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("save edited image: %w", err))
		return
	}
	if msg == nil {
		s.logger.Warn("IMAGE_EDIT", "Message disappeared before the edit finished", map[string]interface{}{
			"message_id": job.MessageId,
		})
		return
	}

	completed = true
	outcome = string(entity.MessageStatusCompleted)
	s.events.EditCompleted(ctx, msg)
	s.logger.Info("IMAGE_EDIT", "Image edit completed", map[string]interface{}{
		"message_id": job.MessageId,
		"edited_url": imageUrl,
	})
}

func (s *imageEditService) edit(ctx context.Context, job dto.ImageEditJobMessage) (string, *int64, error) {
	editCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	out, err := s.editor.EditImage(editCtx, s.cfg.Model, fal.EditImageInput{
		ImageURL:        job.ImageUrl,
		Prompt:          job.Prompt,
		GuidanceScale:   constant.EditGuidanceScale,
		NumImages:       constant.EditNumImages,
		OutputFormat:    constant.EditOutputFormat,
		SafetyTolerance: constant.EditSafetyTolerance,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", nil, fmt.Errorf("image edit timed out after %s", s.cfg.Timeout)
		}
		return "", nil, err
	}
	if out == nil || len(out.Images) == 0 || out.Images[0].URL == "" {
		return "", nil, errors.New("no images returned from edit model")
	}
	return out.Images[0].URL, out.Seed, nil
}

// fail records err on the message and leaves editedImageUrl untouched.
func (s *imageEditService) fail(ctx context.Context, job dto.ImageEditJobMessage, cause error) {
	s.logger.Error("IMAGE_EDIT", "Image edit failed", map[string]interface{}{
		"message_id": job.MessageId,
		"error":      cause.Error(),
	})

	msg, err := s.update(ctx, job.MessageId, entity.MessagePatch{
		Metadata: entity.Set(entity.MessageMetadata{
			Status: entity.MessageStatusError,
			Error:  cause.Error(),
		}),
	})
	if err != nil {
		s.logger.Error("IMAGE_EDIT", "Failed to record edit error", map[string]interface{}{
			"message_id": job.MessageId,
			"error":      err.Error(),
		})
		return
	}
	if msg != nil {
		s.events.EditFailed(ctx, msg)
	}
}

// update writes the patch and notifies live subscribers of the new state.
func (s *imageEditService) update(ctx context.Context, id int64, patch entity.MessagePatch) (*entity.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.MessageRepository().Update(ctx, id, patch)
	if err != nil || msg == nil {
		return msg, err
	}

	s.notify(msg)
	return msg, nil
}

// notify runs after the write has landed, so a misbehaving notifier only gets logged.
func (s *imageEditService) notify(msg *entity.Message) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("IMAGE_EDIT", "Message notifier panicked", map[string]interface{}{
				"message_id": msg.Id,
				"error":      fmt.Sprint(r),
			})
		}
	}()
	s.notifier.NotifyMessageUpdated(msg.ChatId, &dto.MessageEvent{
		Type: constant.WebsocketEventMessageUpdated,
		Data: s.mapper.MessageToResponse(msg),
	})
}
