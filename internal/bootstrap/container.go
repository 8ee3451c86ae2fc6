package bootstrap

import (
	"context"
	"fmt"

	"dreambees-be/internal/config"
	"dreambees-be/internal/controller"
	"dreambees-be/internal/handler"
	"dreambees-be/internal/metrics"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/internal/repository/unitofwork"
	"dreambees-be/internal/service"
	"dreambees-be/internal/websocket"
	"dreambees-be/pkg/fal"
	pktNats "dreambees-be/pkg/nats"
	"dreambees-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	MessageController controller.IMessageController
	UploadController  controller.IUploadController

	// WebSockets
	ChatEventsHandler *handler.ChatEventsHandler
	WebSocketHub      *websocket.Hub

	Metrics *metrics.Metrics
	Logger  logger.ILogger

	// Background worker, exposed so shutdown can wait for running edits
	EditJobConsumer service.IEditJobConsumer

	cancel  context.CancelFunc
	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	rdb     *redis.Client
}

type containerOptions struct {
	editor  service.ImageEditor
	storage storage.ImageStorage
}

type ContainerOption func(*containerOptions)

// WithImageEditor replaces the fal.ai client used for image edits.
func WithImageEditor(editor service.ImageEditor) ContainerOption {
	return func(o *containerOptions) { o.editor = editor }
}

// WithImageStorage replaces the storage driver picked from config.
func WithImageStorage(s storage.ImageStorage) ContainerOption {
	return func(o *containerOptions) { o.storage = s }
}

func NewContainer(cfg *config.Config, uowFactory unitofwork.RepositoryFactory, sysLogger logger.ILogger, opts ...ContainerOption) (*Container, error) {
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := metrics.New()

	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2. Infrastructure
	// NATS
	var natsPub *pktNats.Publisher
	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS publisher not fully available", map[string]interface{}{"error": err.Error()})
		}
		if pub != nil {
			natsPub = pub
			eventPublisher = pub
		}
	}

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
	}

	// WebSocket Hub
	var wsLogger logger.ILogger = sysLogger
	if cfg.App.WsLogFilePath != "" {
		wsLogger = logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	}
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)

	// fal.ai
	falClient := fal.NewClient(cfg.Fal.ApiKey,
		fal.WithQueueURL(cfg.Fal.QueueURL),
		fal.WithStorageURL(cfg.Fal.StorageURL),
		fal.WithPollInterval(cfg.Fal.PollInterval),
		fal.WithQueueUpdateHandler(func(status fal.QueueStatus) {
			for _, entry := range status.Logs {
				sysLogger.Debug("FAL", entry.Message, map[string]interface{}{
					"request_id": status.RequestID,
					"status":     status.Status,
				})
			}
		}),
	)
	if !falClient.HasCredentials() {
		sysLogger.Warn("BOOTSTRAP", "FAL_KEY is not set, image edits and fal uploads will fail", nil)
	}

	editor := o.editor
	if editor == nil {
		editor = falClient
	}

	imageStorage := o.storage
	if imageStorage == nil {
		switch cfg.Storage.Driver {
		case "local":
			local, err := storage.NewLocalStorage(cfg.Storage.UploadDir, cfg.App.BaseURL)
			if err != nil {
				cancel()
				_ = pubSub.Close()
				return nil, fmt.Errorf("local storage: %w", err)
			}
			imageStorage = local
		default:
			imageStorage = storage.NewFalStorage(falClient)
		}
	}

	// 3. Services
	jobPublisher := service.NewEditJobPublisher(cfg.App.EditJobTopic, pubSub)
	eventService := service.NewMessageEventService(eventPublisher, sysLogger)
	editService := service.NewImageEditService(
		uowFactory,
		editor,
		service.ImageEditConfig{Model: cfg.Fal.Model, Timeout: cfg.Fal.RequestTimeout},
		wsHub, // Hub implements MessageNotifier
		eventService,
		m,
		sysLogger,
	)
	editConsumer := service.NewEditJobConsumer(pubSub, cfg.App.EditJobTopic, editService, sysLogger)

	// Subscribe before anything can publish, gochannel drops messages without subscribers
	if err := editConsumer.Consume(ctx); err != nil {
		cancel()
		_ = pubSub.Close()
		return nil, fmt.Errorf("edit job consumer: %w", err)
	}

	chatService := service.NewChatService(uowFactory, sysLogger)
	messageService := service.NewMessageService(uowFactory, m)
	conversationService := service.NewConversationService(messageService, jobPublisher, uowFactory, sysLogger)
	uploadService := service.NewUploadService(imageStorage, m, sysLogger)

	// 4. Controllers
	return &Container{
		ChatController:    controller.NewChatController(chatService),
		MessageController: controller.NewMessageController(messageService, conversationService),
		UploadController:  controller.NewUploadController(uploadService),

		ChatEventsHandler: handler.NewChatEventsHandler(chatService, wsHub, wsLogger),
		WebSocketHub:      wsHub,

		Metrics:         m,
		Logger:          sysLogger,
		EditJobConsumer: editConsumer,

		cancel:  cancel,
		pubSub:  pubSub,
		natsPub: natsPub,
		rdb:     rdb,
	}, nil
}

// Close stops the event bus, waits for running edits and releases connections.
func (c *Container) Close() error {
	var firstErr error

	if err := c.pubSub.Close(); err != nil {
		firstErr = err
	}
	c.EditJobConsumer.Wait()

	// hub goes last so the final updates still reach clients
	c.cancel()

	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
