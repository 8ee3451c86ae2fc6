package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"dreambees-be/internal/dto"
	"dreambees-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IEditJobPublisher interface {
	// Publish hands the job to the consumer and returns without waiting for the edit.
	Publish(ctx context.Context, job dto.ImageEditJobMessage) error
}

type editJobPublisher struct {
	topicName string
	publisher message.Publisher
}

func NewEditJobPublisher(topicName string, publisher message.Publisher) IEditJobPublisher {
	return &editJobPublisher{
		topicName: topicName,
		publisher: publisher,
	}
}

func (p *editJobPublisher) Publish(ctx context.Context, job dto.ImageEditJobMessage) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal edit job: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		return fmt.Errorf("publish edit job: %w", err)
	}
	return nil
}

type IEditJobConsumer interface {
	// Consume subscribes synchronously; jobs published before it returns are lost.
	Consume(ctx context.Context) error
	// Wait blocks until every started edit has finished.
	Wait()
}

type editJobConsumer struct {
	subscriber  message.Subscriber
	topicName   string
	editService IImageEditService
	logger      logger.ILogger
	inFlight    sync.WaitGroup
}

func NewEditJobConsumer(
	subscriber message.Subscriber,
	topicName string,
	editService IImageEditService,
	log logger.ILogger,
) IEditJobConsumer {
	return &editJobConsumer{
		subscriber:  subscriber,
		topicName:   topicName,
		editService: editService,
		logger:      log,
	}
}

func (c *editJobConsumer) Consume(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(msg)
		}
	}()

	return nil
}

func (c *editJobConsumer) processMessage(msg *message.Message) {
	var job dto.ImageEditJobMessage
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		c.logger.Error("EDIT_JOB", "Failed to unmarshal edit job", map[string]interface{}{
			"uuid":  msg.UUID,
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// Edits are never retried, so the job is acknowledged up front and run
	// detached from the subscription.
	msg.Ack()

	c.inFlight.Add(1)
	go func() {
		defer c.inFlight.Done()
		c.editService.ProcessImageEdit(context.Background(), job)
	}()
}

func (c *editJobConsumer) Wait() {
	c.inFlight.Wait()
}
