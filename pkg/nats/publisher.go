package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dreambees-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "EVENTS"
	SubjectPrefix = "events."
)

// Publisher handles sending events to the NATS bus.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects and makes sure the EVENTS stream exists. A stream
// error is returned to the caller alongside a usable publisher so startup can
// log it and carry on.
func NewPublisher(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("dreambees-backend"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{nc: nc, js: js}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		return p, fmt.Errorf("failed to ensure stream %s: %w", StreamName, err)
	}

	return p, nil
}

// Publish sends an event to NATS on events.<type>.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	subject, data, err := Encode(event)
	if err != nil {
		return err
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

// Encode returns the subject and JSON body an event is published with.
func Encode(event events.Event) (string, []byte, error) {
	data, err := json.Marshal(events.ToEnvelope(event))
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return SubjectPrefix + event.EventType(), data, nil
}

// Close drains pending publishes and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}
