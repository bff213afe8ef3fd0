// Package kafkasink publishes attribution events to a Kafka topic.
package kafkasink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/linkforty/go-linkforty/pkg/interfaces/broadcaster"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

var ErrMissingWriter = errors.New("kafkasink: writer is required")

// Writer is the subset of *kafka.Writer the sink needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope is the wire payload for every event.
type envelope struct {
	Topic     string    `json:"topic"`
	Payload   any       `json:"payload"`
	Published time.Time `json:"publishedAt"`
}

// Sink writes one Kafka message per broadcast event.
type Sink struct {
	writer Writer
	logger logger.Logger
	now    func() time.Time
}

var _ broadcaster.Broadcaster = (*Sink)(nil)

type Option func(*Sink)

// WithClock overrides the publish timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps an existing writer.
func New(w Writer, l logger.Logger, opts ...Option) (*Sink, error) {
	if w == nil {
		return nil, ErrMissingWriter
	}
	if l == nil {
		l = &logger.Nop{}
	}
	s := &Sink{writer: w, logger: l, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Dial builds a sink over a kafka-go writer for brokers and topic.
func Dial(brokers []string, topic string, l logger.Logger, opts ...Option) (*Sink, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafkasink: brokers and topic are required")
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return New(w, l, opts...)
}

// Broadcast implements broadcaster.Broadcaster.
func (s *Sink) Broadcast(ctx context.Context, event broadcaster.Event) error {
	now := s.now()
	value, err := json.Marshal(envelope{Topic: event.Topic, Payload: event.Payload, Published: now})
	if err != nil {
		return fmt.Errorf("kafkasink: encode %s: %w", event.Topic, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  now,
		Headers: []kafka.Header{
			{Key: "topic", Value: []byte(event.Topic)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logger.Error("kafka publish failed",
			logger.Field{Key: "topic", Value: event.Topic},
			logger.Field{Key: "key", Value: event.Key},
			logger.Field{Key: "error", Value: err},
		)
		return fmt.Errorf("kafkasink: publish %s: %w", event.Topic, err)
	}
	s.logger.Debug("kafka event published",
		logger.Field{Key: "topic", Value: event.Topic},
		logger.Field{Key: "key", Value: event.Key},
	)
	return nil
}

// Close flushes and closes the writer.
func (s *Sink) Close() error {
	return s.writer.Close()
}
