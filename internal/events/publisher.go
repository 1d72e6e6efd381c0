// Package events publishes profile commit outcomes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/talentboard/profiledir/internal/model"
)

// DefaultTopic receives commit outcome events
const DefaultTopic = "profiledir.commits"

// LegResult is the outcome of one persistence call within a commit
type LegResult struct {
	Operation model.Operation `json:"operation"`
	Succeeded bool            `json:"succeeded"`
	Reason    string          `json:"reason,omitempty"`
}

// CommitEvent describes a finished fan-out commit
type CommitEvent struct {
	AccountID model.AccountID `json:"account_id"`
	Status    string          `json:"status"`
	Legs      []LegResult     `json:"legs"`
	At        time.Time       `json:"at"`
}

// Publisher emits commit events. Publishing is best-effort; callers log failures and move on.
type Publisher interface {
	PublishCommit(ctx context.Context, event CommitEvent) error
	Close() error
}

// Config holds Kafka producer settings
type Config struct {
	Brokers string // comma separated
	Topic   string
	Enabled bool
}

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes commit events keyed by account id
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	logger  *slog.Logger
	enabled bool
}

// NewKafkaPublisher creates a Kafka publisher. If brokers is empty or disabled, publishes are no-ops.
func NewKafkaPublisher(cfg Config, logger *slog.Logger) *KafkaPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	if !cfg.Enabled || cfg.Brokers == "" {
		logger.Info("kafka publisher disabled")
		return &KafkaPublisher{topic: topic, logger: logger}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(cfg.Brokers, ",")...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka publisher initialized", "brokers", cfg.Brokers, "topic", topic)
	return newKafkaPublisher(w, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, logger: logger, enabled: true}
}

// Enabled reports whether events are actually sent
func (p *KafkaPublisher) Enabled() bool {
	return p.enabled
}

// PublishCommit sends the event to the configured topic. No-op if disabled.
func (p *KafkaPublisher) PublishCommit(ctx context.Context, event CommitEvent) error {
	if !p.enabled {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.AccountID),
		Value: value,
		Time:  event.At,
	})
}

// Close shuts down the Kafka writer
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

var _ Publisher = (*KafkaPublisher)(nil)
