package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducerConfig contains configurable parameters for the Kafka
// producer behind the notification sink.
type KafkaProducerConfig struct {
	// Brokers is the list of Kafka broker addresses (host:port).
	Brokers []string

	// Topic is the notification event topic.
	Topic string

	// MaxAttempts is how many times a publish is retried on transient
	// error. Defaults to 3 if <= 0.
	MaxAttempts int

	// WriteTimeout is the per-attempt timeout. Defaults to 5s if zero.
	WriteTimeout time.Duration
}

// KafkaProducer wraps segmentio/kafka-go's Writer with bounded retries.
// Notification delivery is fire-and-forget from the intake pipeline's
// perspective, so publish failures are reported to the caller for
// logging but never block ticket creation.
type KafkaProducer struct {
	writer      *kafka.Writer
	maxAttempts int
}

func NewKafkaProducer(cfg KafkaProducerConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		// Key-hash balancer keeps all events for one recipient on one
		// partition, preserving per-recipient ordering downstream.
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		Async:        false,
	})

	return &KafkaProducer{writer: w, maxAttempts: cfg.MaxAttempts}, nil
}

// PublishJSON marshals v and writes it keyed by key, retrying transient
// failures with backoff up to MaxAttempts.
func (p *KafkaProducer) PublishJSON(ctx context.Context, key []byte, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.writer.WriteMessages(attemptCtx, kafka.Message{
			Key:   key,
			Value: value,
			Time:  time.Now().UTC(),
		})
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(backoff)
		if backoff < time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("publish failed after %d attempts: %w", p.maxAttempts, lastErr)
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
