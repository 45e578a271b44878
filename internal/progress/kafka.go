package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitterConfig contains configurable parameters for the Kafka emitter.
type KafkaEmitterConfig struct {
	// Brokers is the list of Kafka broker addresses (host:port).
	Brokers []string

	// Topic is the topic progress events are written to.
	Topic string

	// WriteTimeout is the per-emit timeout. Defaults to 5s if zero.
	WriteTimeout time.Duration
}

// KafkaEmitter publishes progress events through a kafka-go Writer. Events
// are keyed by workflow id with a hash balancer, so one workflow's events
// land on one partition and stay ordered.
type KafkaEmitter struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewKafkaEmitter constructs a KafkaEmitter or fails if brokers/topic are missing.
func NewKafkaEmitter(cfg KafkaEmitterConfig) (*KafkaEmitter, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka emitter: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka emitter: topic required")
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		Async:        false,
	})
	return &KafkaEmitter{writer: w, timeout: cfg.WriteTimeout}, nil
}

// Emit publishes one event. Failures are logged and dropped: progress is
// observability only, never a correctness dependency.
func (e *KafkaEmitter) Emit(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("progress: marshal event: %v", err)
		return
	}
	emitCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(ev.WorkflowID.String()),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := e.writer.WriteMessages(emitCtx, msg); err != nil {
		log.Printf("progress: emit %s for workflow %s: %v", ev.Type, ev.WorkflowID, err)
	}
}

// Close flushes and shuts down the underlying writer.
func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}
