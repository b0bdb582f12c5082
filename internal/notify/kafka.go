package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of *kafka.Writer the sink uses.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes one message per notification to a topic.
type KafkaSink struct {
	writer KafkaWriter
	now    func() time.Time
}

// NewKafkaWriter creates a writer for topic on brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewKafkaSink creates a sink over w.
func NewKafkaSink(w KafkaWriter) *KafkaSink {
	return &KafkaSink{writer: w, now: time.Now}
}

func (s *KafkaSink) Send(ctx context.Context, msg Message) error {
	now := s.now().UTC()
	data, err := json.Marshal(envelope{
		Key:        msg.Key,
		Text:       msg.Text,
		Recipients: msg.Recipients,
		SentAt:     now,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: data,
		Time:  now,
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
