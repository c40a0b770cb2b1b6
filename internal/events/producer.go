package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrUnknownTopic is returned for topics outside the event catalog.
	ErrUnknownTopic = errors.New("topic not in event catalog")
	// ErrMissingKey is returned for records without a partition key.
	ErrMissingKey = errors.New("event record has no key")
)

// Topics lists every topic of the event catalog in lexical order.
func Topics() []string {
	seen := make(map[string]struct{}, len(catalog))
	topics := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		if _, ok := seen[entry.Topic]; ok {
			continue
		}
		seen[entry.Topic] = struct{}{}
		topics = append(topics, entry.Topic)
	}
	sort.Strings(topics)
	return topics
}

// KafkaProducer owns one writer per catalog topic. Records are hashed on their key, the
// requesting account, so all events of one account stay ordered on one partition.
type KafkaProducer struct {
	writers map[string]*kafka.Writer
}

// NewKafkaProducer prepares writers for every catalog topic. Connections are opened on
// first write.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	writers := make(map[string]*kafka.Writer)
	for _, topic := range Topics() {
		writers[topic] = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			BatchTimeout: 50 * time.Millisecond,
		}
	}
	return &KafkaProducer{writers: writers}
}

// WriteMessages writes keyed records to a catalog topic.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer, ok := p.writers[topic]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	for i := range msgs {
		if len(msgs[i].Key) == 0 {
			return fmt.Errorf("%w: %s record %d", ErrMissingKey, topic, i)
		}
	}
	return writer.WriteMessages(ctx, msgs...)
}

// Close flushes and closes every writer.
func (p *KafkaProducer) Close() error {
	var errs []error
	for _, topic := range Topics() {
		if err := p.writers[topic].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s writer: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}
