package events

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

type schemaRegistrar interface {
	EnsureSchema(context.Context, string, string) (int, error)
}

// KafkaPublisher encodes events with Schema Registry framing and writes them per topic.
type KafkaPublisher struct {
	producer      messageWriter
	registry      schemaRegistrar
	schemaIDCache sync.Map
	now           func() time.Time
}

// NewKafkaPublisher constructs a KafkaPublisher.
func NewKafkaPublisher(producer messageWriter, registry schemaRegistrar) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Publish groups events by topic and writes each group in one call.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	batches := make(map[string][]kafka.Message)
	var order []string

	for _, evt := range events {
		meta, ok := catalog[evt.Type]
		if !ok {
			return fmt.Errorf("no schema metadata for event_type=%s", evt.Type)
		}

		schemaID, err := p.schemaID(ctx, meta)
		if err != nil {
			return err
		}

		body, err := json.Marshal(evt.Payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", evt.Type, err)
		}

		record := kafka.Message{
			Key:   []byte(evt.Key),
			Value: EncodeWireFormat(schemaID, body),
			Time:  p.now(),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(evt.Type)},
				{Key: "schema_subject", Value: []byte(meta.SchemaSubject)},
			},
		}
		if _, seen := batches[meta.Topic]; !seen {
			order = append(order, meta.Topic)
		}
		batches[meta.Topic] = append(batches[meta.Topic], record)
	}

	for _, topic := range order {
		msgs := batches[topic]
		if err := p.producer.WriteMessages(ctx, topic, msgs...); err != nil {
			failedCounter.WithLabelValues(topic).Add(float64(len(msgs)))
			return err
		}
		publishedCounter.WithLabelValues(topic).Add(float64(len(msgs)))
	}
	return nil
}

func (p *KafkaPublisher) schemaID(ctx context.Context, meta catalogEntry) (int, error) {
	if cached, ok := p.schemaIDCache.Load(meta.SchemaSubject); ok {
		return cached.(int), nil
	}
	id, err := p.registry.EnsureSchema(ctx, meta.SchemaSubject, meta.Schema)
	if err != nil {
		return 0, err
	}
	p.schemaIDCache.Store(meta.SchemaSubject, id)
	return id, nil
}

// EncodeWireFormat applies Confluent framing: a zero magic byte, the big endian schema id,
// then the payload.
func EncodeWireFormat(schemaID int, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = 0
	binary.BigEndian.PutUint32(frame[1:5], uint32(schemaID))
	copy(frame[5:], payload)
	return frame
}

// DecodeWireFormat splits a framed value into its schema id and payload.
func DecodeWireFormat(value []byte) (int, []byte, error) {
	if len(value) < 5 {
		return 0, nil, fmt.Errorf("invalid payload length: %d", len(value))
	}
	if value[0] != 0 {
		return 0, nil, fmt.Errorf("unexpected magic byte %d", value[0])
	}
	schemaID := int(binary.BigEndian.Uint32(value[1:5]))
	return schemaID, append([]byte(nil), value[5:]...), nil
}
