package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/timeline/internal/events"
)

func framedMessage(offset int64, eventType string, schemaID int, payload []byte) kafka.Message {
	return kafka.Message{
		Topic:     events.TopicJointSessions,
		Partition: 0,
		Offset:    offset,
		Key:       []byte("alice"),
		Time:      time.Now().UTC(),
		Value:     events.EncodeWireFormat(schemaID, payload),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "schema_subject", Value: []byte("timeline_joint_sessions-value")},
		},
	}
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	payload := []byte(`{"link_id":"abc"}`)
	reader := &stubReader{
		messages: []kafka.Message{framedMessage(10, events.TypeJointSessionLinked, 42, payload)},
		after:    contextCanceled,
	}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(zerolog.New(testWriter{t})))

	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, events.TypeJointSessionLinked, handler.last.EventType)
	require.Equal(t, "alice", handler.last.Key)
	require.Equal(t, "timeline_joint_sessions-value", handler.last.SchemaSubject)
	require.Equal(t, 42, handler.last.SchemaID)
	require.JSONEq(t, string(payload), string(handler.last.Payload))
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{
		messages: []kafka.Message{framedMessage(20, events.TypeTimelineAggregated, 99, []byte(`{}`))},
		after:    contextCanceled,
	}
	handler := &stubHandler{err: errors.New("boom")}

	processor := NewProcessor(reader, handler, WithLogger(zerolog.New(testWriter{t})))

	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls)
}

func TestProcessorCommitsPoisonPills(t *testing.T) {
	noHeader := framedMessage(30, events.TypeJointSessionLinked, 1, []byte(`{}`))
	noHeader.Headers = nil

	badMagic := framedMessage(31, events.TypeJointSessionLinked, 1, []byte(`{}`))
	badMagic.Value[0] = 7

	short := framedMessage(32, events.TypeJointSessionLinked, 1, nil)
	short.Value = []byte{0, 1}

	notJSON := framedMessage(33, events.TypeJointSessionLinked, 1, []byte(`{oops`))

	before := testutil.ToFloat64(decodeErrorCounter.WithLabelValues(events.TopicJointSessions))

	reader := &stubReader{
		messages: []kafka.Message{noHeader, badMagic, short, notJSON},
		after:    contextCanceled,
	}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 0, handler.calls)
	require.Equal(t, 4, reader.commitCalls)
	require.Equal(t, before+4, testutil.ToFloat64(decodeErrorCounter.WithLabelValues(events.TopicJointSessions)))
}

func TestProcessorRetriesAfterFetchError(t *testing.T) {
	reader := &stubReader{
		fetchErrs: []error{errors.New("broker unavailable")},
		messages:  []kafka.Message{framedMessage(40, events.TypeJointSessionLinked, 1, []byte(`{}`))},
		after:     contextCanceled,
	}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler, WithFetchBackoff(0)).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, handler.calls)
}

func TestProcessorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &stubReader{messages: []kafka.Message{framedMessage(50, events.TypeJointSessionLinked, 1, []byte(`{}`))}}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, handler.calls)
}

type stubReader struct {
	fetchErrs   []error
	messages    []kafka.Message
	index       int
	commitCalls int
	after       func() error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		return kafka.Message{}, err
	}
	if r.index >= len(r.messages) {
		if r.after != nil {
			return kafka.Message{}, r.after()
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

func contextCanceled() error { return context.Canceled }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(string(p))
	return len(p), nil
}
