// Package events defines the events emitted by the timeline service and publishes them
// to Kafka.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeJointSessionLinked = "timeline.joint_session_linked"
	TypeTimelineAggregated = "timeline.aggregated"
)

// Participant is one side of a joint session.
type Participant struct {
	DisplayName string `json:"display_name"`
	ActivityID  int64  `json:"activity_id"`
}

// JointSessionLinked is emitted for each pair of activities linked by the matcher.
type JointSessionLinked struct {
	LinkID         string        `json:"link_id"`
	RequestedBy    string        `json:"requested_by"`
	ActivityType   string        `json:"activity_type"`
	StartTimeLocal time.Time     `json:"start_time_local"`
	Participants   []Participant `json:"participants"`
	DetectedAt     time.Time     `json:"detected_at"`
}

// TimelineAggregated summarises one weekly aggregation.
type TimelineAggregated struct {
	RequestID         string    `json:"request_id"`
	RequestedBy       string    `json:"requested_by"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	Connections       []string  `json:"connections"`
	FailedConnections []string  `json:"failed_connections"`
	ActivityCount     int       `json:"activity_count"`
	LinkCount         int       `json:"link_count"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Event is a typed payload ready for publishing.
type Event struct {
	Type    string
	Key     string
	Payload any
}

// Publisher delivers events downstream.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
