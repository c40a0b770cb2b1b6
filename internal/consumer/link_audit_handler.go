package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"example.com/timeline/internal/events"
)

// LinkAuditHandler records joint sessions and aggregation outcomes published by the API.
type LinkAuditHandler struct {
	logger zerolog.Logger
}

// NewLinkAuditHandler constructs a LinkAuditHandler.
func NewLinkAuditHandler(logger zerolog.Logger) *LinkAuditHandler {
	return &LinkAuditHandler{logger: logger}
}

// Handle decodes known event types and ignores the rest.
func (h *LinkAuditHandler) Handle(_ context.Context, msg Message) error {
	switch msg.EventType {
	case events.TypeJointSessionLinked:
		var evt events.JointSessionLinked
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		if len(evt.Participants) != 2 {
			return fmt.Errorf("joint session %s has %d participants", evt.LinkID, len(evt.Participants))
		}
		recordAuditedLink(evt.ActivityType)
		h.logger.Info().
			Str("link_id", evt.LinkID).
			Str("requested_by", evt.RequestedBy).
			Str("activity_type", evt.ActivityType).
			Time("start_time_local", evt.StartTimeLocal).
			Str("participant_a", evt.Participants[0].DisplayName).
			Int64("activity_a", evt.Participants[0].ActivityID).
			Str("participant_b", evt.Participants[1].DisplayName).
			Int64("activity_b", evt.Participants[1].ActivityID).
			Msg("joint session linked")
	case events.TypeTimelineAggregated:
		var evt events.TimelineAggregated
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		recordAuditedFailures(len(evt.FailedConnections))
		log := h.logger.Info()
		if len(evt.FailedConnections) > 0 {
			log = h.logger.Warn().Strs("failed_connections", evt.FailedConnections)
		}
		log.Str("request_id", evt.RequestID).
			Str("requested_by", evt.RequestedBy).
			Str("start_date", evt.StartDate).
			Str("end_date", evt.EndDate).
			Int("activities", evt.ActivityCount).
			Int("links", evt.LinkCount).
			Msg("timeline aggregated")
	default:
		h.logger.Debug().Str("event_type", msg.EventType).Msg("ignoring event")
	}
	return nil
}
