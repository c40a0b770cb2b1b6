package events

type catalogEntry struct {
	Topic         string
	SchemaSubject string
	Schema        string
}

// Topics carrying timeline events.
const (
	TopicJointSessions = "timeline_joint_sessions"
	TopicAggregations  = "timeline_aggregations"
)

var catalog = map[string]catalogEntry{
	TypeJointSessionLinked: {
		Topic:         TopicJointSessions,
		SchemaSubject: TopicJointSessions + "-value",
		Schema:        jointSessionLinkedSchema,
	},
	TypeTimelineAggregated: {
		Topic:         TopicAggregations,
		SchemaSubject: TopicAggregations + "-value",
		Schema:        timelineAggregatedSchema,
	},
}

const jointSessionLinkedSchema = `{
  "type": "object",
  "title": "JointSessionLinked",
  "properties": {
    "link_id": {"type": "string"},
    "requested_by": {"type": "string"},
    "activity_type": {"type": "string"},
    "start_time_local": {"type": "string", "format": "date-time"},
    "participants": {
      "type": "array",
      "minItems": 2,
      "maxItems": 2,
      "items": {
        "type": "object",
        "properties": {
          "display_name": {"type": "string"},
          "activity_id": {"type": "integer"}
        },
        "required": ["display_name", "activity_id"]
      }
    },
    "detected_at": {"type": "string", "format": "date-time"}
  },
  "required": ["link_id", "requested_by", "activity_type", "start_time_local", "participants", "detected_at"],
  "additionalProperties": false
}`

const timelineAggregatedSchema = `{
  "type": "object",
  "title": "TimelineAggregated",
  "properties": {
    "request_id": {"type": "string"},
    "requested_by": {"type": "string"},
    "start_date": {"type": "string", "format": "date"},
    "end_date": {"type": "string", "format": "date"},
    "connections": {"type": "array", "items": {"type": "string"}},
    "failed_connections": {"type": "array", "items": {"type": "string"}},
    "activity_count": {"type": "integer"},
    "link_count": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["request_id", "requested_by", "start_date", "end_date", "connections", "activity_count", "link_count", "occurred_at"],
  "additionalProperties": false
}`
