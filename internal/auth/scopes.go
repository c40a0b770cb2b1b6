package auth

// ScopeTimelineRead grants access to aggregated timelines and the connection list.
const ScopeTimelineRead = "timeline:read"
