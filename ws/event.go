// Package ws pushes live admin events over WebSocket.
//
// A Hub tracks every connected admin. Services publish through the
// EventPublisher interface after a write commits; the Hub fans the event out
// to each connection's WritePump. Clients only ever send heartbeats.
package ws

// Event is one frame on the wire. Seq increases by one per outbound event so
// clients can detect gaps.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → server
const (
	OpHeartbeat = "heartbeat"
)

// Server → client
const (
	OpReady              = "ready"
	OpHeartbeatAck       = "heartbeat_ack"
	OpProducerVerified   = "producer_verified"
	OpProducerRejected   = "producer_rejected"
	OpBusinessVerified   = "business_verified"
	OpBusinessRejected   = "business_rejected"
	OpReviewModerated    = "review_moderated"
	OpQuestionAnswered   = "question_answered"
	OpAdoptionUpdated    = "adoption_updated"
	OpOrderStatusUpdated = "order_status_updated"
	OpSettingsUpdated    = "settings_updated"
	OpSubscriptionChange = "subscription_updated"
)

// ReadyData is sent once per connection, right after registration.
type ReadyData struct {
	UserID        int64   `json:"user_id"`
	OnlineAdmins  []int64 `json:"online_admins"`
	PendingCounts any     `json:"pending_counts"`
}

// EntityData identifies the record an event refers to.
type EntityData struct {
	ID     int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}
