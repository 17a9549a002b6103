package domain

import "time"

// HistoryAction classifies a history entry.
type HistoryAction string

const (
	ActionStatusChange HistoryAction = "status_change"
	ActionAssignment   HistoryAction = "assignment"
	ActionComment      HistoryAction = "comment"
)

// HistoryEntry is an immutable audit trail entry for a request. Entries are
// only ever appended.
type HistoryEntry struct {
	ID             string        `json:"id" bson:"_id"`
	RequestID      string        `json:"request_id" bson:"request_id"`
	Action         HistoryAction `json:"action" bson:"action"`
	PreviousStatus RequestStatus `json:"previous_status,omitempty" bson:"previous_status,omitempty"`
	NewStatus      RequestStatus `json:"new_status" bson:"new_status"`
	ActorID        string        `json:"actor_id" bson:"actor_id"`
	ActorName      string        `json:"actor_name" bson:"actor_name"`
	Details        string        `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
}
