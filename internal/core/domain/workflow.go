package domain

import "time"

// WorkflowRecord tracks where a request sits in its stage graph and who is
// currently responsible for it.
type WorkflowRecord struct {
	RequestID    string        `json:"request_id" bson:"request_id"`
	RequestType  RequestType   `json:"request_type" bson:"request_type"`
	CurrentStage RequestStatus `json:"current_stage" bson:"current_stage"`
	AssignedTo   string        `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}
