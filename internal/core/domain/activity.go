package domain

import "time"

// ActivityLog records who did what across the dashboard.
type ActivityLog struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ActorID   string    `json:"actor_id" bson:"actor_id"`
	ActorName string    `json:"actor_name" bson:"actor_name"`
	Action    string    `json:"action" bson:"action"`
	Entity    string    `json:"entity" bson:"entity"`
	EntityID  string    `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Details   string    `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
