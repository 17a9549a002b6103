package domain

import "time"

// RequestStatus is both the request's status and its workflow stage.
type RequestStatus string

const (
	StatusSubmitted          RequestStatus = "submitted"
	StatusUnderReview        RequestStatus = "under_review"
	StatusOfficerReviewed    RequestStatus = "officer_reviewed"
	StatusHOPReviewed        RequestStatus = "hop_reviewed"
	StatusDirectorReviewed   RequestStatus = "director_reviewed"
	StatusApproved           RequestStatus = "approved"
	StatusRejected           RequestStatus = "rejected"
	StatusPendingInformation RequestStatus = "pending_information"
	StatusCancelled          RequestStatus = "cancelled"
)

// progressOrder is the linear order used for progress display. Rejected,
// pending_information and cancelled sit outside it.
var progressOrder = []RequestStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusOfficerReviewed,
	StatusHOPReviewed,
	StatusDirectorReviewed,
	StatusApproved,
}

// Progress returns the status position as a percentage of the linear order.
// ok is false for side states.
func (s RequestStatus) Progress() (percent int, ok bool) {
	for i, st := range progressOrder {
		if st == s {
			return i * 100 / (len(progressOrder) - 1), true
		}
	}
	return 0, false
}

// Editable reports whether the requester may still change the request body.
func (s RequestStatus) Editable() bool {
	return s == StatusSubmitted || s == StatusPendingInformation
}

// RequestType selects the stage graph a request moves through.
type RequestType string

const (
	TypeFunding     RequestType = "funding"
	TypePartnership RequestType = "partnership"
	TypeScholarship RequestType = "scholarship"
	TypeGeneral     RequestType = "general"
)

// Document is metadata for a file attached to a request. The file itself
// lives in external storage.
type Document struct {
	Name       string    `json:"name" bson:"name"`
	URL        string    `json:"url" bson:"url"`
	MimeType   string    `json:"mime_type,omitempty" bson:"mime_type,omitempty"`
	UploadedBy string    `json:"uploaded_by" bson:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// Request is a beneficiary's funding or partnership application.
type Request struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	TicketNumber   string        `json:"ticket_number" bson:"ticket_number"`
	Title          string        `json:"title" bson:"title"`
	Description    string        `json:"description" bson:"description"`
	Type           RequestType   `json:"type" bson:"type"`
	Status         RequestStatus `json:"status" bson:"status"`
	Amount         *float64      `json:"amount,omitempty" bson:"amount,omitempty"`
	RequesterID    string        `json:"requester_id" bson:"requester_id"`
	RequesterName  string        `json:"requester_name" bson:"requester_name"`
	RequesterEmail string        `json:"requester_email,omitempty" bson:"requester_email,omitempty"`
	AssignedTo     string        `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	Documents      []Document    `json:"documents" bson:"documents"`
	IdempotencyKey string        `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}

// Known reports whether s is a declared status.
func (s RequestStatus) Known() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusOfficerReviewed, StatusHOPReviewed,
		StatusDirectorReviewed, StatusApproved, StatusRejected, StatusPendingInformation,
		StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s ends the workflow in every graph.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}
