package ports

import "context"

// EmailMessage is a plain-text companion email.
type EmailMessage struct {
	UserID  string // shard key, keeps one recipient's mail in order
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}
