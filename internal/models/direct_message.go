package models

import (
	"time"

	"github.com/google/uuid"
)

type DirectMessage struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	FromUsername string     `json:"fromUsername" db:"from_username"`
	ToUsername   string     `json:"toUsername" db:"to_username"`
	Body         string     `json:"body" db:"body"`
	SentAt       time.Time  `json:"sentAt" db:"sent_at"`
	ReadAt       *time.Time `json:"readAt,omitempty" db:"read_at"`
}

// MessageDetail is a single message with both parties embedded.
type MessageDetail struct {
	ID       uuid.UUID   `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sentAt"`
	ReadAt   *time.Time  `json:"readAt,omitempty"`
	FromUser UserSummary `json:"fromUser"`
	ToUser   UserSummary `json:"toUser"`
}

// SentMessage is a message listed from the sender's side; only the
// recipient is embedded.
type SentMessage struct {
	ID     uuid.UUID   `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sentAt"`
	ReadAt *time.Time  `json:"readAt,omitempty"`
	ToUser UserSummary `json:"toUser"`
}

// ReceivedMessage is a message listed from the recipient's side; only the
// sender is embedded.
type ReceivedMessage struct {
	ID       uuid.UUID   `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sentAt"`
	ReadAt   *time.Time  `json:"readAt,omitempty"`
	FromUser UserSummary `json:"fromUser"`
}
