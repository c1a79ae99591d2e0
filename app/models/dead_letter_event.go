package models

import "time"

// Dead letter review status values.
const (
	DeadLetterStatusPending  = "pending"
	DeadLetterStatusReviewed = "reviewed"
)

// DeadLetterEvent is the terminal record for a queue event that exhausted its
// retry budget. The unique index over (payment_id, event_type) guarantees at
// most one dead letter row per logical event, even if the exhausted source
// event is ever reprocessed.
type DeadLetterEvent struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PaymentID     string     `gorm:"type:varchar(64);not null;index:ux_dead_letter_events_payment_type,unique,priority:1" json:"payment_id"`
	EventType     string     `gorm:"type:varchar(50);not null;index:ux_dead_letter_events_payment_type,unique,priority:2" json:"event_type"`
	Payload       string     `gorm:"type:longtext;not null" json:"payload"`
	TotalAttempts int        `gorm:"not null" json:"total_attempts"`
	FinalError    string     `gorm:"type:text" json:"final_error"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedAt    *time.Time `gorm:"type:timestamp;default:null" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
