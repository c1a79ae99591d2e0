package models

import "time"

// Queue event status values.
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
)

// DefaultMaxRetries is the retry budget for a queue event before it is moved
// to the dead letter store.
const DefaultMaxRetries = 5

// PaymentQueueEvent is one durable delivery unit created from a verified
// provider webhook. The unique index over (payment_id, event_type) makes
// enqueueing idempotent under at-least-once webhook delivery.
type PaymentQueueEvent struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PaymentID    string     `gorm:"type:varchar(64);not null;index:ux_payment_queue_events_payment_type,unique,priority:1" json:"payment_id"`
	EventType    string     `gorm:"type:varchar(50);not null;index:ux_payment_queue_events_payment_type,unique,priority:2" json:"event_type"`
	Payload      string     `gorm:"type:longtext;not null" json:"payload"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RetryCount   int        `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries   int        `gorm:"not null;default:5" json:"max_retries"`
	NextRetryAt  time.Time  `gorm:"not null;index" json:"next_retry_at"`
	LastError    string     `gorm:"type:text" json:"last_error,omitempty"`
	DeadLettered bool       `gorm:"not null;default:false;index" json:"dead_lettered"`
	ProcessedAt  *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CompletedAt  *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsRetryable checks if the event still has retry budget left.
func (e *PaymentQueueEvent) IsRetryable() bool {
	return e.Status == QueueStatusFailed && e.RetryCount < e.MaxRetries
}

// MarkAsProcessing updates the event status to processing.
func (e *PaymentQueueEvent) MarkAsProcessing() {
	now := time.Now()
	e.Status = QueueStatusProcessing
	e.UpdatedAt = now
	e.ProcessedAt = &now
}

// MarkAsCompleted updates the event status to completed.
func (e *PaymentQueueEvent) MarkAsCompleted() {
	now := time.Now()
	e.Status = QueueStatusCompleted
	e.UpdatedAt = now
	e.CompletedAt = &now
	e.LastError = ""
}

// MarkAsFailed records a failed attempt and increments the retry counter.
func (e *PaymentQueueEvent) MarkAsFailed(errorMsg string) {
	e.Status = QueueStatusFailed
	e.UpdatedAt = time.Now()
	e.LastError = errorMsg
	e.RetryCount++
}
