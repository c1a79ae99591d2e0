package models

import "time"

// Reconciliation run outcome values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// ReconciliationRun is the persisted record of one reconciliation pass over
// the payment queue, kept for operator observability.
type ReconciliationRun struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	JobID      string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"job_id"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time `gorm:"type:timestamp;default:null" json:"finished_at,omitempty"`
	Processed  int        `gorm:"not null;default:0" json:"processed"`
	Failed     int        `gorm:"not null;default:0" json:"failed"`
	Pruned     int64      `gorm:"not null;default:0" json:"pruned"`
	Status     string     `gorm:"type:varchar(20);not null;default:'running'" json:"status"`
	ErrorMsg   string     `gorm:"type:text" json:"error_msg,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
