package models

import "time"

// PaymentLog records every payment status the pipeline has applied. Together
// with the order row it is the idempotency source: a log row with the same
// status plus an order already reflecting that status means a replayed
// notification is a no-op.
type PaymentLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PaymentID    string    `gorm:"type:varchar(64);not null;index" json:"payment_id"`
	OrderUUID    string    `gorm:"type:varchar(36);not null;index" json:"order_uuid"`
	Status       string    `gorm:"type:varchar(30);not null" json:"status"`
	StatusDetail string    `gorm:"type:varchar(100)" json:"status_detail"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
