package models

import "time"

// Order status values driven by payment notifications. The queue processor is
// the only writer of Status once a payment exists for the order.
const (
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusRejected  = "rejected"
	OrderStatusCancelled = "cancelled"
)

// Order is a placed order. UUID is the public identifier and the value encoded
// in the payment's external reference.
type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UUID       string      `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	CartID     uint        `gorm:"index" json:"cart_id"`
	BuyerEmail string      `gorm:"type:varchar(191);not null;index" json:"buyer_email"`
	Status     string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentID  string      `gorm:"type:varchar(64);index" json:"payment_id"`
	Total      float64     `gorm:"not null;default:0" json:"total"`
	Items      []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem is one line item of an order, snapshotting the unit price at
// checkout time.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsTerminalOrderStatus reports whether a status is final for an order.
// Terminal statuses are never overwritten by a non-terminal one, so a stale
// redelivered "pending" can not regress an already approved or rejected order.
func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusApproved || status == OrderStatusRejected
}
