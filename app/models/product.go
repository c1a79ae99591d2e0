package models

import "time"

// Product is a catalog entry. Stock is the sellable quantity, ReservedStock
// the part of it held by not-yet-paid orders. Checkout moves units from Stock
// to ReservedStock; an approved payment releases the reservation.
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(191);not null" json:"name"`
	Price         float64   `gorm:"not null" json:"price"`
	Stock         int       `gorm:"not null;default:0" json:"stock"`
	ReservedStock int       `gorm:"not null;default:0" json:"reserved_stock"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
