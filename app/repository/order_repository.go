package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfox/ShopFox/app/models"
)

// ErrInsufficientStock is returned when a checkout asks for more units than a
// product currently has available.
var ErrInsufficientStock = errors.New("insufficient stock")

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateOrderFromCart turns a cart into a pending order, snapshotting prices
// and moving each item's quantity from free stock into the reservation.
func (r *orderRepository) CreateOrderFromCart(cart *models.Cart, buyerEmail string) (*models.Order, error) {
	order := &models.Order{
		UUID:       uuid.New().String(),
		CartID:     cart.ID,
		BuyerEmail: buyerEmail,
		Status:     models.OrderStatusPending,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(cart.Items))

		for _, ci := range cart.Items {
			var product models.Product
			if err := tx.First(&product, ci.ProductID).Error; err != nil {
				return fmt.Errorf("load product %d: %w", ci.ProductID, err)
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, ci.Quantity).
				Updates(map[string]interface{}{
					"stock":          gorm.Expr("stock - ?", ci.Quantity),
					"reserved_stock": gorm.Expr("reserved_stock + ?", ci.Quantity),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %d: %w", product.ID, ErrInsufficientStock)
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  ci.Quantity,
				UnitPrice: product.Price,
			})
			total += product.Price * float64(ci.Quantity)
		}

		order.Total = total
		order.Items = items
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderByUUID(orderUUID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("uuid = ?", orderUUID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus writes the payment-derived status and payment id as a
// single-row update.
func (r *orderRepository) UpdateOrderStatus(orderUUID, status, paymentID string) error {
	return r.db.Model(&models.Order{}).
		Where("uuid = ?", orderUUID).
		Updates(map[string]interface{}{
			"status":     status,
			"payment_id": paymentID,
		}).Error
}

func (r *orderRepository) SavePaymentLog(entry *models.PaymentLog) error {
	return r.db.Create(entry).Error
}

// GetPaymentLogByPaymentID returns the most recent log row for a payment.
func (r *orderRepository) GetPaymentLogByPaymentID(paymentID string) (*models.PaymentLog, error) {
	var entry models.PaymentLog
	err := r.db.Where("payment_id = ?", paymentID).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// HasPaymentLog reports whether this exact (payment_id, status) pair has been
// logged before. Used by the processor's idempotency check.
func (r *orderRepository) HasPaymentLog(paymentID, status string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PaymentLog{}).
		Where("payment_id = ? AND status = ?", paymentID, status).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DecrementStockForOrder releases the reservation for every line item of an
// approved order. Each product is a single conditional update so a replay can
// never drive the counters negative.
func (r *orderRepository) DecrementStockForOrder(orderUUID string) error {
	order, err := r.GetOrderByUUID(orderUUID)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		res := r.db.Model(&models.Product{}).
			Where("id = ? AND reserved_stock >= ?", item.ProductID, item.Quantity).
			Update("reserved_stock", gorm.Expr("reserved_stock - ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %d: reservation already released", item.ProductID)
		}
	}
	return nil
}

func (r *orderRepository) GetCartIDByOrderUUID(orderUUID string) (uint, error) {
	var order models.Order
	if err := r.db.Select("id", "cart_id").Where("uuid = ?", orderUUID).First(&order).Error; err != nil {
		return 0, err
	}
	return order.CartID, nil
}

func (r *orderRepository) GetCartByID(id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items").First(&cart, id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *orderRepository) ClearCart(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func (r *orderRepository) UpdateCartTotal(cartID uint, total float64) error {
	return r.db.Model(&models.Cart{}).Where("id = ?", cartID).Update("total", total).Error
}
