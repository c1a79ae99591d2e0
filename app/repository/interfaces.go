package repository

import (
	"time"

	"github.com/shopfox/ShopFox/app/models"
	"gorm.io/gorm"
)

// OrderRepository defines the order/cart side of the pipeline: everything the
// queue processor touches when it applies a payment status, plus checkout.
type OrderRepository interface {
	CreateOrderFromCart(cart *models.Cart, buyerEmail string) (*models.Order, error)
	GetOrderByUUID(uuid string) (*models.Order, error)
	UpdateOrderStatus(orderUUID, status, paymentID string) error
	SavePaymentLog(entry *models.PaymentLog) error
	GetPaymentLogByPaymentID(paymentID string) (*models.PaymentLog, error)
	HasPaymentLog(paymentID, status string) (bool, error)
	DecrementStockForOrder(orderUUID string) error
	GetCartIDByOrderUUID(orderUUID string) (uint, error)
	GetCartByID(id uint) (*models.Cart, error)
	ClearCart(cartID uint) error
	UpdateCartTotal(cartID uint, total float64) error
}

// PaymentQueueRepository defines the durable event store operations.
type PaymentQueueRepository interface {
	CreateIfNotExists(event *models.PaymentQueueEvent) (bool, *models.PaymentQueueEvent, error)
	GetByID(id uint) (*models.PaymentQueueEvent, error)
	GetReady(limit int) ([]models.PaymentQueueEvent, error)
	Update(event *models.PaymentQueueEvent) error
	CountByStatus() (map[string]int64, error)
	PruneCompleted(olderThan time.Time) (int64, error)
}

// DeadLetterRepository defines the terminal store for exhausted events.
type DeadLetterRepository interface {
	CreateIfNotExists(entry *models.DeadLetterEvent) (bool, error)
	GetByID(id uint) (*models.DeadLetterEvent, error)
	List(offset, limit int) ([]models.DeadLetterEvent, error)
	MarkReviewed(id uint) error
	CountByStatus() (map[string]int64, error)
}

// ReconciliationRepository persists reconciliation run records.
type ReconciliationRepository interface {
	CreateRun(run *models.ReconciliationRun) error
	UpdateRun(run *models.ReconciliationRun) error
	GetRecentRuns(limit int) ([]models.ReconciliationRun, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Order          OrderRepository
	PaymentQueue   PaymentQueueRepository
	DeadLetter     DeadLetterRepository
	Reconciliation ReconciliationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:          NewOrderRepository(db),
		PaymentQueue:   NewPaymentQueueRepository(db),
		DeadLetter:     NewDeadLetterRepository(db),
		Reconciliation: NewReconciliationRepository(db),
	}
}
