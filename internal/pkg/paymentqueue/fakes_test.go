package paymentqueue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shopfox/ShopFox/app/models"
	"github.com/shopfox/ShopFox/internal/pkg/payments"
)

// fakeQueueRepo is an in-memory PaymentQueueRepository.
type fakeQueueRepo struct {
	events map[uint]*models.PaymentQueueEvent
	nextID uint
	pruned []time.Time
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{events: make(map[uint]*models.PaymentQueueEvent)}
}

func (f *fakeQueueRepo) CreateIfNotExists(event *models.PaymentQueueEvent) (bool, *models.PaymentQueueEvent, error) {
	for _, existing := range f.events {
		if existing.PaymentID == event.PaymentID && existing.EventType == event.EventType {
			cp := *existing
			return false, &cp, nil
		}
	}
	f.nextID++
	cp := *event
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.events[cp.ID] = &cp
	out := cp
	return true, &out, nil
}

func (f *fakeQueueRepo) GetByID(id uint) (*models.PaymentQueueEvent, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *event
	return &cp, nil
}

func (f *fakeQueueRepo) GetReady(limit int) ([]models.PaymentQueueEvent, error) {
	var ready []models.PaymentQueueEvent
	now := time.Now()
	for _, event := range f.events {
		if (event.Status == models.QueueStatusPending || event.Status == models.QueueStatusFailed) &&
			!event.NextRetryAt.After(now) && !event.DeadLettered {
			ready = append(ready, *event)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].RetryCount != ready[j].RetryCount {
			return ready[i].RetryCount < ready[j].RetryCount
		}
		return ready[i].CreatedAt.Before(ready[j].CreatedAt)
	})
	if len(ready) > limit {
		ready = ready[:limit]
	}
	return ready, nil
}

func (f *fakeQueueRepo) Update(event *models.PaymentQueueEvent) error {
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeQueueRepo) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, event := range f.events {
		counts[event.Status]++
	}
	return counts, nil
}

func (f *fakeQueueRepo) PruneCompleted(olderThan time.Time) (int64, error) {
	f.pruned = append(f.pruned, olderThan)
	var n int64
	for id, event := range f.events {
		if event.Status == models.QueueStatusCompleted && event.CreatedAt.Before(olderThan) {
			delete(f.events, id)
			n++
		}
	}
	return n, nil
}

// fakeDeadLetterRepo is an in-memory DeadLetterRepository.
type fakeDeadLetterRepo struct {
	entries   map[uint]*models.DeadLetterEvent
	nextID    uint
	createErr error
}

func newFakeDeadLetterRepo() *fakeDeadLetterRepo {
	return &fakeDeadLetterRepo{entries: make(map[uint]*models.DeadLetterEvent)}
}

func (f *fakeDeadLetterRepo) CreateIfNotExists(entry *models.DeadLetterEvent) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	for _, existing := range f.entries {
		if existing.PaymentID == entry.PaymentID && existing.EventType == entry.EventType {
			return false, nil
		}
	}
	f.nextID++
	cp := *entry
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.entries[cp.ID] = &cp
	return true, nil
}

func (f *fakeDeadLetterRepo) GetByID(id uint) (*models.DeadLetterEvent, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *entry
	return &cp, nil
}

func (f *fakeDeadLetterRepo) List(offset, limit int) ([]models.DeadLetterEvent, error) {
	var entries []models.DeadLetterEvent
	for _, entry := range f.entries {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if offset > len(entries) {
		offset = len(entries)
	}
	entries = entries[offset:]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeDeadLetterRepo) MarkReviewed(id uint) error {
	entry, ok := f.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	entry.Status = models.DeadLetterStatusReviewed
	entry.ReviewedAt = &now
	return nil
}

func (f *fakeDeadLetterRepo) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, entry := range f.entries {
		counts[entry.Status]++
	}
	return counts, nil
}

// fakeOrderRepo is an in-memory OrderRepository that records write counts so
// tests can assert idempotency.
type fakeOrderRepo struct {
	orders map[string]*models.Order
	logs   []models.PaymentLog

	statusUpdates    map[string]int
	stockDecrements  map[string]int
	cartClears       map[uint]int
	cartTotalUpdates map[uint]float64

	stockErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:           make(map[string]*models.Order),
		statusUpdates:    make(map[string]int),
		stockDecrements:  make(map[string]int),
		cartClears:       make(map[uint]int),
		cartTotalUpdates: make(map[uint]float64),
	}
}

func (f *fakeOrderRepo) addOrder(orderUUID string, cartID uint) *models.Order {
	order := &models.Order{
		ID:         uint(len(f.orders) + 1),
		UUID:       orderUUID,
		CartID:     cartID,
		BuyerEmail: "buyer@example.com",
		Status:     models.OrderStatusPending,
		Total:      42.50,
	}
	f.orders[orderUUID] = order
	return order
}

func (f *fakeOrderRepo) CreateOrderFromCart(cart *models.Cart, buyerEmail string) (*models.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderRepo) GetOrderByUUID(orderUUID string) (*models.Order, error) {
	order, ok := f.orders[orderUUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(orderUUID, status, paymentID string) error {
	order, ok := f.orders[orderUUID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	order.PaymentID = paymentID
	f.statusUpdates[orderUUID]++
	return nil
}

func (f *fakeOrderRepo) SavePaymentLog(entry *models.PaymentLog) error {
	cp := *entry
	cp.ID = uint(len(f.logs) + 1)
	cp.CreatedAt = time.Now()
	f.logs = append(f.logs, cp)
	return nil
}

func (f *fakeOrderRepo) GetPaymentLogByPaymentID(paymentID string) (*models.PaymentLog, error) {
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].PaymentID == paymentID {
			cp := f.logs[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) HasPaymentLog(paymentID, status string) (bool, error) {
	for _, entry := range f.logs {
		if entry.PaymentID == paymentID && entry.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderRepo) DecrementStockForOrder(orderUUID string) error {
	if f.stockErr != nil {
		return f.stockErr
	}
	f.stockDecrements[orderUUID]++
	return nil
}

func (f *fakeOrderRepo) GetCartIDByOrderUUID(orderUUID string) (uint, error) {
	order, ok := f.orders[orderUUID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return order.CartID, nil
}

func (f *fakeOrderRepo) GetCartByID(id uint) (*models.Cart, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderRepo) ClearCart(cartID uint) error {
	f.cartClears[cartID]++
	return nil
}

func (f *fakeOrderRepo) UpdateCartTotal(cartID uint, total float64) error {
	f.cartTotalUpdates[cartID] = total
	return nil
}

// fakeRunsRepo is an in-memory ReconciliationRepository.
type fakeRunsRepo struct {
	runs map[string]*models.ReconciliationRun
}

func newFakeRunsRepo() *fakeRunsRepo {
	return &fakeRunsRepo{runs: make(map[string]*models.ReconciliationRun)}
}

func (f *fakeRunsRepo) CreateRun(run *models.ReconciliationRun) error {
	run.ID = uint(len(f.runs) + 1)
	cp := *run
	f.runs[run.JobID] = &cp
	return nil
}

func (f *fakeRunsRepo) UpdateRun(run *models.ReconciliationRun) error {
	if _, ok := f.runs[run.JobID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *run
	f.runs[run.JobID] = &cp
	return nil
}

func (f *fakeRunsRepo) GetRecentRuns(limit int) ([]models.ReconciliationRun, error) {
	var runs []models.ReconciliationRun
	for _, run := range f.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// fakeProviderClient scripts GetPayment responses per call.
type fakeProviderClient struct {
	payments map[string]*payments.Payment
	errs     []error
	calls    int
}

func (f *fakeProviderClient) GetPayment(ctx context.Context, paymentID string) (*payments.Payment, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("unexpected payment lookup for %s", paymentID)
	}
	cp := *payment
	return &cp, nil
}

func (f *fakeProviderClient) CreatePreference(ctx context.Context, req payments.PreferenceRequest) (*payments.Preference, error) {
	return nil, errors.New("not implemented")
}

// fakeCounter records alert counter increments in memory.
type fakeCounter struct {
	counts map[string]int64
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64)}
}

func (f *fakeCounter) Incr(key string) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

// fakeMailer records confirmation emails instead of sending them.
type fakeMailer struct {
	sent    []string
	sendErr error
}

func (f *fakeMailer) SendOrderConfirmationEmail(order *models.Order) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, order.UUID)
	return nil
}
