package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopfox/ShopFox/app/models"
)

// paymentQueueRepository implements the PaymentQueueRepository interface
type paymentQueueRepository struct {
	db *gorm.DB
}

// NewPaymentQueueRepository creates a new payment queue repository instance
func NewPaymentQueueRepository(db *gorm.DB) PaymentQueueRepository {
	return &paymentQueueRepository{db: db}
}

// CreateIfNotExists inserts a queue event, treating a duplicate
// (payment_id, event_type) as "already queued". It returns whether a new row
// was created and the stored row either way.
func (r *paymentQueueRepository) CreateIfNotExists(event *models.PaymentQueueEvent) (bool, *models.PaymentQueueEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "payment_id"},
			{Name: "event_type"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentQueueEvent
	if err := r.db.Where("payment_id = ? AND event_type = ?", event.PaymentID, event.EventType).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *paymentQueueRepository) GetByID(id uint) (*models.PaymentQueueEvent, error) {
	var event models.PaymentQueueEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetReady selects the next batch of processable events: pending or failed,
// due for a retry, not yet dead lettered. Events closest to exhaustion wait
// behind fresher ones; within a retry tier delivery order is FIFO.
func (r *paymentQueueRepository) GetReady(limit int) ([]models.PaymentQueueEvent, error) {
	var events []models.PaymentQueueEvent
	err := r.db.
		Where("status IN ? AND next_retry_at <= ? AND dead_lettered = ?",
			[]string{models.QueueStatusPending, models.QueueStatusFailed}, time.Now(), false).
		Order("retry_count ASC, created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *paymentQueueRepository) Update(event *models.PaymentQueueEvent) error {
	return r.db.Save(event).Error
}

// CountByStatus returns event counts grouped by status.
func (r *paymentQueueRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&models.PaymentQueueEvent{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Status] = rr.Count
	}
	return counts, nil
}

// PruneCompleted deletes completed events older than the cutoff. Failed and
// dead-lettered rows are never pruned.
func (r *paymentQueueRepository) PruneCompleted(olderThan time.Time) (int64, error) {
	res := r.db.Where("status = ? AND created_at < ?", models.QueueStatusCompleted, olderThan).
		Delete(&models.PaymentQueueEvent{})
	return res.RowsAffected, res.Error
}
