package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopfox/ShopFox/app/models"
)

// deadLetterRepository implements the DeadLetterRepository interface
type deadLetterRepository struct {
	db *gorm.DB
}

// NewDeadLetterRepository creates a new dead letter repository instance
func NewDeadLetterRepository(db *gorm.DB) DeadLetterRepository {
	return &deadLetterRepository{db: db}
}

// CreateIfNotExists inserts a dead letter entry once per (payment_id,
// event_type); a conflicting insert is reported as not created, not as an
// error.
func (r *deadLetterRepository) CreateIfNotExists(entry *models.DeadLetterEvent) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "payment_id"},
			{Name: "event_type"},
		},
		DoNothing: true,
	}).Create(entry)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *deadLetterRepository) GetByID(id uint) (*models.DeadLetterEvent, error) {
	var entry models.DeadLetterEvent
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *deadLetterRepository) List(offset, limit int) ([]models.DeadLetterEvent, error) {
	var entries []models.DeadLetterEvent
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *deadLetterRepository) MarkReviewed(id uint) error {
	now := time.Now()
	return r.db.Model(&models.DeadLetterEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.DeadLetterStatusReviewed,
			"reviewed_at": &now,
		}).Error
}

// CountByStatus returns dead letter counts grouped by review status.
func (r *deadLetterRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&models.DeadLetterEvent{}).
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
