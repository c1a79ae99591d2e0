package repository

import (
	"gorm.io/gorm"

	"github.com/shopfox/ShopFox/app/models"
)

// reconciliationRepository implements the ReconciliationRepository interface
type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a new reconciliation repository instance
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) CreateRun(run *models.ReconciliationRun) error {
	return r.db.Create(run).Error
}

func (r *reconciliationRepository) UpdateRun(run *models.ReconciliationRun) error {
	return r.db.Save(run).Error
}

func (r *reconciliationRepository) GetRecentRuns(limit int) ([]models.ReconciliationRun, error) {
	var runs []models.ReconciliationRun
	err := r.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
