package repository

import (
	"time"

	"gorm.io/gorm"

	"paygate/internal/models"
)

// TransactionRepository handles the payment transaction ledger.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create records a newly initiated payment session.
func (r *TransactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

// FindByUUID returns a transaction by its gateway transaction uuid
// (eSewa) or pidx (Khalti).
func (r *TransactionRepository) FindByUUID(uuid string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("transaction_uuid = ? OR pidx = ?", uuid, uuid).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindAll returns transactions for a site with pagination.
func (r *TransactionRepository) FindAll(site string, limit, page int) ([]models.Transaction, int64, error) {
	var txs []models.Transaction
	var total int64

	db := r.db.Model(&models.Transaction{})
	if site != "" {
		db = db.Where("site = ?", site)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	err := db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&txs).Error
	return txs, total, err
}

// UpdateStatus records a reconciliation result against a transaction.
func (r *TransactionRepository) UpdateStatus(uuid, status, refID string) error {
	updates := map[string]interface{}{"status": status}
	if refID != "" {
		updates["ref_id"] = refID
	}
	return r.db.Model(&models.Transaction{}).
		Where("transaction_uuid = ? OR pidx = ?", uuid, uuid).
		Updates(updates).Error
}

// FindPendingOlderThan returns unresolved transactions that have sat in
// INITIATED or PENDING state for at least the given age, oldest first.
func (r *TransactionRepository) FindPendingOlderThan(age time.Duration, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	cutoff := time.Now().Add(-age)
	err := r.db.
		Where("status IN ? AND updated_at < ?", []string{models.TxStatusInitiated, "PENDING"}, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// CountByStatusSince counts transactions per status created after the
// given time, for the daily summary report.
func (r *TransactionRepository) CountByStatusSince(since time.Time) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.Model(&models.Transaction{}).
		Select("status, COUNT(*) AS total").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
