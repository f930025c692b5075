package repository

import (
	"gorm.io/gorm"

	"paygate/internal/models"
)

// GatewayRepository handles payment gateway credential storage.
type GatewayRepository struct {
	db *gorm.DB
}

func NewGatewayRepository(db *gorm.DB) *GatewayRepository {
	return &GatewayRepository{db: db}
}

// FindEnabled returns the enabled gateway of the given type for a site.
func (r *GatewayRepository) FindEnabled(site, paymentType string) (*models.Gateway, error) {
	var gw models.Gateway
	err := r.db.
		Where("site = ? AND payment_type = ? AND is_enabled = ?", site, paymentType, true).
		First(&gw).Error
	if err != nil {
		return nil, err
	}
	return &gw, nil
}

// FindBySite returns all gateways configured for a site.
func (r *GatewayRepository) FindBySite(site string) ([]models.Gateway, error) {
	var gateways []models.Gateway
	err := r.db.Where("site = ?", site).Order("payment_type").Find(&gateways).Error
	return gateways, err
}

// Upsert creates or updates a site's gateway credentials.
func (r *GatewayRepository) Upsert(gw *models.Gateway) error {
	var existing models.Gateway
	err := r.db.
		Where("site = ? AND payment_type = ?", gw.Site, gw.PaymentType).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(gw).Error
	}
	if err != nil {
		return err
	}
	gw.ID = existing.ID
	return r.db.Save(gw).Error
}

// Count returns the number of configured gateways.
func (r *GatewayRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&models.Gateway{}).Count(&total).Error
	return total, err
}
