package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"paygate/internal/config"
	"paygate/internal/models"
)

// DefaultSite is the tenant used when a request names no site, and the
// one seeded from environment credentials.
const DefaultSite = "default"

// MigrateAndSeed ensures required tables exist and seeds the default
// site's gateway rows from environment credentials when the table is
// empty.
func MigrateAndSeed(db *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(&models.Gateway{}, &models.Transaction{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db, cfg); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func seedDefaults(db *gorm.DB, cfg *config.Config) error {
	var total int64
	if err := db.Model(&models.Gateway{}).Count(&total).Error; err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	if cfg.Esewa.MerchantCode != "" && cfg.Esewa.SecretKey != "" {
		gw := models.Gateway{
			Site:         DefaultSite,
			PaymentType:  "esewa",
			MerchantCode: cfg.Esewa.MerchantCode,
			SecretKey:    cfg.Esewa.SecretKey,
			IsEnabled:    true,
		}
		if err := db.Create(&gw).Error; err != nil {
			return err
		}
	}

	if cfg.Khalti.SecretKey != "" {
		gw := models.Gateway{
			Site:        DefaultSite,
			PaymentType: "khalti",
			SecretKey:   cfg.Khalti.SecretKey,
			IsEnabled:   true,
		}
		if err := db.Create(&gw).Error; err != nil {
			return err
		}
	}

	return nil
}
