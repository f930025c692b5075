package models

import "time"

// Gateway maps to the `payment_gateways` table: per-site gateway
// credentials managed from the site admin. SecretKey never leaves the
// server; API payloads must use a model without it.
type Gateway struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Site         string    `gorm:"column:site;size:100;index:idx_site_type,unique" json:"site"`
	PaymentType  string    `gorm:"column:payment_type;size:20;index:idx_site_type,unique" json:"payment_type"`
	MerchantCode string    `gorm:"column:merchant_code;size:100" json:"merchant_code"`
	SecretKey    string    `gorm:"column:secret_key;size:200" json:"-"`
	IsEnabled    bool      `gorm:"column:is_enabled" json:"is_enabled"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Gateway) TableName() string {
	return "payment_gateways"
}
