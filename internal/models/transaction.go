package models

import "time"

// Transaction maps to the `transactions` table: one row per initiated
// payment session, updated as verifications and status checks resolve.
// Amounts stay strings end to end; the gateway signed the literal text
// and reformatting would break reconciliation against it.
type Transaction struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID         string    `gorm:"column:order_id;size:100;index" json:"order_id"`
	Site            string    `gorm:"column:site;size:100;index" json:"site"`
	Method          string    `gorm:"column:method;size:20" json:"method"`
	Amount          string    `gorm:"column:amount;size:50" json:"amount"`
	TotalAmount     string    `gorm:"column:total_amount;size:50" json:"total_amount"`
	TransactionUUID string    `gorm:"column:transaction_uuid;size:100;uniqueIndex" json:"transaction_uuid"`
	Pidx            string    `gorm:"column:pidx;size:100;index" json:"pidx,omitempty"`
	Status          string    `gorm:"column:status;size:30;index" json:"status"`
	RefID           string    `gorm:"column:ref_id;size:100" json:"ref_id,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Transaction statuses before the gateway has answered.
const (
	TxStatusInitiated = "INITIATED"
)
