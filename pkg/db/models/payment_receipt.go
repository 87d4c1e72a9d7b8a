package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentReceipt marks an external gateway payment as consumed. Its presence
// is the sole dedup signal: the existence check and the insert happen inside
// the same transaction as the wallet credit, so a replayed webhook can never
// credit twice.
type PaymentReceipt struct {
	GatewayPaymentID string    `gorm:"column:gateway_payment_id;primaryKey"`
	GatewayOrderID   string    `gorm:"column:gateway_order_id;not null"`
	AccountID        uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	AmountCents      int64     `gorm:"column:amount_cents;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
