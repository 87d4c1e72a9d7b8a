package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/campusbites-backend/pkg/enums"
)

// WalletTransaction is one immutable ledger entry. Exactly one record is
// created per economic event, inside the same transaction that moves the
// balance; a transfer creates two, one per side, cross-referencing the
// counterpart account.
type WalletTransaction struct {
	ID                   uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID            uuid.UUID                   `gorm:"column:account_id;type:uuid;not null;index"`
	Type                 enums.WalletTransactionType `gorm:"column:type;type:text;not null"`
	AmountCents          int64                       `gorm:"column:amount_cents;not null"`
	Description          string                      `gorm:"column:description;not null;default:''"`
	CounterpartAccountID *uuid.UUID                  `gorm:"column:counterpart_account_id;type:uuid"`
	ExternalRef          *string                     `gorm:"column:external_ref"`
	CreatedAt            time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
