package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/campusbites-backend/pkg/enums"
)

// Account holds a member's prepaid wallet. The balance is mutated only by
// wallet ledger operations and must never commit negative.
type Account struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayName  string          `gorm:"column:display_name;not null"`
	TransferCode string          `gorm:"column:transfer_code;not null;uniqueIndex"`
	BalanceCents int64           `gorm:"column:balance_cents;not null;default:0"`
	Role         enums.ActorRole `gorm:"column:role;type:text;not null;default:'student'"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
