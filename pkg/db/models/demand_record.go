package models

import (
	"time"

	"github.com/google/uuid"
)

// DemandRecord is a member's declared recurring need for an item on a given
// weekday. Input to the forecast aggregator; never mutated by the engine.
type DemandRecord struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID  uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	MenuItemID uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null;index"`
	Weekday    int       `gorm:"column:weekday;not null"` // 0 = Sunday .. 6 = Saturday
	Qty        int       `gorm:"column:qty;not null"`
	Active     bool      `gorm:"column:active;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
