package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is a sellable product. The engine keeps Available equal to
// StockQty > 0 on every stock mutation it performs; catalog surfaces may
// toggle the flag independently.
type MenuItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Category    string    `gorm:"column:category;not null;default:''"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	StockQty    int       `gorm:"column:stock_qty;not null;default:0"`
	Available   bool      `gorm:"column:available;not null;default:false"`
	PrepMinutes *int      `gorm:"column:prep_minutes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
