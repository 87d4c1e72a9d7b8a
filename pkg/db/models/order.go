package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/campusbites-backend/pkg/enums"
)

// Order is a placed purchase. Orders are never physically deleted; a
// cancellation is a status change plus a financial reversal.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string            `gorm:"column:code;not null;uniqueIndex"`
	AccountID        uuid.UUID         `gorm:"column:account_id;type:uuid;not null;index"`
	TotalCents       int64             `gorm:"column:total_cents;not null"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PrepMinutes      *int              `gorm:"column:prep_minutes"`
	EstimatedReadyAt *time.Time        `gorm:"column:estimated_ready_at"`
	ReadyAt          *time.Time        `gorm:"column:ready_at"`
	CanceledAt       *time.Time        `gorm:"column:canceled_at"`
	Items            []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
