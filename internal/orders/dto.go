package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	"github.com/mateovidal/campusbites-backend/pkg/enums"
)

// LineInput is one requested item within a placement.
type LineInput struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// PlaceOrderInput is a placement request from an authenticated account.
type PlaceOrderInput struct {
	AccountID uuid.UUID
	Lines     []LineInput
}

// PlaceOrderResult identifies the created order.
type PlaceOrderResult struct {
	OrderID    uuid.UUID `json:"order_id"`
	OrderCode  string    `json:"order_code"`
	TotalCents int64     `json:"total_cents"`
}

// UpdateStatusInput mutates an order through the state machine. Status and
// PrepMinutes are each optional but at least one must be present.
type UpdateStatusInput struct {
	OrderID     uuid.UUID
	ActorID     uuid.UUID
	Status      *enums.OrderStatus
	PrepMinutes *int
}

// CancelResult reports whether this call performed the refund.
type CancelResult struct {
	Refunded bool `json:"refunded"`
}

// LineView is the API shape of an order line item.
type LineView struct {
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Qty            int       `json:"qty"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// OrderView is the API shape of an order.
type OrderView struct {
	ID               uuid.UUID         `json:"id"`
	Code             string            `json:"code"`
	AccountID        uuid.UUID         `json:"account_id"`
	Status           enums.OrderStatus `json:"status"`
	TotalCents       int64             `json:"total_cents"`
	PrepMinutes      *int              `json:"prep_minutes,omitempty"`
	EstimatedReadyAt *time.Time        `json:"estimated_ready_at,omitempty"`
	ReadyAt          *time.Time        `json:"ready_at,omitempty"`
	CanceledAt       *time.Time        `json:"canceled_at,omitempty"`
	Items            []LineView        `json:"items"`
	CreatedAt        time.Time         `json:"created_at"`
}

func toOrderView(order *models.Order) OrderView {
	items := make([]LineView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineView{
			MenuItemID:     item.MenuItemID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return OrderView{
		ID:               order.ID,
		Code:             order.Code,
		AccountID:        order.AccountID,
		Status:           order.Status,
		TotalCents:       order.TotalCents,
		PrepMinutes:      order.PrepMinutes,
		EstimatedReadyAt: order.EstimatedReadyAt,
		ReadyAt:          order.ReadyAt,
		CanceledAt:       order.CanceledAt,
		Items:            items,
		CreatedAt:        order.CreatedAt,
	}
}
