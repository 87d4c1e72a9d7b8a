package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/internal/inventory"
	"github.com/mateovidal/campusbites-backend/internal/wallet"
	"github.com/mateovidal/campusbites-backend/pkg/config"
	"github.com/mateovidal/campusbites-backend/pkg/db"
	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	"github.com/mateovidal/campusbites-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
	"github.com/mateovidal/campusbites-backend/pkg/metrics"
	"github.com/mateovidal/campusbites-backend/pkg/outbox"
)

// placeAttempts bounds retries when a generated order code collides with an
// existing one.
const placeAttempts = 3

const listLimit = 50

// Service owns order placement, the status state machine, and
// cancellation-triggered refunds.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*CancelResult, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]OrderView, error)
	ListOpen(ctx context.Context) ([]OrderView, error)
}

type service struct {
	dbc     *db.Client
	repo    Repository
	stock   inventory.Guard
	ledger  wallet.Ledger
	canteen config.CanteenConfig
	events  *outbox.Service
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the order service with its collaborators.
func NewService(dbc *db.Client, repo Repository, stock inventory.Guard, ledger wallet.Ledger, canteen config.CanteenConfig, events *outbox.Service, engineMetrics *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory guard required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	return &service{
		dbc:     dbc,
		repo:    repo,
		stock:   stock,
		ledger:  ledger,
		canteen: canteen,
		events:  events,
		metrics: engineMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order line is required")
	}
	lines := make([]inventory.Line, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
		}
		lines = append(lines, inventory.Line{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	if err := checkCanteenOpen(s.canteen, s.now()); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < placeAttempts; attempt++ {
		code, err := NewOrderCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order code")
		}
		result, err := s.placeOnce(ctx, input, lines, code)
		if err == nil {
			s.metrics.IncOrderPlaced()
			if s.logg != nil {
				s.logg.Info(s.logg.WithFields(ctx, map[string]any{
					"order_id":    result.OrderID.String(),
					"order_code":  result.OrderCode,
					"total_cents": result.TotalCents,
				}), "order placed")
			}
			return result, nil
		}
		if isCodeCollision(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "order code collision retries exhausted")
}

// isCodeCollision walks the cause chain looking for the unique violation the
// orders.code index raises when a freshly generated code already exists.
func isCodeCollision(err error) bool {
	for cause := err; cause != nil; cause = errors.Unwrap(cause) {
		if db.IsUniqueViolation(cause, "") {
			return true
		}
	}
	return false
}

func (s *service) placeOnce(ctx context.Context, input PlaceOrderInput, lines []inventory.Line, code string) (*PlaceOrderResult, error) {
	var result PlaceOrderResult
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		snapshot, err := s.stock.Apply(ctx, tx, lines)
		if err != nil {
			return err
		}

		items := make([]models.OrderLineItem, 0, len(lines))
		var prepMinutes *int
		var totalCents int64
		for _, line := range lines {
			item := snapshot[line.ItemID]
			lineTotal := item.PriceCents * int64(line.Quantity)
			totalCents += lineTotal
			items = append(items, models.OrderLineItem{
				ID:             uuid.New(),
				MenuItemID:     item.ID,
				Name:           item.Name,
				UnitPriceCents: item.PriceCents,
				Qty:            line.Quantity,
				LineTotalCents: lineTotal,
			})
			// The order inherits the slowest line's prep time.
			if item.PrepMinutes != nil && (prepMinutes == nil || *item.PrepMinutes > *prepMinutes) {
				minutes := *item.PrepMinutes
				prepMinutes = &minutes
			}
		}

		externalRef := code
		if _, err := s.ledger.DebitTx(ctx, tx, input.AccountID, totalCents, wallet.Entry{
			Type:        enums.WalletTransactionTypeDebit,
			Description: fmt.Sprintf("Order %s", code),
			ExternalRef: &externalRef,
		}); err != nil {
			return err
		}

		order := &models.Order{
			ID:          uuid.New(),
			Code:        code,
			AccountID:   input.AccountID,
			TotalCents:  totalCents,
			Status:      enums.OrderStatusPending,
			PrepMinutes: prepMinutes,
			Items:       items,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		if s.events != nil {
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderPlaced,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{AccountID: input.AccountID, Role: string(enums.ActorRoleStudent)},
				Data: map[string]any{
					"order_code":  code,
					"total_cents": totalCents,
				},
			}); err != nil {
				return err
			}
		}

		result = PlaceOrderResult{OrderID: order.ID, OrderCode: code, TotalCents: totalCents}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.Status == nil && input.PrepMinutes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a status or prep time is required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", *input.Status))
	}
	if input.Status != nil && *input.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}
	if input.PrepMinutes != nil && *input.PrepMinutes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prep time must be a positive number of minutes")
	}

	var updated *models.Order
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return err
		}

		from := order.Status
		target := from
		if input.Status != nil {
			target = *input.Status
		} else if from == enums.OrderStatusPending {
			// A prep time alone on a fresh order implies the kitchen took it.
			target = enums.OrderStatusConfirmed
		}

		columns := map[string]any{}
		if target != from {
			if !from.CanTransition(target) {
				s.metrics.IncConflict("invalid_transition")
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cannot move order from %s to %s", from, target)).
					WithDetails(map[string]any{
						"current": from,
						"target":  target,
					})
			}
			columns["status"] = target
		}

		now := s.now()
		if input.PrepMinutes != nil {
			estimated := now.Add(time.Duration(*input.PrepMinutes) * time.Minute)
			columns["prep_minutes"] = *input.PrepMinutes
			columns["estimated_ready_at"] = estimated
			columns["ready_at"] = estimated
		}
		if target == enums.OrderStatusReady {
			// The countdown is over once the order is ready for pickup.
			columns["estimated_ready_at"] = nil
			columns["ready_at"] = nil
			columns["prep_minutes"] = nil
		}
		if len(columns) == 0 {
			updated = order
			return nil
		}

		// Guard on the status we read so a racing cancel (or another staff
		// update) cannot be overwritten after the fact.
		changed, err := repo.UpdateIfStatus(ctx, order.ID, []enums.OrderStatus{from}, columns)
		if err != nil {
			return err
		}
		if !changed {
			s.metrics.IncConflict("concurrent_update")
			return pkgerrors.New(pkgerrors.CodeConflict, "order was updated concurrently, retry").
				WithDetails(map[string]any{"order_id": order.ID})
		}
		if s.events != nil && target != from {
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{AccountID: input.ActorID, Role: string(enums.ActorRoleStaff)},
				Data: map[string]any{
					"order_code": order.Code,
					"from":       from,
					"to":         target,
				},
			}); err != nil {
				return err
			}
		}

		updated, err = repo.FindByID(ctx, input.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	view := toOrderView(updated)
	return &view, nil
}

func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*CancelResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	refunded := false
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			// Double cancellation is a safe no-op; the first call already
			// refunded.
			s.metrics.IncConflict("already_cancelled")
			return nil
		}
		if !order.Status.CanTransition(enums.OrderStatusCancelled) {
			s.metrics.IncConflict("invalid_transition")
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot cancel a %s order", order.Status)).
				WithDetails(map[string]any{"current": order.Status})
		}

		// Condition the write on a still-cancellable status. A concurrent
		// cancel that committed after our read leaves zero rows changed, so
		// only one caller ever reaches the refund.
		now := s.now()
		changed, err := repo.UpdateIfStatus(ctx, order.ID,
			enums.OrderStatusesAllowing(enums.OrderStatusCancelled),
			map[string]any{
				"status":      enums.OrderStatusCancelled,
				"canceled_at": now,
			})
		if err != nil {
			return err
		}
		if !changed {
			fresh, err := repo.FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			if fresh.Status == enums.OrderStatusCancelled {
				s.metrics.IncConflict("already_cancelled")
				return nil
			}
			s.metrics.IncConflict("invalid_transition")
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot cancel a %s order", fresh.Status)).
				WithDetails(map[string]any{"current": fresh.Status})
		}

		externalRef := order.Code
		if _, err := s.ledger.CreditTx(ctx, tx, order.AccountID, order.TotalCents, wallet.Entry{
			Type:        enums.WalletTransactionTypeRefund,
			Description: fmt.Sprintf("Refund for order %s", order.Code),
			ExternalRef: &externalRef,
		}); err != nil {
			return err
		}

		if s.events != nil {
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCancelled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{AccountID: actorID, Role: string(enums.ActorRoleStaff)},
				Data: map[string]any{
					"order_code":    order.Code,
					"refund_cents":  order.TotalCents,
					"refund_target": order.AccountID,
				},
			}); err != nil {
				return err
			}
		}

		refunded = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refunded {
		s.metrics.IncOrderCancelled()
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"order_id": orderID.String(),
			}), "order cancelled and refunded")
		}
	}
	return &CancelResult{Refunded: refunded}, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view := toOrderView(order)
	return &view, nil
}

func (s *service) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]OrderView, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	rows, err := s.repo.ListByAccountID(ctx, accountID, listLimit)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, toOrderView(&rows[i]))
	}
	return views, nil
}

func (s *service) ListOpen(ctx context.Context) ([]OrderView, error) {
	rows, err := s.repo.ListByStatuses(ctx, []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
	})
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, toOrderView(&rows[i]))
	}
	return views, nil
}
