package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
)

// Line is one requested item decrement.
type Line struct {
	ItemID   uuid.UUID
	Quantity int
}

// Guard validates and applies stock decrements inside the caller's
// transaction. Snapshot returns the item rows it read so callers can price
// order lines from the same in-transaction view of the catalog.
type Guard interface {
	Apply(ctx context.Context, tx *gorm.DB, lines []Line) (map[uuid.UUID]*models.MenuItem, error)
	Restock(ctx context.Context, tx *gorm.DB, lines []Line) error
}

type guard struct{}

// NewGuard returns the stock decrement guard.
func NewGuard() Guard {
	return &guard{}
}

func (g *guard) Apply(ctx context.Context, tx *gorm.DB, lines []Line) (map[uuid.UUID]*models.MenuItem, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock decrement requires a transaction")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order line is required")
	}
	for _, line := range lines {
		if line.ItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
		}
	}

	snapshot := make(map[uuid.UUID]*models.MenuItem, len(lines))
	for _, line := range lines {
		item, err := loadItem(ctx, tx, line.ItemID)
		if err != nil {
			return nil, err
		}
		if !item.Available {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is not available", item.Name)).
				WithDetails(map[string]any{"item_id": item.ID, "item_name": item.Name})
		}
		if item.StockQty < line.Quantity {
			return nil, insufficientStock(item, line.Quantity)
		}
		snapshot[line.ItemID] = item
	}

	// The guarded update re-checks stock so a concurrent decrement between
	// the read above and this write surfaces as zero rows affected.
	for _, line := range lines {
		result := tx.WithContext(ctx).
			Model(&models.MenuItem{}).
			Where("id = ? AND stock_qty >= ?", line.ItemID, line.Quantity).
			UpdateColumns(map[string]any{
				"stock_qty": gorm.Expr("stock_qty - ?", line.Quantity),
				"available": gorm.Expr("stock_qty - ? > 0", line.Quantity),
			})
		if result.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "decrement stock")
		}
		if result.RowsAffected == 0 {
			item, err := loadItem(ctx, tx, line.ItemID)
			if err != nil {
				return nil, err
			}
			return nil, insufficientStock(item, line.Quantity)
		}
	}
	return snapshot, nil
}

func (g *guard) Restock(ctx context.Context, tx *gorm.DB, lines []Line) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "restock requires a transaction")
	}
	for _, line := range lines {
		if line.ItemID == uuid.Nil || line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "restock lines need an item id and positive quantity")
		}
		result := tx.WithContext(ctx).
			Model(&models.MenuItem{}).
			Where("id = ?", line.ItemID).
			UpdateColumns(map[string]any{
				"stock_qty": gorm.Expr("stock_qty + ?", line.Quantity),
				"available": gorm.Expr("stock_qty + ? > 0", line.Quantity),
			})
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "restock item")
		}
	}
	return nil
}

func loadItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := tx.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found").
				WithDetails(map[string]any{"item_id": itemID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu item")
	}
	return &item, nil
}

func insufficientStock(item *models.MenuItem, requested int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", item.Name)).
		WithDetails(map[string]any{
			"item_id":   item.ID,
			"item_name": item.Name,
			"available": item.StockQty,
			"requested": requested,
		})
}
