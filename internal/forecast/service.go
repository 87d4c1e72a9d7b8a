package forecast

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
)

// suggestedStockFactor pads the busiest day's demand when suggesting a
// minimum stock level.
var suggestedStockFactor = decimal.RequireFromString("1.2")

// ItemForecast is one menu item's aggregated weekly demand joined against
// its current stock.
type ItemForecast struct {
	MenuItemID        uuid.UUID   `json:"menu_item_id"`
	Name              string      `json:"name"`
	StockQty          int         `json:"stock_qty"`
	WeeklyDemand      int         `json:"weekly_demand"`
	DemandByWeekday   map[int]int `json:"demand_by_weekday"`
	BusiestWeekday    int         `json:"busiest_weekday"`
	BusiestDayDemand  int         `json:"busiest_day_demand"`
	ShortageRisk      bool        `json:"shortage_risk"`
	SuggestedMinStock int         `json:"suggested_min_stock"`
}

// Report is the full weekly demand picture.
type Report struct {
	Items []ItemForecast `json:"items"`
	// Skipped lists demand rows referencing items that could not be
	// resolved; they are diagnostic, never fatal.
	Skipped []string `json:"skipped,omitempty"`
}

// Service aggregates demand declarations into a stock forecast. Read-only:
// it never touches orders, balances, or stock.
type Service interface {
	Report(ctx context.Context) (*Report, error)
}

type service struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewService wires the forecast aggregator.
func NewService(db *gorm.DB, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &service{db: db, logg: logg}, nil
}

func (s *service) Report(ctx context.Context) (*Report, error) {
	var records []models.DemandRecord
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&records).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load demand records")
	}

	byItem := map[uuid.UUID]map[int]int{}
	for _, record := range records {
		if record.Weekday < 0 || record.Weekday > 6 || record.Qty <= 0 {
			continue
		}
		if byItem[record.MenuItemID] == nil {
			byItem[record.MenuItemID] = map[int]int{}
		}
		byItem[record.MenuItemID][record.Weekday] += record.Qty
	}

	report := &Report{Items: make([]ItemForecast, 0, len(byItem))}
	var skipped error
	for itemID, byWeekday := range byItem {
		var item models.MenuItem
		if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
			// A stale demand row must not sink the whole report.
			skipped = multierr.Append(skipped, fmt.Errorf("item %s: %w", itemID, err))
			if s.logg != nil {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"menu_item_id": itemID.String(),
				}), "skipping demand rows for unresolvable item")
			}
			continue
		}

		weekly := 0
		busiestDay, busiestQty := 0, 0
		for weekday, qty := range byWeekday {
			weekly += qty
			if qty > busiestQty || (qty == busiestQty && weekday < busiestDay) {
				busiestDay, busiestQty = weekday, qty
			}
		}

		suggested := decimal.NewFromInt(int64(busiestQty)).
			Mul(suggestedStockFactor).
			Ceil().
			IntPart()

		report.Items = append(report.Items, ItemForecast{
			MenuItemID:        item.ID,
			Name:              item.Name,
			StockQty:          item.StockQty,
			WeeklyDemand:      weekly,
			DemandByWeekday:   byWeekday,
			BusiestWeekday:    busiestDay,
			BusiestDayDemand:  busiestQty,
			ShortageRisk:      busiestQty > item.StockQty,
			SuggestedMinStock: int(suggested),
		})
	}

	sort.Slice(report.Items, func(i, j int) bool {
		return report.Items[i].Name < report.Items[j].Name
	})
	for _, err := range multierr.Errors(skipped) {
		report.Skipped = append(report.Skipped, err.Error())
	}
	return report, nil
}
