package forecast

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
)

func setupForecastTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	menuItems := `
CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL,
  stock_qty INTEGER NOT NULL DEFAULT 0,
  available INTEGER NOT NULL DEFAULT 0,
  prep_minutes INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	demandRecords := `
CREATE TABLE IF NOT EXISTS demand_records (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  weekday INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(menuItems).Error)
	require.NoError(t, db.Exec(demandRecords).Error)
	return db
}

func seedForecastItem(t *testing.T, db *gorm.DB, name string, stock int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&models.MenuItem{
		ID:         id,
		Name:       name,
		PriceCents: 500,
		StockQty:   stock,
		Available:  stock > 0,
	}).Error)
	return id
}

func seedDemand(t *testing.T, db *gorm.DB, itemID uuid.UUID, weekday, qty int, active bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.DemandRecord{
		ID:         uuid.New(),
		AccountID:  uuid.New(),
		MenuItemID: itemID,
		Weekday:    weekday,
		Qty:        qty,
		Active:     active,
	}).Error)
}

func TestService_Report(t *testing.T) {
	db := setupForecastTestDB(t)
	svc, err := NewService(db, nil)
	require.NoError(t, err)

	burrito := seedForecastItem(t, db, "Burrito", 10)
	taco := seedForecastItem(t, db, "Taco", 2)

	// Burrito: Mon 4+3, Wed 5. Busiest day Mon = 7.
	seedDemand(t, db, burrito, 1, 4, true)
	seedDemand(t, db, burrito, 1, 3, true)
	seedDemand(t, db, burrito, 3, 5, true)
	// Inactive rows don't count.
	seedDemand(t, db, burrito, 5, 100, false)

	// Taco: Fri 6 against stock 2 -> shortage.
	seedDemand(t, db, taco, 5, 6, true)

	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 2)
	assert.Empty(t, report.Skipped)

	var burritoRow, tacoRow ItemForecast
	for _, row := range report.Items {
		switch row.MenuItemID {
		case burrito:
			burritoRow = row
		case taco:
			tacoRow = row
		}
	}

	assert.Equal(t, 12, burritoRow.WeeklyDemand)
	assert.Equal(t, 1, burritoRow.BusiestWeekday)
	assert.Equal(t, 7, burritoRow.BusiestDayDemand)
	assert.False(t, burritoRow.ShortageRisk)
	// ceil(1.2 * 7) = 9
	assert.Equal(t, 9, burritoRow.SuggestedMinStock)

	assert.Equal(t, 6, tacoRow.BusiestDayDemand)
	assert.True(t, tacoRow.ShortageRisk)
	// ceil(1.2 * 6) = 8
	assert.Equal(t, 8, tacoRow.SuggestedMinStock)
}

func TestService_ReportSkipsUnresolvableItems(t *testing.T) {
	db := setupForecastTestDB(t)
	svc, err := NewService(db, nil)
	require.NoError(t, err)

	known := seedForecastItem(t, db, "Burrito", 5)
	seedDemand(t, db, known, 2, 3, true)
	seedDemand(t, db, uuid.New(), 2, 9, true)

	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, known, report.Items[0].MenuItemID)
	assert.Len(t, report.Skipped, 1)
}

func TestService_ReportEmpty(t *testing.T) {
	db := setupForecastTestDB(t)
	svc, err := NewService(db, nil)
	require.NoError(t, err)

	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Items)
	assert.Empty(t, report.Skipped)
}
