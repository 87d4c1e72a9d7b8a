package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
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
	require.NoError(t, db.Exec(menuItems).Error)
	return db
}

func seedItem(t *testing.T, db *gorm.DB, name string, stock int, available bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	item := models.MenuItem{
		ID:         id,
		Name:       name,
		PriceCents: 850,
		StockQty:   stock,
		Available:  available,
	}
	require.NoError(t, db.Create(&item).Error)
	return id
}

func TestGuard_ApplyDecrementsStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	guard := NewGuard()
	ctx := context.Background()

	burritoID := seedItem(t, db, "Burrito", 5, true)
	tacoID := seedItem(t, db, "Taco", 10, true)

	snapshot, err := guard.Apply(ctx, db, []Line{
		{ItemID: burritoID, Quantity: 2},
		{ItemID: tacoID, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Burrito", snapshot[burritoID].Name)
	assert.Equal(t, int64(850), snapshot[burritoID].PriceCents)

	var burrito models.MenuItem
	require.NoError(t, db.First(&burrito, "id = ?", burritoID).Error)
	assert.Equal(t, 3, burrito.StockQty)
	assert.True(t, burrito.Available)
}

func TestGuard_ApplyDrainsToUnavailable(t *testing.T) {
	db := setupInventoryTestDB(t)
	guard := NewGuard()

	itemID := seedItem(t, db, "Last Slice", 2, true)

	_, err := guard.Apply(context.Background(), db, []Line{{ItemID: itemID, Quantity: 2}})
	require.NoError(t, err)

	var item models.MenuItem
	require.NoError(t, db.First(&item, "id = ?", itemID).Error)
	assert.Equal(t, 0, item.StockQty)
	assert.False(t, item.Available)
}

func TestGuard_ApplyInsufficientStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	guard := NewGuard()

	itemID := seedItem(t, db, "Empanada", 1, true)

	_, err := guard.Apply(context.Background(), db, []Line{{ItemID: itemID, Quantity: 3}})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, details["available"])
	assert.Equal(t, 3, details["requested"])

	// Nothing was decremented.
	var item models.MenuItem
	require.NoError(t, db.First(&item, "id = ?", itemID).Error)
	assert.Equal(t, 1, item.StockQty)
}

func TestGuard_ApplyUnavailableItem(t *testing.T) {
	db := setupInventoryTestDB(t)
	guard := NewGuard()

	itemID := seedItem(t, db, "Seasonal Soup", 4, false)

	_, err := guard.Apply(context.Background(), db, []Line{{ItemID: itemID, Quantity: 1}})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestGuard_ApplyUnknownItem(t *testing.T) {
	db := setupInventoryTestDB(t)
	guard := NewGuard()

	_, err := guard.Apply(context.Background(), db, []Line{{ItemID: uuid.New(), Quantity: 1}})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestGuard_ApplyValidation(t *testing.T) {
	db := setupInventoryTestDB(t)
	guard := NewGuard()
	ctx := context.Background()

	_, err := guard.Apply(ctx, db, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = guard.Apply(ctx, db, []Line{{ItemID: uuid.New(), Quantity: 0}})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = guard.Apply(ctx, nil, []Line{{ItemID: uuid.New(), Quantity: 1}})
	require.Error(t, err)
}

func TestGuard_RestockRestoresAvailability(t *testing.T) {
	db := setupInventoryTestDB(t)
	guard := NewGuard()
	ctx := context.Background()

	itemID := seedItem(t, db, "Burrito", 0, false)

	require.NoError(t, guard.Restock(ctx, db, []Line{{ItemID: itemID, Quantity: 4}}))

	var item models.MenuItem
	require.NoError(t, db.First(&item, "id = ?", itemID).Error)
	assert.Equal(t, 4, item.StockQty)
	assert.True(t, item.Available)
}
