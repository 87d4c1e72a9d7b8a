package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
)

// Repository manages persistence for wallet ledger entries and the balance
// column they move.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.WalletTransaction) error
	ListByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]models.WalletTransaction, error)
	// AdjustBalance applies a signed delta to the account balance. When
	// requireFunds is set the update only lands if the balance covers the
	// debit; the bool reports whether a row changed.
	AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64, requireFunds bool) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletTransaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create wallet transaction")
	}
	return nil
}

func (r *repository) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []models.WalletTransaction
	if err := query.Find(&entries).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wallet transactions")
	}
	return entries, nil
}

func (r *repository) AdjustBalance(ctx context.Context, accountID uuid.UUID, deltaCents int64, requireFunds bool) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID)
	if requireFunds {
		query = query.Where("balance_cents >= ?", -deltaCents)
	}
	result := query.UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if result.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "adjust wallet balance")
	}
	return result.RowsAffected > 0, nil
}
