package payments

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
)

// Repository manages the payment receipts that dedup gateway webhooks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, gatewayPaymentID string) (*models.PaymentReceipt, error)
	Create(ctx context.Context, receipt *models.PaymentReceipt) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment receipt repository bound to the provided
// database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, gatewayPaymentID string) (*models.PaymentReceipt, error) {
	var receipt models.PaymentReceipt
	err := r.db.WithContext(ctx).
		First(&receipt, "gateway_payment_id = ?", gatewayPaymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment receipt")
	}
	return &receipt, nil
}

func (r *repository) Create(ctx context.Context, receipt *models.PaymentReceipt) error {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment receipt")
	}
	return nil
}
