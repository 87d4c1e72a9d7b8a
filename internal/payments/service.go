package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/internal/wallet"
	"github.com/mateovidal/campusbites-backend/pkg/db"
	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	"github.com/mateovidal/campusbites-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
	"github.com/mateovidal/campusbites-backend/pkg/metrics"
	"github.com/mateovidal/campusbites-backend/pkg/outbox"
)

// CreditInput is a verified gateway payment to apply to a wallet.
type CreditInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	AccountID        uuid.UUID
	AmountCents      int64
}

// CreditResult reports the applied top-up.
type CreditResult struct {
	GatewayPaymentID string `json:"gateway_payment_id"`
	AmountCents      int64  `json:"amount_cents"`
}

// Service applies gateway top-ups exactly once per payment id.
type Service interface {
	CreditFromPayment(ctx context.Context, input CreditInput) (*CreditResult, error)
}

type service struct {
	dbc      *db.Client
	receipts Repository
	ledger   wallet.Ledger
	events   *outbox.Service
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
}

// NewService wires the payment service with its collaborators.
func NewService(dbc *db.Client, receipts Repository, ledger wallet.Ledger, events *outbox.Service, engineMetrics *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	if receipts == nil {
		return nil, fmt.Errorf("receipt repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	return &service{
		dbc:      dbc,
		receipts: receipts,
		ledger:   ledger,
		events:   events,
		metrics:  engineMetrics,
		logg:     logg,
	}, nil
}

func (s *service) CreditFromPayment(ctx context.Context, input CreditInput) (*CreditResult, error) {
	paymentID := strings.TrimSpace(input.GatewayPaymentID)
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway payment id is required")
	}
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive number of cents")
	}

	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		receipts := s.receipts.WithTx(tx)

		// The existence check and the insert share the transaction with the
		// credit, so a replayed webhook can never credit twice.
		existing, err := receipts.Find(ctx, paymentID)
		if err != nil {
			return err
		}
		if existing != nil {
			s.metrics.IncConflict("payment_replayed")
			return pkgerrors.New(pkgerrors.CodeIdempotency, "payment already processed").
				WithDetails(map[string]any{"gateway_payment_id": paymentID})
		}

		if err := receipts.Create(ctx, &models.PaymentReceipt{
			GatewayPaymentID: paymentID,
			GatewayOrderID:   input.GatewayOrderID,
			AccountID:        input.AccountID,
			AmountCents:      input.AmountCents,
		}); err != nil {
			if isDuplicateReceipt(err) {
				s.metrics.IncConflict("payment_replayed")
				return pkgerrors.New(pkgerrors.CodeIdempotency, "payment already processed").
					WithDetails(map[string]any{"gateway_payment_id": paymentID})
			}
			return err
		}

		externalRef := paymentID
		if _, err := s.ledger.CreditTx(ctx, tx, input.AccountID, input.AmountCents, wallet.Entry{
			Type:        enums.WalletTransactionTypeTopup,
			Description: "Wallet top-up",
			ExternalRef: &externalRef,
		}); err != nil {
			return err
		}

		if s.events != nil {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventWalletTopup,
				AggregateType: enums.AggregateAccount,
				AggregateID:   input.AccountID,
				Data: map[string]any{
					"gateway_payment_id": paymentID,
					"amount_cents":       input.AmountCents,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPaymentCredited()
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"gateway_payment_id": paymentID,
			"account_id":         input.AccountID.String(),
			"amount_cents":       input.AmountCents,
		}), "gateway payment credited")
	}
	return &CreditResult{GatewayPaymentID: paymentID, AmountCents: input.AmountCents}, nil
}

// isDuplicateReceipt recognizes a concurrent webhook replay losing the
// insert race on the receipt primary key.
func isDuplicateReceipt(err error) bool {
	for cause := err; cause != nil; cause = errors.Unwrap(cause) {
		if db.IsUniqueViolation(cause, "") {
			return true
		}
	}
	return false
}
