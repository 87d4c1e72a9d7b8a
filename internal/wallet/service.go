package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/campusbites-backend/internal/accounts"
	"github.com/mateovidal/campusbites-backend/pkg/db"
	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	"github.com/mateovidal/campusbites-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
	"github.com/mateovidal/campusbites-backend/pkg/metrics"
	"github.com/mateovidal/campusbites-backend/pkg/outbox"
)

const statementLimit = 50

// Ledger exposes the transaction-composable balance mutations. Callers own
// the surrounding transaction; the ledger guarantees the balance change and
// its WalletTransaction record land together or not at all.
type Ledger interface {
	DebitTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amountCents int64, entry Entry) (*models.WalletTransaction, error)
	CreditTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amountCents int64, entry Entry) (*models.WalletTransaction, error)
}

// Service is the wallet surface: the composable ledger plus the standalone
// transfer and statement operations.
type Service interface {
	Ledger
	Transfer(ctx context.Context, input TransferInput) (*TransferResult, error)
	Statement(ctx context.Context, accountID uuid.UUID) (*StatementView, error)
}

type service struct {
	dbc      *db.Client
	repo     Repository
	accounts accounts.Repository
	events   *outbox.Service
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
}

// NewService wires the wallet service with its persistence dependencies.
func NewService(dbc *db.Client, repo Repository, accountRepo accounts.Repository, events *outbox.Service, engineMetrics *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	return &service{
		dbc:      dbc,
		repo:     repo,
		accounts: accountRepo,
		events:   events,
		metrics:  engineMetrics,
		logg:     logg,
	}, nil
}

func (s *service) DebitTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amountCents int64, entry Entry) (*models.WalletTransaction, error) {
	if err := validateMutation(tx, accountID, amountCents, entry.Type); err != nil {
		return nil, err
	}
	if entry.Type.IsCreditSide() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("transaction type %q cannot debit", entry.Type))
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.AdjustBalance(ctx, accountID, -amountCents, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Either the account is missing or the guarded update found too
		// little balance; a fresh read inside the tx tells them apart.
		account, err := s.accounts.WithTx(tx).FindByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		s.metrics.IncConflict("insufficient_funds")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient funds").
			WithDetails(map[string]any{
				"balance_cents":  account.BalanceCents,
				"required_cents": amountCents,
			})
	}

	record := &models.WalletTransaction{
		AccountID:            accountID,
		Type:                 entry.Type,
		AmountCents:          amountCents,
		Description:          entry.Description,
		CounterpartAccountID: entry.CounterpartAccountID,
		ExternalRef:          entry.ExternalRef,
	}
	if err := repo.CreateEntry(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amountCents int64, entry Entry) (*models.WalletTransaction, error) {
	if err := validateMutation(tx, accountID, amountCents, entry.Type); err != nil {
		return nil, err
	}
	if !entry.Type.IsCreditSide() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("transaction type %q cannot credit", entry.Type))
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.AdjustBalance(ctx, accountID, amountCents, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}

	record := &models.WalletTransaction{
		AccountID:            accountID,
		Type:                 entry.Type,
		AmountCents:          amountCents,
		Description:          entry.Description,
		CounterpartAccountID: entry.CounterpartAccountID,
		ExternalRef:          entry.ExternalRef,
	}
	if err := repo.CreateEntry(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.SenderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender id is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive number of cents")
	}
	tag := strings.TrimSpace(input.RecipientTag)
	if tag == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient transfer code is required")
	}

	// Resolve the recipient before opening the tx so unknown codes fail
	// without holding row locks.
	recipient, err := s.accounts.FindByTransferCode(ctx, tag)
	if err != nil {
		return nil, err
	}
	if recipient.ID == input.SenderID {
		s.metrics.IncConflict("self_transfer")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cannot transfer to your own wallet")
	}
	sender, err := s.accounts.FindByID(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}

	debitDesc := fmt.Sprintf("Transfer to %s", recipient.DisplayName)
	creditDesc := fmt.Sprintf("Transfer from %s", sender.DisplayName)
	if note := strings.TrimSpace(input.Note); note != "" {
		debitDesc = fmt.Sprintf("%s: %s", debitDesc, note)
		creditDesc = fmt.Sprintf("%s: %s", creditDesc, note)
	}

	var debitRecord, creditRecord *models.WalletTransaction
	var senderBalance int64
	err = s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		recipientID := recipient.ID
		senderID := sender.ID

		debitRecord, err = s.DebitTx(ctx, tx, senderID, input.AmountCents, Entry{
			Type:                 enums.WalletTransactionTypeTransfer,
			Description:          debitDesc,
			CounterpartAccountID: &recipientID,
		})
		if err != nil {
			return err
		}
		// Re-read inside the tx so the reported balance reflects the
		// guarded debit, not the snapshot taken before it.
		debited, err := s.accounts.WithTx(tx).FindByID(ctx, senderID)
		if err != nil {
			return err
		}
		senderBalance = debited.BalanceCents
		creditRecord, err = s.CreditTx(ctx, tx, recipientID, input.AmountCents, Entry{
			Type:                 enums.WalletTransactionTypeCredit,
			Description:          creditDesc,
			CounterpartAccountID: &senderID,
		})
		if err != nil {
			return err
		}
		if s.events != nil {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventWalletTransfer,
				AggregateType: enums.AggregateAccount,
				AggregateID:   senderID,
				Actor:         &outbox.ActorRef{AccountID: senderID, Role: string(sender.Role)},
				Data: map[string]any{
					"sender_account_id":    senderID,
					"recipient_account_id": recipientID,
					"amount_cents":         input.AmountCents,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransfer()
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"sender_account_id":    sender.ID.String(),
			"recipient_account_id": recipient.ID.String(),
			"amount_cents":         input.AmountCents,
		}), "wallet transfer completed")
	}

	senderView := toTransactionView(debitRecord)
	recipientView := toTransactionView(creditRecord)
	return &TransferResult{
		RecipientName:  recipient.DisplayName,
		SenderEntry:    &senderView,
		RecipientEntry: &recipientView,
		SenderBalance:  senderBalance,
	}, nil
}

func (s *service) Statement(ctx context.Context, accountID uuid.UUID) (*StatementView, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByAccountID(ctx, accountID, statementLimit)
	if err != nil {
		return nil, err
	}
	views := make([]TransactionView, 0, len(entries))
	for i := range entries {
		views = append(views, toTransactionView(&entries[i]))
	}
	return &StatementView{
		AccountID:    account.ID,
		DisplayName:  account.DisplayName,
		TransferCode: account.TransferCode,
		BalanceCents: account.BalanceCents,
		Transactions: views,
	}, nil
}

func validateMutation(tx *gorm.DB, accountID uuid.UUID, amountCents int64, txType enums.WalletTransactionType) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "ledger mutation requires a transaction")
	}
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if amountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive number of cents")
	}
	if !txType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", txType))
	}
	return nil
}
