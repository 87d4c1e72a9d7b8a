package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	"github.com/mateovidal/campusbites-backend/pkg/enums"
)

// Entry carries the descriptive fields of a ledger record; the amount and
// direction come from the operation that writes it.
type Entry struct {
	Type                 enums.WalletTransactionType
	Description          string
	CounterpartAccountID *uuid.UUID
	ExternalRef          *string
}

// TransferInput is a peer-to-peer transfer request.
type TransferInput struct {
	SenderID     uuid.UUID
	RecipientTag string
	AmountCents  int64
	Note         string
}

// TransferResult reports both sides of a completed transfer.
type TransferResult struct {
	RecipientName  string           `json:"recipient_name"`
	SenderEntry    *TransactionView `json:"sender_entry"`
	RecipientEntry *TransactionView `json:"recipient_entry"`
	SenderBalance  int64            `json:"sender_balance_cents"`
}

// TransactionView is the API shape of a ledger record.
type TransactionView struct {
	ID                   uuid.UUID                   `json:"id"`
	AccountID            uuid.UUID                   `json:"account_id"`
	Type                 enums.WalletTransactionType `json:"type"`
	AmountCents          int64                       `json:"amount_cents"`
	Description          string                      `json:"description"`
	CounterpartAccountID *uuid.UUID                  `json:"counterpart_account_id,omitempty"`
	ExternalRef          *string                     `json:"external_ref,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
}

// StatementView is an account's balance with its most recent ledger entries.
type StatementView struct {
	AccountID    uuid.UUID         `json:"account_id"`
	DisplayName  string            `json:"display_name"`
	TransferCode string            `json:"transfer_code"`
	BalanceCents int64             `json:"balance_cents"`
	Transactions []TransactionView `json:"transactions"`
}

func toTransactionView(tx *models.WalletTransaction) TransactionView {
	return TransactionView{
		ID:                   tx.ID,
		AccountID:            tx.AccountID,
		Type:                 tx.Type,
		AmountCents:          tx.AmountCents,
		Description:          tx.Description,
		CounterpartAccountID: tx.CounterpartAccountID,
		ExternalRef:          tx.ExternalRef,
		CreatedAt:            tx.CreatedAt,
	}
}
