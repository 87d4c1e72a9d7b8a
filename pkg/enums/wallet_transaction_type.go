package enums

import "fmt"

// WalletTransactionType classifies one ledger entry.
type WalletTransactionType string

const (
	WalletTransactionTypeDebit    WalletTransactionType = "debit"
	WalletTransactionTypeCredit   WalletTransactionType = "credit"
	WalletTransactionTypeTopup    WalletTransactionType = "topup"
	WalletTransactionTypeRefund   WalletTransactionType = "refund"
	WalletTransactionTypeTransfer WalletTransactionType = "transfer"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTypeDebit,
	WalletTransactionTypeCredit,
	WalletTransactionTypeTopup,
	WalletTransactionTypeRefund,
	WalletTransactionTypeTransfer,
}

// String implements fmt.Stringer.
func (t WalletTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsCreditSide reports whether an entry of this type increases the balance.
// Debits decrease it; a transfer's direction is carried by the record pair,
// where the sender's record debits and the recipient's credits.
func (t WalletTransactionType) IsCreditSide() bool {
	switch t {
	case WalletTransactionTypeCredit, WalletTransactionTypeTopup, WalletTransactionTypeRefund:
		return true
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
