package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateovidal/campusbites-backend/internal/accounts"
	"github.com/mateovidal/campusbites-backend/internal/wallet"
	"github.com/mateovidal/campusbites-backend/pkg/config"
	"github.com/mateovidal/campusbites-backend/pkg/db"
	"github.com/mateovidal/campusbites-backend/pkg/db/models"
	"github.com/mateovidal/campusbites-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
)

func newPaymentsHarness(t *testing.T) (*db.Client, Service) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(),
		config.DBConfig{DSN: dsn},
		config.FeatureFlagsConfig{UseSQLite: true},
		nil,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	conn := client.DB()
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  transfer_code TEXT NOT NULL UNIQUE,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  role TEXT NOT NULL DEFAULT 'student',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS wallet_transactions (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  counterpart_account_id TEXT,
  external_ref TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payment_receipts (
  gateway_payment_id TEXT PRIMARY KEY,
  gateway_order_id TEXT NOT NULL,
  account_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	accountRepo := accounts.NewRepository(conn)
	walletSvc, err := wallet.NewService(client, wallet.NewRepository(conn), accountRepo, nil, nil, nil)
	require.NoError(t, err)

	svc, err := NewService(client, NewRepository(conn), walletSvc, nil, nil, nil)
	require.NoError(t, err)
	return client, svc
}

func seedPaymentAccount(t *testing.T, client *db.Client, balanceCents int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, client.DB().Create(&models.Account{
		ID:           id,
		DisplayName:  "Dana",
		TransferCode: "CB-" + id.String()[:8],
		BalanceCents: balanceCents,
		Role:         enums.ActorRoleStudent,
	}).Error)
	return id
}

func accountBalance(t *testing.T, client *db.Client, accountID uuid.UUID) int64 {
	t.Helper()
	var account models.Account
	require.NoError(t, client.DB().First(&account, "id = ?", accountID).Error)
	return account.BalanceCents
}

func TestService_CreditFromPayment(t *testing.T) {
	client, svc := newPaymentsHarness(t)
	ctx := context.Background()

	accountID := seedPaymentAccount(t, client, 500)

	result, err := svc.CreditFromPayment(ctx, CreditInput{
		GatewayOrderID:   "go_abc",
		GatewayPaymentID: "pay_1",
		AccountID:        accountID,
		AmountCents:      20000,
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", result.GatewayPaymentID)
	assert.Equal(t, int64(20500), accountBalance(t, client, accountID))

	var entries []models.WalletTransaction
	require.NoError(t, client.DB().Where("account_id = ?", accountID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.WalletTransactionTypeTopup, entries[0].Type)
	require.NotNil(t, entries[0].ExternalRef)
	assert.Equal(t, "pay_1", *entries[0].ExternalRef)
}

func TestService_CreditFromPaymentReplayIsNoOp(t *testing.T) {
	client, svc := newPaymentsHarness(t)
	ctx := context.Background()

	accountID := seedPaymentAccount(t, client, 0)

	input := CreditInput{
		GatewayOrderID:   "go_abc",
		GatewayPaymentID: "pay_replay",
		AccountID:        accountID,
		AmountCents:      20000,
	}
	_, err := svc.CreditFromPayment(ctx, input)
	require.NoError(t, err)
	require.Equal(t, int64(20000), accountBalance(t, client, accountID))

	_, err = svc.CreditFromPayment(ctx, input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeIdempotency))

	// The replay credited nothing and wrote no second ledger entry.
	assert.Equal(t, int64(20000), accountBalance(t, client, accountID))
	var count int64
	require.NoError(t, client.DB().
		Model(&models.WalletTransaction{}).
		Where("account_id = ?", accountID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestService_CreditFromPaymentUnknownAccountRollsBack(t *testing.T) {
	client, svc := newPaymentsHarness(t)
	ctx := context.Background()

	_, err := svc.CreditFromPayment(ctx, CreditInput{
		GatewayOrderID:   "go_abc",
		GatewayPaymentID: "pay_ghost",
		AccountID:        uuid.New(),
		AmountCents:      1000,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	// The receipt insert rolled back with the failed credit, so a retry for
	// a later-created account is still possible.
	var count int64
	require.NoError(t, client.DB().Model(&models.PaymentReceipt{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestService_CreditFromPaymentValidation(t *testing.T) {
	_, svc := newPaymentsHarness(t)
	ctx := context.Background()

	_, err := svc.CreditFromPayment(ctx, CreditInput{AccountID: uuid.New(), AmountCents: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreditFromPayment(ctx, CreditInput{GatewayPaymentID: "pay_1", AmountCents: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreditFromPayment(ctx, CreditInput{GatewayPaymentID: "pay_1", AccountID: uuid.New(), AmountCents: 0})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
