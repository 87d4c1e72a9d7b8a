package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	paymentsvc "github.com/mateovidal/campusbites-backend/internal/payments"
	"github.com/mateovidal/campusbites-backend/pkg/config"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
	"github.com/mateovidal/campusbites-backend/pkg/types"
)

const webhookSecret = "webhook-test-secret"

type fakePaymentsService struct {
	input  *paymentsvc.CreditInput
	result *paymentsvc.CreditResult
	err    error
}

func (f *fakePaymentsService) CreditFromPayment(_ context.Context, input paymentsvc.CreditInput) (*paymentsvc.CreditResult, error) {
	f.input = &input
	return f.result, f.err
}

func webhookBody(t *testing.T, orderID, paymentID string, accountID uuid.UUID, amount int64, signature string) string {
	t.Helper()
	payload := map[string]any{
		"gateway_order_id":   orderID,
		"gateway_payment_id": paymentID,
		"account_id":         accountID.String(),
		"amount_cents":       amount,
		"signature":          signature,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return string(raw)
}

func TestPaymentWebhookCreditsWallet(t *testing.T) {
	accountID := uuid.New()
	svc := &fakePaymentsService{
		result: &paymentsvc.CreditResult{GatewayPaymentID: "pay_123", AmountCents: 20000},
	}
	signature := paymentsvc.ComputeSignature(webhookSecret, "gw_1", "pay_123")
	body := webhookBody(t, "gw_1", "pay_123", accountID, 20000, signature)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	rec := httptest.NewRecorder()
	PaymentWebhook(svc, config.GatewayConfig{WebhookSecret: webhookSecret}, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input == nil {
		t.Fatal("service was not called")
	}
	if svc.input.AccountID != accountID || svc.input.AmountCents != 20000 {
		t.Fatalf("unexpected input %+v", svc.input)
	}
}

func TestPaymentWebhookRejectsForgedSignature(t *testing.T) {
	svc := &fakePaymentsService{}
	signature := paymentsvc.ComputeSignature("wrong-secret", "gw_1", "pay_123")
	body := webhookBody(t, "gw_1", "pay_123", uuid.New(), 20000, signature)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	rec := httptest.NewRecorder()
	PaymentWebhook(svc, config.GatewayConfig{WebhookSecret: webhookSecret}, nil)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 but got %d", rec.Code)
	}
	if svc.input != nil {
		t.Fatal("service must not be called when the signature fails")
	}
}

func TestPaymentWebhookReplayReturnsSuccess(t *testing.T) {
	svc := &fakePaymentsService{
		err: pkgerrors.New(pkgerrors.CodeIdempotency, "payment already processed"),
	}
	signature := paymentsvc.ComputeSignature(webhookSecret, "gw_1", "pay_123")
	body := webhookBody(t, "gw_1", "pay_123", uuid.New(), 20000, signature)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	rec := httptest.NewRecorder()
	PaymentWebhook(svc, config.GatewayConfig{WebhookSecret: webhookSecret}, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("replay should still return 200, got %d", rec.Code)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["already_processed"] != true {
		t.Fatalf("expected already_processed flag, got %v", data)
	}
}

func TestPaymentWebhookRejectsIncompletePayload(t *testing.T) {
	svc := &fakePaymentsService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(`{"gateway_order_id":"gw_1"}`))
	rec := httptest.NewRecorder()
	PaymentWebhook(svc, config.GatewayConfig{WebhookSecret: webhookSecret}, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", rec.Code)
	}
}
