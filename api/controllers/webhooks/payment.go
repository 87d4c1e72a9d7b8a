package webhooks

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mateovidal/campusbites-backend/api/responses"
	"github.com/mateovidal/campusbites-backend/api/validators"
	paymentsvc "github.com/mateovidal/campusbites-backend/internal/payments"
	"github.com/mateovidal/campusbites-backend/pkg/config"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
)

type paymentWebhookPayload struct {
	GatewayOrderID   string    `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string    `json:"gateway_payment_id" validate:"required"`
	AccountID        uuid.UUID `json:"account_id" validate:"required"`
	AmountCents      int64     `json:"amount_cents" validate:"required,gt=0"`
	Signature        string    `json:"signature" validate:"required"`
}

// PaymentWebhook receives gateway top-up notifications. A replayed payment
// returns a success envelope so the gateway stops retrying, but credits
// nothing.
func PaymentWebhook(svc paymentsvc.Service, gateway config.GatewayConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload paymentWebhookPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := paymentsvc.VerifySignature(
			gateway.WebhookSecret,
			payload.GatewayOrderID,
			payload.GatewayPaymentID,
			payload.Signature,
		); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreditFromPayment(ctx, paymentsvc.CreditInput{
			GatewayOrderID:   payload.GatewayOrderID,
			GatewayPaymentID: payload.GatewayPaymentID,
			AccountID:        payload.AccountID,
			AmountCents:      payload.AmountCents,
		})
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeIdempotency) {
				responses.WriteSuccess(w, map[string]any{
					"gateway_payment_id": payload.GatewayPaymentID,
					"already_processed":  true,
				})
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
