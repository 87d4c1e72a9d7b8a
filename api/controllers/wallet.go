package controllers

import (
	"net/http"

	"github.com/mateovidal/campusbites-backend/api/responses"
	"github.com/mateovidal/campusbites-backend/api/validators"
	walletsvc "github.com/mateovidal/campusbites-backend/internal/wallet"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
)

type transferRequest struct {
	RecipientCode string `json:"recipient_code" validate:"required"`
	AmountCents   int64  `json:"amount_cents" validate:"required,gt=0"`
	Note          string `json:"note" validate:"omitempty,max=140"`
}

// Transfer moves funds from the authenticated account to the wallet behind
// a public transfer code.
func Transfer(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, err := callerAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Transfer(r.Context(), walletsvc.TransferInput{
			SenderID:     senderID,
			RecipientTag: payload.RecipientCode,
			AmountCents:  payload.AmountCents,
			Note:         payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// WalletStatement returns the authenticated account's balance and recent
// ledger entries.
func WalletStatement(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := callerAccountID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		statement, err := svc.Statement(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, statement)
	}
}
