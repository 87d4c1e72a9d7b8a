package controllers

import (
	"net/http"

	"github.com/mateovidal/campusbites-backend/api/responses"
	forecastsvc "github.com/mateovidal/campusbites-backend/internal/forecast"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
)

// ForecastReport returns the weekly demand forecast. Staff only.
func ForecastReport(svc forecastsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Report(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
