package controllers

import (
	"net/http"

	"github.com/mateovidal/campusbites-backend/api/responses"
	"github.com/mateovidal/campusbites-backend/pkg/config"
	"github.com/mateovidal/campusbites-backend/pkg/db"
	pkgerrors "github.com/mateovidal/campusbites-backend/pkg/errors"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
	pkgredis "github.com/mateovidal/campusbites-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CampusBites-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the datasources the engine depends on.
func HealthReady(cfg *config.Config, dbc db.Pinger, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CampusBites-Env", cfg.App.Env)

		if dbc != nil {
			if err := dbc.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
