package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rishtahub/rishta-backend/api/responses"
	"github.com/rishtahub/rishta-backend/pkg/config"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RishtaHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when both backing stores answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RishtaHub-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		ready := true

		if dbP == nil {
			checks["database"] = "unconfigured"
			ready = false
		} else if err := dbP.Ping(ctx); err != nil {
			if logg != nil {
				logg.Error(ctx, "database readiness check failed", err)
			}
			checks["database"] = "unreachable"
			ready = false
		}

		if redisP == nil {
			checks["redis"] = "unconfigured"
			ready = false
		} else if err := redisP.Ping(ctx); err != nil {
			if logg != nil {
				logg.Error(ctx, "redis readiness check failed", err)
			}
			checks["redis"] = "unreachable"
			ready = false
		}

		if !ready {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
