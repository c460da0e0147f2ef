package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/admin"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/catalog"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/leaderboard"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ledger"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ratelimit"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/response"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
)

// Deps are the services the HTTP layer is built from.
type Deps struct {
	DB            *sqlx.DB
	Sessions      *session.Service
	Accounts      *account.Service
	Ledger        *ledger.Service
	Admin         *admin.Service
	Leaderboard   *leaderboard.Service
	Catalog       *catalog.Service
	AllowedOrigin string
	// Limiter throttles register and login per client IP; nil disables it.
	Limiter        ratelimit.Limiter
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// RegisterRoutes mounts HTTP handlers on the standard library's
// http.ServeMux and wraps them with the shared middleware.
func RegisterRoutes(logger *zap.SugaredLogger, d Deps) http.Handler {
	mux := http.NewServeMux()
	auth := RequireAuth(d.Sessions, logger)
	throttle := RateLimit(d.Limiter, "auth", d.AuthRateLimit, d.AuthRateWindow, logger)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			logger.Warnw("health check: db ping failed", "err", err)
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	accountHandler := account.NewHandler(d.Accounts, logger)
	mux.HandleFunc("POST /api/auth/register", throttle(accountHandler.Register))
	mux.HandleFunc("POST /api/auth/login", throttle(accountHandler.Login))
	mux.HandleFunc("GET /api/user", auth(accountHandler.Me))
	mux.HandleFunc("PUT /api/user/display-name", auth(accountHandler.UpdateDisplayName))

	ledgerHandler := ledger.NewHandler(d.Ledger, logger)
	mux.HandleFunc("POST /api/game/start", auth(ledgerHandler.Start))
	mux.HandleFunc("POST /api/game/result", auth(ledgerHandler.Result))
	mux.HandleFunc("GET /api/game/history", auth(ledgerHandler.History))
	mux.HandleFunc("POST /api/shop/buy-tokens", auth(ledgerHandler.BuyTokens))

	catalogHandler := catalog.NewHandler(d.Catalog, logger)
	mux.HandleFunc("GET /api/games", catalogHandler.List)
	mux.HandleFunc("GET /api/games/{kind}", catalogHandler.Get)

	leaderboardHandler := leaderboard.NewHandler(d.Leaderboard, logger)
	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.Top)
	mux.HandleFunc("GET /api/leaderboard/rank", auth(leaderboardHandler.Rank))

	adminHandler := admin.NewHandler(d.Admin, logger)
	mux.HandleFunc("GET /api/admin/users", auth(adminHandler.List))
	mux.HandleFunc("GET /api/admin/users/search/{username}", auth(adminHandler.Search))
	mux.HandleFunc("POST /api/admin/user/change-role", auth(adminHandler.ChangeRole))
	mux.HandleFunc("POST /api/admin/user/modify-resources", auth(adminHandler.ModifyResources))

	// request id first so every later layer can log it
	var handler http.Handler = mux
	handler = SecurityHeadersMiddleware()(handler)
	handler = CORSMiddleware(d.AllowedOrigin)(handler)
	handler = LoggingMiddleware(logger, mux)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
