package leaderboard

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/response"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error(w, r, h.logger, apperr.Validation("limit must be a number"))
			return
		}
		limit = n
	}
	rows, err := h.svc.Top(r.Context(), limit)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, rows)
}

func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	st, err := h.svc.RankOf(r.Context(), id.AccountID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, st)
}
