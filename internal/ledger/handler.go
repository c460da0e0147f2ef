package ledger

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/response"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
)

// Handler exposes the game and shop endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type startRequest struct {
	GameName string `json:"game_name" validate:"required"`
}

type resultRequest struct {
	GameName     string   `json:"game_name" validate:"required"`
	Won          *bool    `json:"won" validate:"required"`
	PointsEarned int64    `json:"points_earned"`
	TimeTaken    *float64 `json:"time_taken"`
}

type buyTokensRequest struct {
	Amount int64 `json:"amount"`
}

type buyTokensResponse struct {
	Success bool  `json:"success"`
	Tokens  int64 `json:"tokens"`
	Points  int64 `json:"points"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	var req startRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	res, err := h.svc.StartGame(r.Context(), id.AccountID, req.GameName)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	var req resultRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	a, err := h.svc.RecordOutcome(r.Context(), id.AccountID, OutcomeInput{
		Kind:           req.GameName,
		Won:            *req.Won,
		PointsEarned:   req.PointsEarned,
		ElapsedSeconds: req.TimeTaken,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"success": true, "user": a})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error(w, r, h.logger, apperr.Validation("limit must be a number"))
			return
		}
		limit = n
	}
	rows, err := h.svc.History(r.Context(), id.AccountID, limit)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, rows)
}

func (h *Handler) BuyTokens(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	var req buyTokensRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	a, err := h.svc.ExchangeTokensForPoints(r.Context(), id.AccountID, req.Amount)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, buyTokensResponse{Success: true, Tokens: a.Tokens, Points: a.Points})
}
