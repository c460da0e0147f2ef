package admin

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/response"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
)

// Handler exposes the admin panel endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type changeRoleRequest struct {
	TargetUserID int64  `json:"targetUserId" validate:"required"`
	NewRole      string `json:"newRole" validate:"required"`
}

type modifyResourcesRequest struct {
	TargetUserID int64  `json:"targetUserId" validate:"required"`
	TokensChange *int64 `json:"tokensChange"`
	PointsChange *int64 `json:"pointsChange"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	rows, err := h.svc.ListAccounts(r.Context(), id.AccountID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, rows)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	rows, err := h.svc.SearchAccounts(r.Context(), id.AccountID, r.PathValue("username"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, rows)
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	var req changeRoleRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	a, err := h.svc.ChangeRole(r.Context(), id.AccountID, req.TargetUserID, req.NewRole)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"success": true, "user": a})
}

func (h *Handler) ModifyResources(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	var req modifyResourcesRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	a, err := h.svc.ModifyResources(r.Context(), id.AccountID, req.TargetUserID, ResourceChange{
		TokensDelta: req.TokensChange,
		PointsDelta: req.PointsChange,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"success": true, "user": a})
}
