package account

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/response"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
)

// Handler exposes HTTP endpoints for account operations.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      *entity.Account `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Profile is the caller's own account plus the capabilities the client
// gates its controls on.
type Profile struct {
	*entity.Account
	CanChat   bool `json:"can_chat"`
	CanManage bool `json:"can_manage"`
}

type displayNameRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	res, err := h.svc.Register(r.Context(), RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, AuthResponse{User: res.Account, Token: res.Token, ExpiresAt: res.ExpiresAt})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	res, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, AuthResponse{User: res.Account, Token: res.Token, ExpiresAt: res.ExpiresAt})
}

// Me returns the caller's account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	a, err := h.svc.Get(r.Context(), id.AccountID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, Profile{Account: a, CanChat: a.Role.CanChat(), CanManage: a.Role.CanManage()})
}

func (h *Handler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperr.Unauthorized("no token provided"))
		return
	}
	var req displayNameRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	a, err := h.svc.UpdateDisplayName(r.Context(), id.AccountID, req.DisplayName)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}
