package catalog

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/response"
)

// Handler contains dependencies for the catalog endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.svc.List())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rule, err := h.svc.Get(r.PathValue("kind"))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, rule)
}
