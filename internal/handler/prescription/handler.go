package prescription

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/model"
)

type PrescriptionService interface {
	ListAll(ctx context.Context) ([]model.Prescription, error)
}

type Handler struct {
	service PrescriptionService
}

func NewHandler(service PrescriptionService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/prescriptions", h.ListPrescriptions)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, list)
}
