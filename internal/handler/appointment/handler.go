package appointment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
)

type AppointmentService interface {
	Get(ctx context.Context, id string) (*model.Appointment, error)
	ListAll(ctx context.Context) ([]model.Appointment, error)
	Update(ctx context.Context, id string, req *model.UpdateAppointmentRequest) error
	Cancel(ctx context.Context, id string) error
}

type Handler struct {
	service AppointmentService
}

func NewHandler(service AppointmentService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /appointments. collection guards the list of every
// patient's bookings; changes by id are checked against the caller.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, collection gin.HandlerFunc) {
	appointments := r.Group("/appointments")
	{
		if collection != nil {
			appointments.GET("", collection, h.ListAppointments)
		} else {
			appointments.GET("", h.ListAppointments)
		}
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, list)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}

	if !h.mayChange(c, c.Param("id")) {
		return
	}
	if req.PatientEmail != nil && !isDoctor(c) && *req.PatientEmail != c.GetString(middleware.ContextEmail) {
		handler.Error(c, errors.Forbidden(nil))
		return
	}

	if err := h.service.Update(c.Request.Context(), c.Param("id"), &req); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "appointment updated"})
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	if !h.mayChange(c, c.Param("id")) {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "appointment cancelled"})
}

// mayChange lets doctors change any appointment and patients only their own.
// An unknown id passes, the change is then a no-op. On false the response
// has been written.
func (h *Handler) mayChange(c *gin.Context, id string) bool {
	if isDoctor(c) {
		return true
	}
	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.IsCode(err, errors.ErrNotFound) {
			return true
		}
		handler.Error(c, err)
		return false
	}
	if a.PatientEmail != c.GetString(middleware.ContextEmail) {
		handler.Error(c, errors.Forbidden(nil))
		return false
	}
	return true
}

func isDoctor(c *gin.Context) bool {
	return c.GetString(middleware.ContextRole) == model.RoleDoctor
}
