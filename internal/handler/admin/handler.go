package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/model"
)

type StatsService interface {
	GetDoctorStats(ctx context.Context) (*model.DoctorStats, error)
}

type DataService interface {
	ClearAll(ctx context.Context) error
}

// Handler serves the doctor dashboard and the data reset.
type Handler struct {
	stats StatsService
	data  DataService
}

func NewHandler(stats StatsService, data DataService) *Handler {
	return &Handler{stats: stats, data: data}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctor/stats", h.DoctorStats)
	r.DELETE("/admin/data", h.ClearData)
}

func (h *Handler) DoctorStats(c *gin.Context) {
	stats, err := h.stats.GetDoctorStats(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, stats)
}

func (h *Handler) ClearData(c *gin.Context) {
	if err := h.data.ClearAll(c.Request.Context()); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "all data cleared"})
}
