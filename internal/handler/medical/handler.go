package medical

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
)

const fileField = "file"

type RecordService interface {
	ListAll(ctx context.Context) ([]model.MedicalRecord, error)
	Update(ctx context.Context, id string, req *model.UpdateMedicalRecordRequest) error
	AttachFile(ctx context.Context, recordID, name, mimeType string, raw []byte, uploadedBy string) (*model.FileAttachment, error)
}

type Handler struct {
	service RecordService
}

func NewHandler(service RecordService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/records")
	{
		records.GET("", h.ListRecords)
		records.PATCH("/:id", h.UpdateRecord)
		records.POST("/:id/files", h.UploadFile)
	}
}

func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, records)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	var req model.UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), c.Param("id"), &req); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "record updated"})
}

// UploadFile takes a multipart "file" field. uploadedBy defaults to the
// caller's name from the token.
func (h *Handler) UploadFile(c *gin.Context) {
	fh, err := c.FormFile(fileField)
	if err != nil {
		handler.Error(c, errors.BadRequest("file is required", err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		handler.Error(c, errors.BadRequest("failed to open upload", err))
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		handler.Error(c, errors.BadRequest("failed to read upload", err))
		return
	}

	uploadedBy := c.PostForm("uploadedBy")
	if uploadedBy == "" {
		uploadedBy = c.GetString(middleware.ContextName)
	}
	if uploadedBy == "" {
		uploadedBy = c.GetString(middleware.ContextEmail)
	}

	file, err := h.service.AttachFile(c.Request.Context(), c.Param("id"), fh.Filename,
		fh.Header.Get("Content-Type"), raw, uploadedBy)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusCreated, file)
}
