package patient

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/model"
)

type PatientService interface {
	Register(ctx context.Context, patient model.Patient) (*model.Patient, bool, error)
	Get(ctx context.Context, email string) (*model.Patient, error)
	List(ctx context.Context) ([]model.Patient, error)
	Update(ctx context.Context, email string, req *model.UpdatePatientRequest) error
}

type RecordService interface {
	Create(ctx context.Context, req model.NewMedicalRecord) (*model.MedicalRecord, error)
	List(ctx context.Context, patientEmail string) ([]model.MedicalRecord, error)
}

type PrescriptionService interface {
	Create(ctx context.Context, req model.NewPrescription) (*model.Prescription, error)
	List(ctx context.Context, patientEmail string) ([]model.Prescription, error)
}

type AppointmentService interface {
	Book(ctx context.Context, req model.NewAppointment) (*model.Appointment, error)
	List(ctx context.Context, patientEmail string) ([]model.Appointment, error)
}

type StatsService interface {
	GetPatientStats(ctx context.Context, email string) (*model.PatientStats, error)
}

// Handler serves everything scoped to one patient under /patients/:email.
type Handler struct {
	patients      PatientService
	records       RecordService
	prescriptions PrescriptionService
	appointments  AppointmentService
	stats         StatsService
}

func NewHandler(patients PatientService, records RecordService, prescriptions PrescriptionService,
	appointments AppointmentService, stats StatsService) *Handler {
	return &Handler{
		patients:      patients,
		records:       records,
		prescriptions: prescriptions,
		appointments:  appointments,
		stats:         stats,
	}
}

// RegisterRoutes mounts the patient routes on r. collection guards /patients
// itself and scoped guards every /patients/:email route; either may be nil.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, collection, scoped gin.HandlerFunc) {
	patients := r.Group("/patients")
	{
		patients.GET("", chain(collection, h.ListPatients)...)
		patients.POST("", chain(collection, h.RegisterPatient)...)
	}

	one := patients.Group("/:email")
	if scoped != nil {
		one.Use(scoped)
	}
	{
		one.GET("", h.GetPatient)
		one.PATCH("", h.UpdatePatient)
		one.GET("/stats", h.GetStats)

		one.GET("/records", h.ListRecords)
		one.POST("/records", h.CreateRecord)

		one.GET("/prescriptions", h.ListPrescriptions)
		one.POST("/prescriptions", h.CreatePrescription)

		one.GET("/appointments", h.ListAppointments)
		one.POST("/appointments", h.BookAppointment)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.patients.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, patients)
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.Patient
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}

	p, inserted, err := h.patients.Register(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	status := http.StatusCreated
	if !inserted {
		status = http.StatusOK
	}
	handler.Success(c, status, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.patients.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}

	if err := h.patients.Update(c.Request.Context(), c.Param("email"), &req); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "patient updated"})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.stats.GetPatientStats(c.Request.Context(), c.Param("email"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, stats)
}

func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.records.List(c.Request.Context(), c.Param("email"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, records)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var req model.NewMedicalRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}
	req.PatientEmail = c.Param("email")

	record, err := h.records.Create(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusCreated, record)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	list, err := h.prescriptions.List(c.Request.Context(), c.Param("email"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, list)
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.NewPrescription
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}
	req.PatientEmail = c.Param("email")

	p, err := h.prescriptions.Create(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusCreated, p)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	list, err := h.appointments.List(c.Request.Context(), c.Param("email"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, list)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.NewAppointment
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}
	req.PatientEmail = c.Param("email")

	a, err := h.appointments.Book(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusCreated, a)
}

func chain(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}
