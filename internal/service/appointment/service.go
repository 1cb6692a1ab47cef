package appointment

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/internal/service/event"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/validator"
)

type Service struct {
	repo      repository.AppointmentRepository
	events    *event.Emitter
	logger    *logger.Logger
	validator validator.Validator
}

func NewService(repo repository.AppointmentRepository, publisher messaging.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		events:    event.NewEmitter(publisher, log),
		logger:    log,
		validator: validator.New(),
	}
}

// Book stores a new appointment, scheduled unless a status is given.
func (s *Service) Book(ctx context.Context, req model.NewAppointment) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = model.AppointmentStatusScheduled
	}

	a, err := s.repo.Add(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	s.events.Emit(ctx, model.EventAppointmentCreated, a.ID, a.PatientEmail, a)
	return a, nil
}

func (s *Service) List(ctx context.Context, patientEmail string) ([]model.Appointment, error) {
	list, err := s.repo.ListByPatient(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return list, nil
}

// Get returns the appointment carrying id, NotFound otherwise.
func (s *Service) Get(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if a == nil {
		return nil, errors.NotFound("appointment", nil)
	}
	return a, nil
}

func (s *Service) ListAll(ctx context.Context) ([]model.Appointment, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, id string, req *model.UpdateAppointmentRequest) error {
	if req == nil {
		return errors.BadRequest("empty update", nil)
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	changed, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if changed {
		s.events.Emit(ctx, model.EventAppointmentUpdated, id, "", req)
	}
	return nil
}

// Cancel removes the appointment instead of marking it cancelled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	changed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if !changed {
		return nil
	}
	s.logger.WithContext(ctx).Info("appointment cancelled", "appointment_id", id)
	s.events.Emit(ctx, model.EventAppointmentDeleted, id, "", nil)
	return nil
}
