package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/internal/service/event"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/validator"
)

type PatientService interface {
	Register(ctx context.Context, patient model.Patient) (*model.Patient, bool, error)
	Get(ctx context.Context, email string) (*model.Patient, error)
	List(ctx context.Context) ([]model.Patient, error)
	Update(ctx context.Context, email string, req *model.UpdatePatientRequest) error
	ClearAll(ctx context.Context) error
}

type Service struct {
	repo      repository.PatientRepository
	store     repository.StoreRepository
	events    *event.Emitter
	logger    *logger.Logger
	validator validator.Validator
	now       func() time.Time
}

func NewService(repo repository.PatientRepository, store repository.StoreRepository, publisher messaging.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		store:     store,
		events:    event.NewEmitter(publisher, log),
		logger:    log,
		validator: validator.New(),
		now:       time.Now,
	}
}

// Register stores the patient unless the email is already known. The bool
// reports whether anything was written; the returned patient is the stored one.
func (s *Service) Register(ctx context.Context, patient model.Patient) (*model.Patient, bool, error) {
	if err := s.validator.Validate(patient); err != nil {
		return nil, false, err
	}
	if patient.RegisteredAt == "" {
		patient.RegisteredAt = s.now().UTC().Format(model.TimestampLayout)
	}

	inserted, err := s.repo.Add(ctx, patient)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add patient: %w", err)
	}
	if !inserted {
		s.logger.WithContext(ctx).Debug("patient already registered", "email", patient.Email)
		existing, err := s.repo.Get(ctx, patient.Email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get patient: %w", err)
		}
		if existing != nil {
			return existing, false, nil
		}
		return &patient, false, nil
	}

	s.events.Emit(ctx, model.EventPatientCreated, patient.Email, patient.Email, patient)
	return &patient, true, nil
}

func (s *Service) Get(ctx context.Context, email string) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if p == nil {
		return nil, errors.NotFound("patient", nil)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]model.Patient, error) {
	patients, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) Update(ctx context.Context, email string, req *model.UpdatePatientRequest) error {
	if req == nil {
		return errors.BadRequest("empty update", nil)
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	changed, err := s.repo.Update(ctx, email, req)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if changed {
		s.events.Emit(ctx, model.EventPatientUpdated, email, email, req)
	}
	return nil
}

// ClearAll wipes every collection. Session keys survive.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	s.logger.WithContext(ctx).Warn("all portal data cleared")
	s.events.Emit(ctx, model.EventStoreCleared, "", "", nil)
	return nil
}

var _ PatientService = (*Service)(nil)
