package prescription

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/internal/service/event"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/validator"
)

type Service struct {
	repo      repository.PrescriptionRepository
	events    *event.Emitter
	validator validator.Validator
}

func NewService(repo repository.PrescriptionRepository, publisher messaging.Publisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		events:    event.NewEmitter(publisher, log),
		validator: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, req model.NewPrescription) (*model.Prescription, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	p, err := s.repo.Add(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}

	s.events.Emit(ctx, model.EventPrescriptionCreated, p.ID, p.PatientEmail, p)
	return p, nil
}

func (s *Service) List(ctx context.Context, patientEmail string) ([]model.Prescription, error) {
	list, err := s.repo.ListByPatient(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return list, nil
}

func (s *Service) ListAll(ctx context.Context) ([]model.Prescription, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return list, nil
}
