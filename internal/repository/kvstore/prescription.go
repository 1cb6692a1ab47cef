package kvstore

import (
	"context"

	"github.com/jwalitptl/hospital-portal/internal/model"
)

type prescriptionRepository struct {
	c     collection[model.Prescription]
	newID IDGenerator
}

func (r *prescriptionRepository) GetAll(ctx context.Context) ([]model.Prescription, error) {
	return r.c.load(ctx)
}

func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientEmail string) ([]model.Prescription, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(p model.Prescription) bool {
		return p.PatientEmail == patientEmail
	}), nil
}

func (r *prescriptionRepository) Add(ctx context.Context, in model.NewPrescription) (*model.Prescription, error) {
	prescription := model.Prescription{
		ID:             r.newID(),
		PatientEmail:   in.PatientEmail,
		Name:           in.Name,
		Dosage:         in.Dosage,
		Frequency:      in.Frequency,
		Remaining:      in.Remaining,
		PrescribedBy:   in.PrescribedBy,
		PrescribedDate: in.PrescribedDate,
	}

	_, err := r.c.mutate(ctx, func(all []model.Prescription) ([]model.Prescription, bool) {
		return append(all, prescription), true
	})
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}
