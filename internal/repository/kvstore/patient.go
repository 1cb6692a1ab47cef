package kvstore

import (
	"context"

	"github.com/jwalitptl/hospital-portal/internal/model"
)

type patientRepository struct {
	c collection[model.Patient]
}

func (r *patientRepository) GetAll(ctx context.Context) ([]model.Patient, error) {
	return r.c.load(ctx)
}

func (r *patientRepository) Get(ctx context.Context, email string) (*model.Patient, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Email == email {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Add keeps the first registration for an email and ignores later ones.
func (r *patientRepository) Add(ctx context.Context, patient model.Patient) (bool, error) {
	return r.c.mutate(ctx, func(all []model.Patient) ([]model.Patient, bool) {
		for _, p := range all {
			if p.Email == patient.Email {
				return all, false
			}
		}
		return append(all, patient), true
	})
}

func (r *patientRepository) Update(ctx context.Context, email string, updates *model.UpdatePatientRequest) (bool, error) {
	return r.c.mutate(ctx, func(all []model.Patient) ([]model.Patient, bool) {
		for i := range all {
			if all[i].Email == email {
				updates.Apply(&all[i])
				return all, true
			}
		}
		return all, false
	})
}
