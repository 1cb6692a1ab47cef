package kvstore

import (
	"context"

	"github.com/jwalitptl/hospital-portal/internal/model"
)

type appointmentRepository struct {
	c     collection[model.Appointment]
	newID IDGenerator
}

func (r *appointmentRepository) GetAll(ctx context.Context) ([]model.Appointment, error) {
	return r.c.load(ctx)
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientEmail string) ([]model.Appointment, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(a model.Appointment) bool {
		return a.PatientEmail == patientEmail
	}), nil
}

// Get returns the first appointment carrying id, or nil.
func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (r *appointmentRepository) Add(ctx context.Context, in model.NewAppointment) (*model.Appointment, error) {
	appointment := model.Appointment{
		ID:           r.newID(),
		PatientEmail: in.PatientEmail,
		PatientName:  in.PatientName,
		Date:         in.Date,
		Time:         in.Time,
		Doctor:       in.Doctor,
		Type:         in.Type,
		Status:       in.Status,
	}

	_, err := r.c.mutate(ctx, func(all []model.Appointment) ([]model.Appointment, bool) {
		return append(all, appointment), true
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id string, updates *model.UpdateAppointmentRequest) (bool, error) {
	return r.c.mutate(ctx, func(all []model.Appointment) ([]model.Appointment, bool) {
		for i := range all {
			if all[i].ID == id {
				updates.Apply(&all[i])
				return all, true
			}
		}
		return all, false
	})
}

// Delete drops every appointment carrying id, duplicates included.
func (r *appointmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.mutate(ctx, func(all []model.Appointment) ([]model.Appointment, bool) {
		kept := filter(all, func(a model.Appointment) bool {
			return a.ID != id
		})
		return kept, len(kept) != len(all)
	})
}
