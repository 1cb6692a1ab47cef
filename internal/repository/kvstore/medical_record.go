package kvstore

import (
	"context"

	"github.com/jwalitptl/hospital-portal/internal/model"
)

type medicalRecordRepository struct {
	c     collection[model.MedicalRecord]
	newID IDGenerator
}

func (r *medicalRecordRepository) GetAll(ctx context.Context) ([]model.MedicalRecord, error) {
	return r.c.load(ctx)
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientEmail string) ([]model.MedicalRecord, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(rec model.MedicalRecord) bool {
		return rec.PatientEmail == patientEmail
	}), nil
}

func (r *medicalRecordRepository) Add(ctx context.Context, in model.NewMedicalRecord) (*model.MedicalRecord, error) {
	record := model.MedicalRecord{
		ID:           r.newID(),
		PatientEmail: in.PatientEmail,
		Date:         in.Date,
		Event:        in.Event,
		Doctor:       in.Doctor,
		Status:       in.Status,
		Notes:        in.Notes,
		Files:        in.Files,
	}

	_, err := r.c.mutate(ctx, func(all []model.MedicalRecord) ([]model.MedicalRecord, bool) {
		return append(all, record), true
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, id string, updates *model.UpdateMedicalRecordRequest) (bool, error) {
	return r.c.mutate(ctx, func(all []model.MedicalRecord) ([]model.MedicalRecord, bool) {
		for i := range all {
			if all[i].ID == id {
				updates.Apply(&all[i])
				return all, true
			}
		}
		return all, false
	})
}

func (r *medicalRecordRepository) AddFile(ctx context.Context, recordID string, file model.FileAttachment) (*model.FileAttachment, error) {
	var stored *model.FileAttachment
	_, err := r.c.mutate(ctx, func(all []model.MedicalRecord) ([]model.MedicalRecord, bool) {
		for i := range all {
			if all[i].ID == recordID {
				if file.ID == "" {
					file.ID = r.newID()
				}
				all[i].Files = append(all[i].Files, file)
				stored = &file
				return all, true
			}
		}
		return all, false
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}
