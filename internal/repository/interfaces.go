package repository

import (
	"context"

	"github.com/jwalitptl/hospital-portal/internal/model"
)

// All repository interfaces in one file.
//
// Update and delete report whether anything matched. A call that matches
// nothing writes nothing and returns false with a nil error.
type (
	MedicalRecordRepository interface {
		GetAll(ctx context.Context) ([]model.MedicalRecord, error)
		ListByPatient(ctx context.Context, patientEmail string) ([]model.MedicalRecord, error)
		Add(ctx context.Context, record model.NewMedicalRecord) (*model.MedicalRecord, error)
		Update(ctx context.Context, id string, updates *model.UpdateMedicalRecordRequest) (bool, error)
		// AddFile returns the stored attachment, or nil when no record has recordID
		AddFile(ctx context.Context, recordID string, file model.FileAttachment) (*model.FileAttachment, error)
	}

	PrescriptionRepository interface {
		GetAll(ctx context.Context) ([]model.Prescription, error)
		ListByPatient(ctx context.Context, patientEmail string) ([]model.Prescription, error)
		Add(ctx context.Context, prescription model.NewPrescription) (*model.Prescription, error)
	}

	AppointmentRepository interface {
		GetAll(ctx context.Context) ([]model.Appointment, error)
		ListByPatient(ctx context.Context, patientEmail string) ([]model.Appointment, error)
		// Get returns nil when no appointment has id
		Get(ctx context.Context, id string) (*model.Appointment, error)
		Add(ctx context.Context, appointment model.NewAppointment) (*model.Appointment, error)
		Update(ctx context.Context, id string, updates *model.UpdateAppointmentRequest) (bool, error)
		Delete(ctx context.Context, id string) (bool, error)
	}

	PatientRepository interface {
		GetAll(ctx context.Context) ([]model.Patient, error)
		// Get returns nil when no patient has that email
		Get(ctx context.Context, email string) (*model.Patient, error)
		// Add reports false when the email was already registered
		Add(ctx context.Context, patient model.Patient) (bool, error)
		Update(ctx context.Context, email string, updates *model.UpdatePatientRequest) (bool, error)
	}

	// StoreRepository owns the whole namespace.
	StoreRepository interface {
		Clear(ctx context.Context) error
	}
)
