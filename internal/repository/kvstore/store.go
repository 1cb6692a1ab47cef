// Package kvstore implements the record repositories on top of a kv.Store.
//
// Every operation loads the whole collection for its kind, works on it in
// memory and writes the whole collection back. Writers in the same process
// are serialized per collection; separate processes sharing a backend are
// not coordinated.
package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
)

type Option func(*Store)

// WithIDGenerator replaces the default timestamp+random ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithClock sets the time source used for ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.newID = NewIDGenerator(now)
	}
}

// Store groups the four repositories sharing one namespace and one set of
// per-key locks.
type Store struct {
	kv    kv.Store
	locks *locks
	newID IDGenerator

	records       *medicalRecordRepository
	prescriptions *prescriptionRepository
	appointments  *appointmentRepository
	patients      *patientRepository
}

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:    store,
		locks: &locks{},
		newID: NewIDGenerator(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.records = &medicalRecordRepository{
		c:     newCollection[model.MedicalRecord](store, KeyMedicalRecords, s.locks),
		newID: s.newID,
	}
	s.prescriptions = &prescriptionRepository{
		c:     newCollection[model.Prescription](store, KeyPrescriptions, s.locks),
		newID: s.newID,
	}
	s.appointments = &appointmentRepository{
		c:     newCollection[model.Appointment](store, KeyAppointments, s.locks),
		newID: s.newID,
	}
	s.patients = &patientRepository{
		c: newCollection[model.Patient](store, KeyPatients, s.locks),
	}
	return s
}

func (s *Store) MedicalRecords() repository.MedicalRecordRepository { return s.records }

func (s *Store) Prescriptions() repository.PrescriptionRepository { return s.prescriptions }

func (s *Store) Appointments() repository.AppointmentRepository { return s.appointments }

func (s *Store) Patients() repository.PatientRepository { return s.patients }

// Clear removes every collection key. Session scalars are left alone.
func (s *Store) Clear(ctx context.Context) error {
	for _, key := range AllKeys {
		m := s.locks.get(key)
		m.Lock()
		err := s.kv.Remove(ctx, key)
		m.Unlock()
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

var _ repository.StoreRepository = (*Store)(nil)
