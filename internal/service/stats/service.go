package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
)

type Service struct {
	records       repository.MedicalRecordRepository
	prescriptions repository.PrescriptionRepository
	appointments  repository.AppointmentRepository
	patients      repository.PatientRepository
	logger        *logger.Logger
	now           func() time.Time
	loc           *time.Location
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone for date times written without an offset.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(
	records repository.MedicalRecordRepository,
	prescriptions repository.PrescriptionRepository,
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	log *logger.Logger,
	opts ...Option,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		records:       records,
		prescriptions: prescriptions,
		appointments:  appointments,
		patients:      patients,
		logger:        log,
		now:           time.Now,
		loc:           time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetPatientStats(ctx context.Context, email string) (*model.PatientStats, error) {
	appointments, err := s.appointments.ListByPatient(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	prescriptions, err := s.prescriptions.ListByPatient(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	records, err := s.records.ListByPatient(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	now := s.now()

	type dated[T any] struct {
		item T
		at   time.Time
	}

	var upcoming []dated[model.Appointment]
	for _, a := range appointments {
		if a.Status == model.AppointmentStatusCancelled {
			continue
		}
		at, ok := parseDate(a.Date, s.loc)
		if !ok || at.Before(now) {
			continue
		}
		upcoming = append(upcoming, dated[model.Appointment]{a, at})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].at.Before(upcoming[j].at)
	})

	var checkups []dated[model.MedicalRecord]
	for _, r := range records {
		if !strings.Contains(strings.ToLower(r.Event), "check") {
			continue
		}
		at, _ := parseDate(r.Date, s.loc)
		checkups = append(checkups, dated[model.MedicalRecord]{r, at})
	}
	sort.SliceStable(checkups, func(i, j int) bool {
		return checkups[i].at.After(checkups[j].at)
	})

	stats := &model.PatientStats{
		NextAppointment:           model.NoAppointmentScheduled,
		ActivePrescriptions:       len(prescriptions),
		LastCheckup:               model.NoCheckupRecords,
		TotalRecords:              len(records),
		UpcomingAppointmentsCount: len(upcoming),
	}
	if len(upcoming) > 0 {
		stats.NextAppointment = upcoming[0].item.Date
	}
	if len(checkups) > 0 {
		stats.LastCheckup = checkups[0].item.Date
	}

	s.logger.WithContext(ctx).Debug("patient stats computed", "email", email,
		"records", stats.TotalRecords, "upcoming", stats.UpcomingAppointmentsCount)
	return stats, nil
}

// GetDoctorStats counts across all patients. Today's appointments are those
// whose date string equals the current UTC date exactly.
func (s *Service) GetDoctorStats(ctx context.Context) (*model.DoctorStats, error) {
	patients, err := s.patients.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	appointments, err := s.appointments.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	records, err := s.records.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	today := s.now().UTC().Format(dateOnly)
	stats := &model.DoctorStats{TotalPatients: len(patients)}
	for _, a := range appointments {
		if a.Date == today {
			stats.TodayAppointments++
		}
	}
	for _, r := range records {
		if r.Status == model.RecordStatusPending {
			stats.PendingReviews++
		}
	}
	return stats, nil
}
