package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository/kvstore"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *kvstore.Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	store := kvstore.New(mem)
	svc := NewService(store.MedicalRecords(), store.Prescriptions(), store.Appointments(), store.Patients(), nil,
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
	return svc, store, mem
}

func book(t *testing.T, store *kvstore.Store, email, date, status string) {
	t.Helper()
	_, err := store.Appointments().Add(context.Background(), model.NewAppointment{
		PatientEmail: email, Date: date, Time: "10:00", Doctor: "Dr. A", Status: status,
	})
	require.NoError(t, err)
}

func record(t *testing.T, store *kvstore.Store, email, date, event, status string) {
	t.Helper()
	_, err := store.MedicalRecords().Add(context.Background(), model.NewMedicalRecord{
		PatientEmail: email, Date: date, Event: event, Doctor: "Dr. A", Status: status,
	})
	require.NoError(t, err)
}

func TestPatientStats_Empty(t *testing.T) {
	svc, _, _ := newTestService(t)

	stats, err := svc.GetPatientStats(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, &model.PatientStats{
		NextAppointment: model.NoAppointmentScheduled,
		LastCheckup:     model.NoCheckupRecords,
	}, stats)
}

func TestPatientStats_NextAppointment(t *testing.T) {
	svc, store, _ := newTestService(t)

	book(t, store, "a@x.com", "2024-07-01", model.AppointmentStatusScheduled)
	book(t, store, "a@x.com", "2024-06-20", model.AppointmentStatusScheduled)
	book(t, store, "a@x.com", "2024-06-16", model.AppointmentStatusCancelled)
	book(t, store, "a@x.com", "2024-06-01", model.AppointmentStatusScheduled)
	book(t, store, "a@x.com", "not a date", model.AppointmentStatusScheduled)
	book(t, store, "b@x.com", "2024-06-17", model.AppointmentStatusScheduled)

	stats, err := svc.GetPatientStats(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-20", stats.NextAppointment)
	assert.Equal(t, 2, stats.UpcomingAppointmentsCount)
}

func TestPatientStats_TodayAtMidnightIsPast(t *testing.T) {
	svc, store, _ := newTestService(t)
	book(t, store, "a@x.com", "2024-06-15", model.AppointmentStatusScheduled)
	book(t, store, "a@x.com", "2024-06-15T15:30", model.AppointmentStatusScheduled)

	stats, err := svc.GetPatientStats(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15T15:30", stats.NextAppointment)
	assert.Equal(t, 1, stats.UpcomingAppointmentsCount)
}

func TestPatientStats_LastCheckupAndCounts(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	record(t, store, "a@x.com", "2024-01-10", "Routine Checkup", model.RecordStatusCompleted)
	record(t, store, "a@x.com", "2024-03-05", "Blood work", model.RecordStatusPending)
	record(t, store, "a@x.com", "2024-02-20", "Follow-up CHECK", model.RecordStatusCompleted)
	record(t, store, "a@x.com", "garbage", "checkup", model.RecordStatusCompleted)

	for _, name := range []string{"A", "B", "C"} {
		_, err := store.Prescriptions().Add(ctx, model.NewPrescription{PatientEmail: "a@x.com", Name: name, Remaining: 0})
		require.NoError(t, err)
	}

	stats, err := svc.GetPatientStats(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20", stats.LastCheckup)
	assert.Equal(t, 4, stats.TotalRecords)
	assert.Equal(t, 3, stats.ActivePrescriptions)
}

func TestPatientStats_OnlyUnparseableCheckup(t *testing.T) {
	svc, store, _ := newTestService(t)
	record(t, store, "a@x.com", "someday", "checkup", model.RecordStatusCompleted)

	stats, err := svc.GetPatientStats(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "someday", stats.LastCheckup)
}

func TestDoctorStats(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com"} {
		_, err := store.Patients().Add(ctx, model.Patient{Email: email, Name: email})
		require.NoError(t, err)
	}
	book(t, store, "a@x.com", "2024-06-15", model.AppointmentStatusScheduled)
	book(t, store, "b@x.com", "2024-06-15", model.AppointmentStatusCancelled)
	book(t, store, "b@x.com", "2024-06-15T09:00", model.AppointmentStatusScheduled)
	book(t, store, "b@x.com", "2024-06-16", model.AppointmentStatusScheduled)
	record(t, store, "a@x.com", "2024-06-01", "X-ray", model.RecordStatusPending)
	record(t, store, "b@x.com", "2024-06-02", "MRI", model.RecordStatusCompleted)

	stats, err := svc.GetDoctorStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.DoctorStats{TotalPatients: 2, TodayAppointments: 2, PendingReviews: 1}, stats)
}

func TestStats_CorruptData(t *testing.T) {
	svc, _, mem := newTestService(t)
	require.NoError(t, mem.Set(context.Background(), kvstore.KeyAppointments, "[{"))

	_, err := svc.GetPatientStats(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCorruptData))

	_, err = svc.GetDoctorStats(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCorruptData))
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-06-15T10:30", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-06-15T10:30:05", time.Date(2024, 6, 15, 10, 30, 5, 0, time.UTC), true},
		{"2024-06-15T10:30:00.500Z", time.Date(2024, 6, 15, 10, 30, 0, 500_000_000, time.UTC), true},
		{"2024-06-15T10:30:00+02:00", time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC), true},
		{"tomorrow", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseDate(tc.in, time.UTC)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "got %s", got)
			}
		})
	}
}
