package medical

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
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := kvstore.New(kv.NewMemoryStore())
	svc := NewService(store.MedicalRecords(), messaging.NopPublisher{}, logger.Nop())
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC) }
	return svc
}

func validRecord() model.NewMedicalRecord {
	return model.NewMedicalRecord{
		PatientEmail: "a@x.com",
		Date:         "2024-05-01",
		Event:        "Annual checkup",
		Doctor:       "Dr. Smith",
		Status:       model.RecordStatusPending,
	}
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	rec, err := svc.Create(ctx, validRecord())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)

	mine, err := svc.List(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_RequiresFields(t *testing.T) {
	svc := newTestService(t)
	req := validRecord()
	req.Event = ""

	_, err := svc.Create(context.Background(), req)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	rec, err := svc.Create(ctx, validRecord())
	require.NoError(t, err)

	done := model.RecordStatusCompleted
	require.NoError(t, svc.Update(ctx, rec.ID, &model.UpdateMedicalRecordRequest{Status: &done}))

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusCompleted, all[0].Status)
}

func TestAttachFile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	rec, err := svc.Create(ctx, validRecord())
	require.NoError(t, err)

	file, err := svc.AttachFile(ctx, rec.ID, "report.txt", "text/plain", []byte("hello"), "Dr. Smith")
	require.NoError(t, err)
	assert.Equal(t, int64(5), file.Size)
	assert.Equal(t, "data:text/plain;base64,aGVsbG8=", file.Data)
	assert.Equal(t, "2024-05-06T07:08:09.010Z", file.UploadedAt)
	assert.NotEmpty(t, file.ID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all[0].Files, 1)
	assert.Equal(t, "report.txt", all[0].Files[0].Name)
}

func TestAttachFile_UnknownRecord(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AttachFile(context.Background(), "missing", "a.png", "", []byte{1}, "Dr. Smith")
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,", DataURL("image/png", nil))
}

type recordingPublisher struct{ types []string }

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	p.types = append(p.types, eventType)
	return nil
}

func TestUpdate_UnknownIDEmitsNothing(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewService(kvstore.New(kv.NewMemoryStore()).MedicalRecords(), pub, logger.Nop())

	done := model.RecordStatusCompleted
	require.NoError(t, svc.Update(ctx, "missing", &model.UpdateMedicalRecordRequest{Status: &done}))
	assert.Empty(t, pub.types)

	rec, err := svc.Create(ctx, validRecord())
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, rec.ID, &model.UpdateMedicalRecordRequest{Status: &done}))
	assert.Equal(t, []string{model.EventMedicalRecordCreated, model.EventMedicalRecordUpdated}, pub.types)
}
