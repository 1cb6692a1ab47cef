package patient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository/kvstore"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func newTestService(t *testing.T) (*Service, *recordingPublisher, *kvstore.Store) {
	t.Helper()
	store := kvstore.New(kv.NewMemoryStore())
	pub := &recordingPublisher{}
	svc := NewService(store.Patients(), store, pub, logger.Nop())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc, pub, store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)

	p, inserted, err := svc.Register(ctx, model.Patient{Email: "a@x.com", Name: "Alice"})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "2024-03-01T09:30:00.000Z", p.RegisteredAt)

	p, inserted, err = svc.Register(ctx, model.Patient{Email: "a@x.com", Name: "Other", RegisteredAt: "x"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "Alice", p.Name)

	assert.Equal(t, []string{model.EventPatientCreated}, pub.events)
}

func TestRegister_Validates(t *testing.T) {
	svc, pub, _ := newTestService(t)

	_, _, err := svc.Register(context.Background(), model.Patient{Email: "not-an-email", Name: "Alice"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
	assert.Empty(t, pub.events)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "nobody@x.com")
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestUpdateAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, _, err := svc.Register(ctx, model.Patient{Email: "a@x.com", Name: "Alice"})
	require.NoError(t, err)

	name := "Alice Smith"
	require.NoError(t, svc.Update(ctx, "a@x.com", &model.UpdatePatientRequest{Name: &name}))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Alice Smith", all[0].Name)

	bad := -3
	err = svc.Update(ctx, "a@x.com", &model.UpdatePatientRequest{Age: &bad})
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)

	_, _, err := svc.Register(ctx, model.Patient{Email: "a@x.com", Name: "Alice"})
	require.NoError(t, err)
	require.NoError(t, svc.ClearAll(ctx))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Contains(t, pub.events, model.EventStoreCleared)
}

func TestUpdate_UnknownEmailEmitsNothing(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)

	name := "Bob"
	require.NoError(t, svc.Update(ctx, "nobody@x.com", &model.UpdatePatientRequest{Name: &name}))
	assert.Empty(t, pub.events)

	_, _, err := svc.Register(ctx, model.Patient{Email: "a@x.com", Name: "Alice"})
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, "a@x.com", &model.UpdatePatientRequest{Name: &name}))
	assert.Equal(t, []string{model.EventPatientCreated, model.EventPatientUpdated}, pub.events)
}
