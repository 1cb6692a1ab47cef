package prescription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository/kvstore"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
)

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	store := kvstore.New(kv.NewMemoryStore())
	svc := NewService(store.Prescriptions(), messaging.NopPublisher{}, nil)

	p, err := svc.Create(ctx, model.NewPrescription{
		PatientEmail:   "a@x.com",
		Name:           "Lisinopril",
		Dosage:         "10mg",
		Frequency:      "daily",
		Remaining:      30,
		PrescribedBy:   "Dr. Smith",
		PrescribedDate: "2024-01-10",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	mine, err := svc.List(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := svc.List(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Empty(t, other)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_Invalid(t *testing.T) {
	store := kvstore.New(kv.NewMemoryStore())
	svc := NewService(store.Prescriptions(), nil, nil)

	_, err := svc.Create(context.Background(), model.NewPrescription{PatientEmail: "a@x.com", Remaining: -1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}
