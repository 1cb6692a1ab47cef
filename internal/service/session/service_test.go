package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository/kvstore"
	"github.com/jwalitptl/hospital-portal/pkg/auth"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/security"
)

type fixture struct {
	svc   *Service
	mem   *kv.MemoryStore
	store *kvstore.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mem := kv.NewMemoryStore()
	store := kvstore.New(mem)
	svc := NewService(mem, store.Patients(), security.NewBcryptHasher(bcrypt.MinCost),
		auth.NewJWTService("test-secret", "portal", time.Hour), messaging.NopPublisher{}, logger.Nop())
	return fixture{svc: svc, mem: mem, store: store}
}

func descriptor(base float64) []float64 {
	d := make([]float64, 128)
	for i := range d {
		d[i] = base
	}
	return d
}

func TestRegister_PatientWithFace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.Register(ctx, model.RegisterRequest{
		Email: "alice@x.com", FullName: "Alice", Role: model.RolePatient,
		FaceImage: "data:image/jpeg;base64,AAA", Descriptor: descriptor(0.1),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", sess.Email)
	assert.Equal(t, model.RolePatient, sess.Role)
	assert.NotEmpty(t, sess.Token)

	for key, want := range map[string]string{
		KeyRole: model.RolePatient, KeyEmail: "alice@x.com", KeyName: "Alice", KeyFaceImage: "data:image/jpeg;base64,AAA",
	} {
		got, ok, err := f.mem.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	p, err := f.store.Patients().Get(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Alice", p.Name)
	assert.NotEmpty(t, p.RegisteredAt)
}

func TestRegister_DoctorIsNotAPatient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Register(ctx, model.RegisterRequest{Email: "house@x.com", FullName: "Dr. House", Role: model.RoleDoctor})
	require.NoError(t, err)

	all, err := f.store.Patients().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRegister_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), model.RegisterRequest{Email: "a@x.com", FullName: "A", Role: "nurse"})
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))

	_, err = f.svc.Register(context.Background(), model.RegisterRequest{Email: "a@x.com", FullName: "A", Role: model.RolePatient, Password: "short"})
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestLogin_RoleFromEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.Login(ctx, model.LoginRequest{Email: "doctor.jones@x.com"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, sess.Role)

	sess, err = f.svc.Login(ctx, model.LoginRequest{Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, sess.Role)

	role, _, _ := f.mem.Get(ctx, KeyRole)
	email, _, _ := f.mem.Get(ctx, KeyEmail)
	assert.Equal(t, model.RolePatient, role)
	assert.Equal(t, "bob@x.com", email)

	claims, err := f.svc.ValidateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", claims.Email)
}

func TestLogin_ChecksPasswordWhenSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Register(ctx, model.RegisterRequest{
		Email: "alice@x.com", FullName: "Alice", Role: model.RolePatient, Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "alice@x.com", Password: "wrong-pass"})
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

	sess, err := f.svc.Login(ctx, model.LoginRequest{Email: "alice@x.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.Name)
}

func TestRegister_CannotReplaceExistingPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Register(ctx, model.RegisterRequest{
		Email: "alice@x.com", FullName: "Alice", Role: model.RolePatient, Password: "original-pass",
	})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, model.RegisterRequest{
		Email: "alice@x.com", FullName: "Mallory", Role: model.RoleDoctor, Password: "attacker-pass",
	})
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	_, err = f.svc.Register(ctx, model.RegisterRequest{
		Email: "alice@x.com", FullName: "Mallory", Role: model.RolePatient,
	})
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	_, err = f.svc.Login(ctx, model.LoginRequest{Email: "alice@x.com", Password: "attacker-pass"})
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

	sess, err := f.svc.Login(ctx, model.LoginRequest{Email: "alice@x.com", Password: "original-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.Name)
}

func TestRegister_WithoutPasswordCanRepeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Register(ctx, model.RegisterRequest{
			Email: "alice@x.com", FullName: "Alice", Role: model.RolePatient,
		})
		require.NoError(t, err)
	}
}

func TestFaceLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.FaceLogin(ctx, model.FaceLoginRequest{Descriptor: descriptor(0.1)})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	_, err = f.svc.Register(ctx, model.RegisterRequest{
		Email: "house@x.com", FullName: "Dr. House", Role: model.RoleDoctor, Descriptor: descriptor(0.1),
	})
	require.NoError(t, err)

	// 128 components 0.05 apart give a distance of about 0.566.
	sess, err := f.svc.FaceLogin(ctx, model.FaceLoginRequest{Descriptor: descriptor(0.15)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, sess.Role)
	assert.Equal(t, "house@x.com", sess.Email)
	assert.Equal(t, "Dr. House", sess.Name)

	_, err = f.svc.FaceLogin(ctx, model.FaceLoginRequest{Descriptor: descriptor(0.2)})
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

	_, err = f.svc.FaceLogin(ctx, model.FaceLoginRequest{Descriptor: []float64{0.1, 0.1}})
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestFaceLogin_DefaultsToPatient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.mem.Set(ctx, KeyFaceDescriptors, "[[0,0,0]]"))

	sess, err := f.svc.FaceLogin(ctx, model.FaceLoginRequest{Descriptor: []float64{0, 0, 0.5}})
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, sess.Role)
}

func TestFaceLogin_CorruptDescriptors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.mem.Set(ctx, KeyFaceDescriptors, "not json"))

	_, err := f.svc.FaceLogin(ctx, model.FaceLoginRequest{Descriptor: []float64{0}})
	assert.True(t, errors.IsCode(err, errors.ErrCorruptData))
}

func TestEuclideanDistance(t *testing.T) {
	d, err := euclideanDistance([]float64{0, 0}, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-9)

	_, err = euclideanDistance([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ValidateToken("nope")
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}
