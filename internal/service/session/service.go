package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/internal/service/event"
	"github.com/jwalitptl/hospital-portal/pkg/auth"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/security"
	"github.com/jwalitptl/hospital-portal/pkg/validator"
)

// Session scalars, stored next to the record collections.
const (
	KeyFaceImage       = "userFaceImage"
	KeyFaceDescriptors = "faceDescriptors"
	KeyRole            = "userRole"
	KeyEmail           = "userEmail"
	KeyName            = "userName"

	passwordHashPrefix = "passwordHash:"
)

type Service struct {
	kv        kv.Store
	patients  repository.PatientRepository
	hasher    security.PasswordHasher
	tokens    auth.JWTService
	events    *event.Emitter
	logger    *logger.Logger
	validator validator.Validator
	now       func() time.Time

	// registerMu makes the existing-password check and the write one step
	registerMu sync.Mutex
}

func NewService(store kv.Store, patients repository.PatientRepository, hasher security.PasswordHasher,
	tokens auth.JWTService, publisher messaging.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		kv:        store,
		patients:  patients,
		hasher:    hasher,
		tokens:    tokens,
		events:    event.NewEmitter(publisher, log),
		logger:    log,
		validator: validator.New(),
		now:       time.Now,
	}
}

// Register records the signed-up user as the current session. Descriptors and
// images are stored as given, unencrypted. An email that already has a
// password cannot be registered again.
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (*model.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	_, hasPassword, err := s.kv.Get(ctx, passwordHashPrefix+req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to read password hash: %w", err)
	}
	if hasPassword {
		return nil, errors.Conflict("email already registered", nil)
	}

	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, errors.BadRequest("invalid password", err)
		}
		if err := s.kv.Set(ctx, passwordHashPrefix+req.Email, hash); err != nil {
			return nil, fmt.Errorf("failed to store password hash: %w", err)
		}
	}

	if req.FaceImage != "" {
		if err := s.kv.Set(ctx, KeyFaceImage, req.FaceImage); err != nil {
			return nil, fmt.Errorf("failed to store face image: %w", err)
		}
	}
	if len(req.Descriptor) > 0 {
		data, err := json.Marshal([][]float64{req.Descriptor})
		if err != nil {
			return nil, fmt.Errorf("failed to encode descriptor: %w", err)
		}
		if err := s.kv.Set(ctx, KeyFaceDescriptors, string(data)); err != nil {
			return nil, fmt.Errorf("failed to store descriptor: %w", err)
		}
	}

	if err := s.setScalars(ctx, map[string]string{
		KeyRole:  req.Role,
		KeyEmail: req.Email,
		KeyName:  req.FullName,
	}); err != nil {
		return nil, err
	}

	if req.Role == model.RolePatient {
		patient := model.Patient{
			Email:        req.Email,
			Name:         req.FullName,
			RegisteredAt: s.now().UTC().Format(model.TimestampLayout),
		}
		inserted, err := s.patients.Add(ctx, patient)
		if err != nil {
			return nil, fmt.Errorf("failed to add patient: %w", err)
		}
		if inserted {
			s.events.Emit(ctx, model.EventPatientCreated, patient.Email, patient.Email, patient)
		}
	}

	s.logger.WithContext(ctx).Info("user registered", "email", req.Email, "role", req.Role,
		"face", len(req.Descriptor) > 0)
	return s.issue(req.Email, req.Role, req.FullName)
}

// Login derives the role from the email address. The password is only
// checked when one was set at registration.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, ok, err := s.kv.Get(ctx, passwordHashPrefix+req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to read password hash: %w", err)
	}
	if ok {
		if err := s.hasher.Compare(hash, req.Password); err != nil {
			return nil, errors.Unauthorized(err)
		}
	}

	role := model.RolePatient
	if strings.Contains(req.Email, "doctor") {
		role = model.RoleDoctor
	}

	name, err := s.nameFor(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.setScalars(ctx, map[string]string{KeyRole: role, KeyEmail: req.Email}); err != nil {
		return nil, err
	}
	return s.issue(req.Email, role, name)
}

// FaceLogin compares the descriptor with the first registered one.
func (s *Service) FaceLogin(ctx context.Context, req model.FaceLoginRequest) (*model.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	raw, ok, err := s.kv.Get(ctx, KeyFaceDescriptors)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptors: %w", err)
	}
	if !ok {
		return nil, errors.NotFound("registered face", nil)
	}
	var stored [][]float64
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, errors.NewCorruptData(KeyFaceDescriptors, err)
	}
	if len(stored) == 0 {
		return nil, errors.NotFound("registered face", nil)
	}

	distance, err := euclideanDistance(req.Descriptor, stored[0])
	if err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	if distance >= FaceMatchThreshold {
		s.logger.WithContext(ctx).Info("face not recognized", "distance", distance)
		return nil, errors.Unauthorized(fmt.Errorf("face distance %.3f", distance))
	}

	role, err := s.get(ctx, KeyRole)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = model.RolePatient
	}
	email, err := s.get(ctx, KeyEmail)
	if err != nil {
		return nil, err
	}
	name, err := s.get(ctx, KeyName)
	if err != nil {
		return nil, err
	}
	return s.issue(email, role, name)
}

func (s *Service) ValidateToken(token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) issue(email, role, name string) (*model.Session, error) {
	token, err := s.tokens.GenerateToken(email, role, name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.Session{Email: email, Name: name, Role: role, Token: token}, nil
}

// nameFor looks email up among patients, then in the current session.
func (s *Service) nameFor(ctx context.Context, email string) (string, error) {
	p, err := s.patients.Get(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to get patient: %w", err)
	}
	if p != nil {
		return p.Name, nil
	}

	current, err := s.get(ctx, KeyEmail)
	if err != nil || current != email {
		return "", err
	}
	return s.get(ctx, KeyName)
}

func (s *Service) get(ctx context.Context, key string) (string, error) {
	v, _, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

func (s *Service) setScalars(ctx context.Context, values map[string]string) error {
	for key, v := range values {
		if err := s.kv.Set(ctx, key, v); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}
	return nil
}
