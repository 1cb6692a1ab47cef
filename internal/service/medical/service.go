package medical

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/internal/repository"
	"github.com/jwalitptl/hospital-portal/internal/service/event"
	"github.com/jwalitptl/hospital-portal/pkg/errors"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/validator"
)

const defaultMimeType = "application/octet-stream"

type Service struct {
	repo      repository.MedicalRecordRepository
	events    *event.Emitter
	logger    *logger.Logger
	validator validator.Validator
	now       func() time.Time
}

func NewService(repo repository.MedicalRecordRepository, publisher messaging.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		events:    event.NewEmitter(publisher, log),
		logger:    log,
		validator: validator.New(),
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req model.NewMedicalRecord) (*model.MedicalRecord, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	record, err := s.repo.Add(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	s.events.Emit(ctx, model.EventMedicalRecordCreated, record.ID, record.PatientEmail, record)
	return record, nil
}

func (s *Service) List(ctx context.Context, patientEmail string) ([]model.MedicalRecord, error) {
	records, err := s.repo.ListByPatient(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func (s *Service) ListAll(ctx context.Context) ([]model.MedicalRecord, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func (s *Service) Update(ctx context.Context, id string, req *model.UpdateMedicalRecordRequest) error {
	if req == nil {
		return errors.BadRequest("empty update", nil)
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	changed, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if changed {
		s.events.Emit(ctx, model.EventMedicalRecordUpdated, id, "", req)
	}
	return nil
}

// AttachFile embeds raw in the record as a base64 data URL. Size is the raw
// byte count.
func (s *Service) AttachFile(ctx context.Context, recordID, name, mimeType string, raw []byte, uploadedBy string) (*model.FileAttachment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.BadRequest("file name is required", nil)
	}
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	file := model.FileAttachment{
		Name:       name,
		Type:       mimeType,
		Size:       int64(len(raw)),
		Data:       DataURL(mimeType, raw),
		UploadedBy: uploadedBy,
		UploadedAt: s.now().UTC().Format(model.TimestampLayout),
	}

	stored, err := s.repo.AddFile(ctx, recordID, file)
	if err != nil {
		return nil, fmt.Errorf("failed to attach file: %w", err)
	}
	if stored == nil {
		return nil, errors.NotFound("medical record", nil)
	}

	s.logger.WithContext(ctx).Info("file attached",
		"record_id", recordID, "file_id", stored.ID, "size", stored.Size)
	s.events.Emit(ctx, model.EventMedicalRecordFileAdded, recordID, "", map[string]interface{}{
		"fileId": stored.ID,
		"name":   stored.Name,
		"size":   stored.Size,
	})
	return stored, nil
}

func DataURL(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
