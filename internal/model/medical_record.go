package model

const (
	RecordStatusPending   = "pending"
	RecordStatusCompleted = "completed"
)

type MedicalRecord struct {
	ID           string           `json:"id"`
	PatientEmail string           `json:"patientEmail"`
	Date         string           `json:"date"`
	Event        string           `json:"event"`
	Doctor       string           `json:"doctor"`
	Status       string           `json:"status"`
	Notes        string           `json:"notes,omitempty"`
	Files        []FileAttachment `json:"files,omitempty"`
}

// FileAttachment is embedded in its record. Data holds the whole file as a
// base64 data URL, so it is roughly a third larger than Size.
type FileAttachment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	Data       string `json:"data"`
	UploadedBy string `json:"uploadedBy"`
	UploadedAt string `json:"uploadedAt"`
}

type NewMedicalRecord struct {
	PatientEmail string           `json:"patientEmail" validate:"required,email"`
	Date         string           `json:"date" validate:"required"`
	Event        string           `json:"event" validate:"required"`
	Doctor       string           `json:"doctor" validate:"required"`
	Status       string           `json:"status" validate:"required"`
	Notes        string           `json:"notes,omitempty"`
	Files        []FileAttachment `json:"files,omitempty"`
}

type UpdateMedicalRecordRequest struct {
	PatientEmail *string `json:"patientEmail" validate:"omitempty,email"`
	Date         *string `json:"date"`
	Event        *string `json:"event"`
	Doctor       *string `json:"doctor"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

func (r *UpdateMedicalRecordRequest) Apply(rec *MedicalRecord) {
	if r.PatientEmail != nil {
		rec.PatientEmail = *r.PatientEmail
	}
	if r.Date != nil {
		rec.Date = *r.Date
	}
	if r.Event != nil {
		rec.Event = *r.Event
	}
	if r.Doctor != nil {
		rec.Doctor = *r.Doctor
	}
	if r.Status != nil {
		rec.Status = *r.Status
	}
	if r.Notes != nil {
		rec.Notes = *r.Notes
	}
}
