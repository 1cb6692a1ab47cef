package model

type Prescription struct {
	ID             string `json:"id"`
	PatientEmail   string `json:"patientEmail"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Remaining      int    `json:"remaining"`
	PrescribedBy   string `json:"prescribedBy"`
	PrescribedDate string `json:"prescribedDate"`
}

type NewPrescription struct {
	PatientEmail   string `json:"patientEmail" validate:"required,email"`
	Name           string `json:"name" validate:"required"`
	Dosage         string `json:"dosage" validate:"required"`
	Frequency      string `json:"frequency" validate:"required"`
	Remaining      int    `json:"remaining" validate:"gte=0"`
	PrescribedBy   string `json:"prescribedBy" validate:"required"`
	PrescribedDate string `json:"prescribedDate" validate:"required"`
}
