package model

const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusCompleted = "completed"
)

// Appointment carries a copy of the patient's name taken at booking time.
type Appointment struct {
	ID           string `json:"id"`
	PatientEmail string `json:"patientEmail"`
	PatientName  string `json:"patientName"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Doctor       string `json:"doctor"`
	Type         string `json:"type"`
	Status       string `json:"status"`
}

type NewAppointment struct {
	PatientEmail string `json:"patientEmail" validate:"required,email"`
	PatientName  string `json:"patientName"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time" validate:"required"`
	Doctor       string `json:"doctor" validate:"required"`
	Type         string `json:"type"`
	Status       string `json:"status"`
}

type UpdateAppointmentRequest struct {
	PatientEmail *string `json:"patientEmail" validate:"omitempty,email"`
	PatientName  *string `json:"patientName"`
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	Doctor       *string `json:"doctor"`
	Type         *string `json:"type"`
	Status       *string `json:"status"`
}

func (r *UpdateAppointmentRequest) Apply(a *Appointment) {
	if r.PatientEmail != nil {
		a.PatientEmail = *r.PatientEmail
	}
	if r.PatientName != nil {
		a.PatientName = *r.PatientName
	}
	if r.Date != nil {
		a.Date = *r.Date
	}
	if r.Time != nil {
		a.Time = *r.Time
	}
	if r.Doctor != nil {
		a.Doctor = *r.Doctor
	}
	if r.Type != nil {
		a.Type = *r.Type
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
}
