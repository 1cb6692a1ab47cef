package model

import "time"

const (
	EventPatientCreated         = "patient.created"
	EventPatientUpdated         = "patient.updated"
	EventMedicalRecordCreated   = "medical_record.created"
	EventMedicalRecordUpdated   = "medical_record.updated"
	EventMedicalRecordFileAdded = "medical_record.file_added"
	EventPrescriptionCreated    = "prescription.created"
	EventAppointmentCreated     = "appointment.created"
	EventAppointmentUpdated     = "appointment.updated"
	EventAppointmentDeleted     = "appointment.deleted"
	EventStoreCleared           = "store.cleared"
)

// AllEventTypes lists every channel a worker can subscribe to.
var AllEventTypes = []string{
	EventPatientCreated,
	EventPatientUpdated,
	EventMedicalRecordCreated,
	EventMedicalRecordUpdated,
	EventMedicalRecordFileAdded,
	EventPrescriptionCreated,
	EventAppointmentCreated,
	EventAppointmentUpdated,
	EventAppointmentDeleted,
	EventStoreCleared,
}

type Event struct {
	EventType    string      `json:"event_type"`
	EntityID     string      `json:"entity_id,omitempty"`
	PatientEmail string      `json:"patient_email,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	OccurredAt   time.Time   `json:"occurred_at"`
}
