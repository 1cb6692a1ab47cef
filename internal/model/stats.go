package model

const (
	NoAppointmentScheduled = "None scheduled"
	NoCheckupRecords       = "No records"
)

type PatientStats struct {
	NextAppointment           string `json:"nextAppointment"`
	ActivePrescriptions       int    `json:"activePrescriptions"`
	LastCheckup               string `json:"lastCheckup"`
	TotalRecords              int    `json:"totalRecords"`
	UpcomingAppointmentsCount int    `json:"upcomingAppointmentsCount"`
}

// DoctorStats are global counts, not scoped to one doctor.
type DoctorStats struct {
	TotalPatients     int `json:"totalPatients"`
	TodayAppointments int `json:"todayAppointments"`
	PendingReviews    int `json:"pendingReviews"`
}
