package model

const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

type RegisterRequest struct {
	Email      string    `json:"email" validate:"required,email"`
	FullName   string    `json:"fullName" validate:"required"`
	Role       string    `json:"role" validate:"required,oneof=doctor patient"`
	Password   string    `json:"password,omitempty" validate:"omitempty,min=8"`
	FaceImage  string    `json:"faceImage,omitempty"`
	Descriptor []float64 `json:"descriptor,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

type FaceLoginRequest struct {
	Descriptor []float64 `json:"descriptor" validate:"required,min=1"`
}

// Session is what a successful register or login hands back.
type Session struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Token string `json:"token,omitempty"`
}
