package model

// Patient is keyed by email. Only the first registration for an email is kept.
type Patient struct {
	Email        string  `json:"email" validate:"required,email"`
	Name         string  `json:"name" validate:"required"`
	Age          *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	RegisteredAt string  `json:"registeredAt"`
}

type UpdatePatientRequest struct {
	Name         *string `json:"name"`
	Age          *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	RegisteredAt *string `json:"registeredAt"`
}

// Apply shallow-merges the non-nil fields into p.
func (r *UpdatePatientRequest) Apply(p *Patient) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Age != nil {
		age := *r.Age
		p.Age = &age
	}
	if r.Phone != nil {
		phone := *r.Phone
		p.Phone = &phone
	}
	if r.Address != nil {
		address := *r.Address
		p.Address = &address
	}
	if r.RegisteredAt != nil {
		p.RegisteredAt = *r.RegisteredAt
	}
}
