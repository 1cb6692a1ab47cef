package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-portal/pkg/errors"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=doctor patient"`
	Note  string `json:"note,omitempty"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sample{Email: "a@x.com", Role: "doctor"}))

	err := v.Validate(sample{Email: "nope", Role: "nurse"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "role must be one of: doctor patient")

	err = v.Validate(&sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}
