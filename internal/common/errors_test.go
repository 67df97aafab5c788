package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "no details",
			err:  NewValidationError(),
			want: "validation failed",
		},
		{
			name: "single field",
			err:  NewFieldError("title", "must not be empty"),
			want: "validation failed: title: must not be empty",
		},
		{
			name: "multiple fields",
			err: NewValidationError(
				FieldError{Field: "name", Message: "too short"},
				FieldError{Field: "email", Message: "invalid format"},
			),
			want: "validation failed: name: too short; email: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
