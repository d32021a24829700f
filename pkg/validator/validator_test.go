package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type personInput struct {
	UID       string `json:"uid" validate:"max=8"`
	FirstName string `json:"firstName" validate:"required,notblank"`
	LastName  string `json:"lastName" validate:"required,notblank"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		input   personInput
		wantErr string
	}{
		{
			name:  "valid",
			input: personInput{FirstName: "Jan", LastName: "Novak"},
		},
		{
			name:    "missing first name",
			input:   personInput{LastName: "Novak"},
			wantErr: "firstName is required",
		},
		{
			name:    "blank last name",
			input:   personInput{FirstName: "Jan", LastName: "  "},
			wantErr: "lastName must not be blank",
		},
		{
			name:    "uid too long",
			input:   personInput{UID: "123456789", FirstName: "Jan", LastName: "Novak"},
			wantErr: "uid must be at most 8 characters",
		},
		{
			name:    "several violations joined",
			input:   personInput{},
			wantErr: "firstName is required; lastName is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestNotBlankIgnoresNonStrings(t *testing.T) {
	type counter struct {
		Count int `json:"count" validate:"notblank"`
	}

	assert.NoError(t, NewValidator().Validate(counter{}))
	assert.NotPanics(t, func() { NewValidator() })
}
