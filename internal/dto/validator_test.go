package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionRequest_Role(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		req  CreateSessionRequest
		tag  string
	}{
		{name: "predefined", req: CreateSessionRequest{Role: "Data Analyst"}},
		{name: "other with custom role", req: CreateSessionRequest{Role: OtherRole, CustomRole: "Game Developer"}},
		{name: "placeholder", req: CreateSessionRequest{Role: "Select a tech role"}, tag: "role"},
		{name: "free text", req: CreateSessionRequest{Role: "Game Developer"}, tag: "role"},
		{name: "missing", req: CreateSessionRequest{}, tag: "required"},
		{name: "other without custom role", req: CreateSessionRequest{Role: OtherRole}, tag: "required_if"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.tag == "" {
				assert.NoError(t, err)
				return
			}
			var ve validator.ValidationErrors
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.tag, ve[0].Tag())
		})
	}
}
