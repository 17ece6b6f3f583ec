package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"sessionId": "cs_test_1"})

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("user not found")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "user not found", resp.Error)
}

func TestValidationError(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Provider string `validate:"required,oneof=google apple facebook"`
		Password string `validate:"required,min=6"`
	}

	tests := []struct {
		name string
		in   req
		want string
	}{
		{
			name: "all fields missing",
			in:   req{},
			want: "field Email is a required field, field Provider is a required field, field Password is a required field",
		},
		{
			name: "bad email and provider",
			in:   req{Email: "not-an-email", Provider: "twitter", Password: "secret1"},
			want: "field Email must be a valid email, field Provider must be one of: google apple facebook",
		},
		{
			name: "short password",
			in:   req{Email: "user@example.com", Provider: "google", Password: "abc"},
			want: "field Password is shorter than 6 characters",
		},
	}

	v := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)

			resp := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.want, resp.Error)
		})
	}
}
