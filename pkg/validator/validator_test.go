package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	SchoolID string `json:"schoolId" validate:"required"`
	Password string `json:"password" validate:"min=8,max=72"`
}

func TestValidate(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		err := Validate(sampleRequest{
			Email:    "student@asu.edu",
			SchoolID: "asu",
			Password: "Sunburn1!",
		})
		assert.NoError(t, err)
	})

	t.Run("missing fields produce per-field messages", func(t *testing.T) {
		err := Validate(sampleRequest{Password: "short"})
		require.Error(t, err)

		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)

		fields := valErr.Fields()
		assert.Equal(t, "is required", fields["Email"])
		assert.Equal(t, "is required", fields["SchoolID"])
		assert.Equal(t, "must be at least 8 characters", fields["Password"])
	})

	t.Run("invalid email", func(t *testing.T) {
		err := Validate(sampleRequest{
			Email:    "not-an-email",
			SchoolID: "asu",
			Password: "Sunburn1!",
		})
		require.Error(t, err)

		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "must be a valid email address", valErr.Fields()["Email"])
		assert.Contains(t, valErr.Error(), "Email")
	})
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(
			`{"email":"student@asu.edu","schoolId":"asu","password":"Sunburn1!"}`,
		))

		var dst sampleRequest
		require.NoError(t, DecodeAndValidate(req, &dst))
		assert.Equal(t, "asu", dst.SchoolID)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{`))

		var dst sampleRequest
		err := DecodeAndValidate(req, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode request body")
	})

	t.Run("valid json failing validation", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"x"}`))

		var dst sampleRequest
		err := DecodeAndValidate(req, &dst)
		require.Error(t, err)

		var valErr *ValidationError
		assert.ErrorAs(t, err, &valErr)
	})
}
