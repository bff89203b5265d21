package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/loyaltyworks/loyalty-backend/pkg/errors"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Siti","phone":"+60123456789"}`))
		var dest samplePayload
		require.NoError(t, DecodeJSONBody(r, &dest))
		assert.Equal(t, "Siti", dest.Name)
	})

	t.Run("missing field reports json tag name", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Siti"}`))
		var dest samplePayload
		err := DecodeJSONBody(r, &dest)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		details, ok := typed.Details().(map[string]string)
		require.True(t, ok)
		assert.Contains(t, details, "phone")
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Siti","phone":"x","tier":"platinum"}`))
		var dest samplePayload
		err := DecodeJSONBody(r, &dest)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	})
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=25", nil)
	got, err := ParseQueryInt(r, "limit", 50, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 50, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	r = httptest.NewRequest("GET", "/?limit=abc", nil)
	_, err = ParseQueryInt(r, "limit", 50, 1, 200)
	require.Error(t, err)

	r = httptest.NewRequest("GET", "/?limit=9000", nil)
	_, err = ParseQueryInt(r, "limit", 50, 1, 200)
	require.Error(t, err)
}
