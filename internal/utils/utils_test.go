package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ROAMMATE_BACK-END/internal/dto"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-04-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-04-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2025-04-01", FormatDate(d))
	assert.Equal(t, "2025-04-01T08:00:00Z", FormatTimestamp(d))

	_, err = ParseDate("01/04/2025")
	assert.Error(t, err)
}

func TestDecodeJSONRequest(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	w := httptest.NewRecorder()
	require.NoError(t, DecodeJSONRequest(w, r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	w = httptest.NewRecorder()
	require.Error(t, DecodeJSONRequest(w, r, &dst))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request body", body.Error)
	assert.Equal(t, "request body is empty", body.Message)
}

func TestValidationMessage(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required,min=2"`
		Email string `json:"email" validate:"required,email"`
	}
	err := ValidateStruct(payload{Name: "A", Email: "nope"})
	require.Error(t, err)
	assert.Equal(t, "name must be at least 2; email must be a valid email", ValidationMessage(err))
}

func TestAuthUserContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithAuthUser(context.Background(), AuthUser{UserID: "u1", SessionID: "s1"})
	id, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewStatusRecorder(w)
	WriteErrorResponse(rec, http.StatusTeapot, "Teapot", "short and stout")
	assert.Equal(t, http.StatusTeapot, rec.Status)
	assert.Positive(t, rec.Bytes)

	_, _, err := rec.Hijack()
	assert.Error(t, err)
}
