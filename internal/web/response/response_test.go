package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderError(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(rec, http.StatusNotFound, errors.New("field not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Code)
	assert.Equal(t, "field not found", body.Message)
}

func TestRenderErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderErrorWithDetails(rec, http.StatusTeapot, errors.New("x"), map[string]interface{}{"token": "a@b"})

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "client_error", body.Code)
	assert.Equal(t, "a@b", body.Details["token"])
}

func TestErrorCodeFromStatus(t *testing.T) {
	assert.Equal(t, "bad_request", errorCodeFromStatus(http.StatusBadRequest))
	assert.Equal(t, "server_error", errorCodeFromStatus(http.StatusBadGateway))
	assert.Equal(t, "internal_server_error", errorCodeFromStatus(http.StatusInternalServerError))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Token *string `json:"token"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"a@b"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	require.NotNil(t, dst.Token)
	assert.Equal(t, "a@b", *dst.Token)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.Error(t, DecodeJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	err := DecodeJSON(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
