package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSON_WritesStatusHeaderAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]any{"ok": true, "n": 42}

	JSON(rec, http.StatusCreated, payload)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	got := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, true, got["ok"])
	require.Equal(t, float64(42), got["n"])
}

func TestError_WrapsJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusBadRequest, "bad_request", "invalid input")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "bad_request", body.Error)
	require.Equal(t, "invalid input", body.Message)
	require.Empty(t, body.RequestID)
}

func TestErrorWithID_WrapsJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	ErrorWithID(rec, http.StatusUnauthorized, "unauthorized", "no token", "req-123")

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "unauthorized", body.Error)
	require.Equal(t, "req-123", body.RequestID)
}

func TestHelpers_StatusAndCode(t *testing.T) {
	cases := []struct {
		fn     func(http.ResponseWriter, string)
		status int
		code   string
	}{
		{BadRequest, http.StatusBadRequest, "bad_request"},
		{Unauthorized, http.StatusUnauthorized, "unauthorized"},
		{NotFound, http.StatusNotFound, "not_found"},
		{BadGateway, http.StatusBadGateway, "upstream_unavailable"},
		{Internal, http.StatusInternalServerError, "internal"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		c.fn(rec, "msg")
		require.Equal(t, c.status, rec.Code)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, c.code, body.Error)
		require.Equal(t, "msg", body.Message)
	}
}
