package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	payload := map[string]any{"count": 1, "name": "ООО Автозвук"}

	first := httptest.NewRecorder()
	WriteJSON(first, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, payload)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "application/json; charset=utf-8", first.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", first.Header().Get("Cache-Control"))
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &decoded))
	require.Equal(t, "ООО Автозвук", decoded["name"])

	t.Run("same body same etag", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, payload)
		require.Equal(t, etag, rec.Header().Get("ETag"))
	})

	t.Run("matching if-none-match", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("If-None-Match", `"other", `+etag)

		rec := httptest.NewRecorder()
		WriteJSON(rec, req, http.StatusOK, payload)
		require.Equal(t, http.StatusNotModified, rec.Code)
		require.Empty(t, rec.Body.Bytes())
		require.Equal(t, etag, rec.Header().Get("ETag"))
	})

	t.Run("stale if-none-match", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("If-None-Match", `"stale"`)

		rec := httptest.NewRecorder()
		WriteJSON(rec, req, http.StatusOK, map[string]any{"count": 2})
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEqual(t, etag, rec.Header().Get("ETag"))
	})

	t.Run("non 200 has no etag", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusAccepted, payload)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Empty(t, rec.Header().Get("ETag"))
	})
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{header: "", want: false},
		{header: "*", want: true},
		{header: `"abc"`, want: true},
		{header: `W/"abc"`, want: true},
		{header: `"x", "abc"`, want: true},
		{header: `"abcd"`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			require.Equal(t, tt.want, etagMatches(tt.header, `"abc"`))
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "organization not found")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"organization not found"}`, rec.Body.String())
}

func TestWriteJSON_NilRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("Cache-Control", "no-store")
	WriteJSON(rec, nil, http.StatusOK, map[string]string{"status": "ok"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("ETag"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
