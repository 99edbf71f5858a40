package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/secunda/directory/internal/api"
)

// WriteJSON encodes v as the response body. Successful responses carry a
// strong ETag derived from the body, and a request whose If-None-Match
// matches it gets 304 Not Modified with no body. Cache-Control: no-cache
// makes clients revalidate every time. A nil r writes the body without an
// ETag.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")

	if status == http.StatusOK && r != nil {
		etag := computeETag(body)
		h.Set("ETag", etag)
		h.Set("Cache-Control", "no-cache")

		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			h.Del("Content-Type")
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError replies with {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(api.ErrorResponse{Error: message})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func computeETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatches implements the weak comparison If-None-Match requires.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
