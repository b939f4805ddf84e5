package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/inspekta-io/inspekta/internal/domain"
)

// maxBodyBytes caps request bodies. Signed PDFs arrive base64 encoded, so
// the ceiling sits above the raw artifact repair limit.
const maxBodyBytes = 64 << 20

// respondJSON writes a success envelope with the given payload.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    payload,
	})
}

// decodeJSON parses the request body into dst, rejecting unknown fields
// and oversized payloads.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("handler.decode", "request body is required")
		}
		return domain.Invalid("handler.decode", "request body is not valid JSON")
	}
	return nil
}
