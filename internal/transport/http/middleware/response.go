package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/learninghub-api/internal/domain"
)

// writeJSONError writes a failure envelope with the correct Content-Type.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.Envelope{Error: msg})
}
