package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(o domain.Outcome) int {
	switch o {
	case domain.OutcomeCreated:
		return http.StatusCreated
	case domain.OutcomeNotFound:
		return http.StatusNotFound
	case domain.OutcomeInvalid:
		return http.StatusBadRequest
	case domain.OutcomeFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// writeEnvelope writes env with the status its outcome maps to. Failed
// envelopes are logged with their cause.
func writeEnvelope(w http.ResponseWriter, r *http.Request, logg *logger.Logger, env domain.Envelope) {
	if env.Outcome == domain.OutcomeFailed && logg != nil {
		logg.Error(r.Context(), env.Error, env.Cause)
	}
	writeJSON(w, statusFor(env.Outcome), env)
}

// decodeFields reads a JSON object body. An empty body is an empty object.
func decodeFields(r *http.Request) (domain.Fields, error) {
	var f domain.Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Fields{}, nil
		}
		return nil, fmt.Errorf("%w: invalid JSON body: %w", domain.ErrBadRequest, err)
	}
	if f == nil {
		f = domain.Fields{}
	}
	return f, nil
}
