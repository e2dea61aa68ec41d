package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"ambulance-dispatch-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON enforces a single, strictly-known JSON object body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// respondError maps domain sentinels to HTTP statuses. Domain failures
// carry their message through (the UI turns them into toasts); anything
// unrecognized is a 500 with the detail kept server-side.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNoEncontrado):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrTransicionInvalida),
		errors.Is(err, domain.ErrEstadoTerminal),
		errors.Is(err, domain.ErrMiembrosInconsistentes):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAmbulanciaNoDisponible):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
