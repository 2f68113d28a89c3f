package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError traduce los errores del dominio a códigos HTTP
func writeError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Error interno"

	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrQuotationNotFound):
		status, message = http.StatusNotFound, "Cotización no encontrada"
	case errors.Is(err, model.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Credenciales inválidas"
	case errors.Is(err, model.ErrSequencerUnavailable):
		status, message = http.StatusServiceUnavailable, "Numeración de cotizaciones no disponible, intenta de nuevo"
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"status":     status,
		"request_id": RequestIDFromContext(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Error procesando la solicitud")
	} else {
		entry.Warn("Solicitud rechazada")
	}

	writeJSON(w, status, errorResponse{Error: message, RequestID: RequestIDFromContext(r.Context())})
}

// decodeJSON rechaza campos desconocidos y cuerpos con más de un documento
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", model.ErrInvalidInput, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: request body must contain a single JSON object", model.ErrInvalidInput)
	}
	return nil
}
