package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:          http.StatusBadRequest,
	model.ErrCodeMissingField:         http.StatusBadRequest,
	model.ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
	model.ErrCodeEmptyCart:            http.StatusUnprocessableEntity,
	model.ErrCodeAddressIncomplete:    http.StatusUnprocessableEntity,
	model.ErrCodeAddressNotFound:      http.StatusUnprocessableEntity,
	model.ErrCodeProductNotFound:      http.StatusNotFound,
	model.ErrCodeOrderNotFound:        http.StatusNotFound,
	model.ErrCodeSessionNotFound:      http.StatusNotFound,
	model.ErrCodeInvalidStep:          http.StatusConflict,
	model.ErrCodeCheckoutInProgress:   http.StatusConflict,
	model.ErrCodeNoPaymentPending:     http.StatusConflict,
	model.ErrCodeIdempotencyConsumed:  http.StatusConflict,
	model.ErrCodeProcessorUnavailable: http.StatusServiceUnavailable,
	model.ErrCodePaymentCancelled:     http.StatusPaymentRequired,
	model.ErrCodePaymentFailed:        http.StatusPaymentRequired,
	model.ErrCodeVerificationFailed:   http.StatusUnprocessableEntity,
	model.ErrCodeOrderPersistence:     http.StatusInternalServerError,
	model.ErrCodeUnauthorised:         http.StatusUnauthorized,
	model.ErrCodeForbidden:            http.StatusForbidden,
}

func statusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps err to a response. Errors that are not domain errors
// are reported as internal without leaking their text.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusFor(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}
	logger.Error().Err(err).Msg("unexpected error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return true
}

// customerID returns the authenticated customer or writes a 401.
func customerID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (string, bool) {
	id, ok := middleware.CustomerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing customer identity", logger)
		return "", false
	}
	return id, true
}

// pathUUID parses the named path value as a UUID or writes a 400.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}
