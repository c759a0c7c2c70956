package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/popdyn/pkg/errors"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDimensions, errors.ErrCodeInvalidWeight,
		errors.ErrCodeInvalidGroupBy, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPanel,
		errors.ErrCodeInvalidDataset:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFromContext(r.Context()).Error("failed to encode response", "err", err)
	}
}

func writeBytes(w http.ResponseWriter, r *http.Request, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		loggerFromContext(r.Context()).Debug("failed to write response", "err", err)
	}
}

// writeError renders err as an error envelope. Errors without a code are
// reported as internal errors without exposing their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)

	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("internal error", "err", err)
		if errors.GetCode(err) == "" {
			msg = "internal error"
		}
	}
	writeJSON(w, r, status, errorBody{
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

const maxBodyBytes = 8 << 20
