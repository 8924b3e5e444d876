package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/logging"
)

// maxBodyBytes caps request bodies; saved projects carry whole source files.
const maxBodyBytes = 5 << 20

// SuccessResponse is the envelope of every successful call.
type SuccessResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every failed call.
type ErrorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// statusFor maps an error code to the HTTP status returned to clients.
func statusFor(code string) int {
	switch code {
	case apperr.CodeBadRequest, apperr.CodeConflict, apperr.CodeInvalidCredentials, apperr.CodeTokenExpired:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeUnauthorized, apperr.CodeTokenInvalid:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated answers 201, the status every successful operation returns.
func writeCreated(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, SuccessResponse{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// writeError translates err into the error envelope. Server-side failures
// are logged with their cause and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	status := statusFor(code)

	message := err.Error()
	switch {
	case code == apperr.CodeUnauthorized || code == apperr.CodeTokenInvalid:
		message = "Unauthorized !"
	case code == apperr.CodeDeliveryFailed:
		logging.LogError(r.Context(), h.logger, "email delivery failed", err)
		message = "Failed to send email"
	case status >= http.StatusInternalServerError:
		logging.LogError(r.Context(), h.logger, "request failed", err)
		message = "Internal server error"
	}

	writeJSON(w, status, ErrorResponse{Status: status, Error: message})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return apperr.New(apperr.CodeBadRequest, "Invalid request body")
	}
	return nil
}
