package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ForgotPassword e-mails a reset link valid for ten minutes.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreated(w, "Email send successfully", nil)
}

// ResetPassword consumes the reset token from the link and sets the new password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.ConfirmReset(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "token"), req.NewPassword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreated(w, "Password Updated Successfully", user)
}
