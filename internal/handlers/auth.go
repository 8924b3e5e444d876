package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/middleware"
	"github.com/AnshRaj112/devcode-backend/internal/models"
)

// sessionCookieTTL is shorter than the token itself; the header keeps working after it.
const sessionCookieTTL = time.Hour

type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginData is the payload of a successful login.
type LoginData struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Register(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCreated(w, "User Registered Successfully", user)
}

// Login checks credentials, returns a session token and sets it as a cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeCreated(w, "User Login Successfully", LoginData{User: res.User, Token: res.Token})
}

// ValidateUser returns the user behind the presented session token.
func (h *Handler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthorized(apperr.ReasonMissing))
		return
	}
	writeCreated(w, "Valid User", user)
}

// Logout invalidates every session of the user and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthorized(apperr.ReasonMissing))
		return
	}

	if err := h.svc.Logout(r.Context(), user.ID.Hex()); err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeCreated(w, "User logout successfully", nil)
}
