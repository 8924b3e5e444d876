package utils

import (
	"net/mail"
	"strings"
)

const MaxUserNameLength = 64

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

// NormalizeEmail converts email to lowercase for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address is a bare addr-spec such as ann@x.com.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}

	addr, err := mail.ParseAddress(email)
	// ParseAddress also accepts "Name <addr>", which we don't store
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return &ValidationError{Field: "email", Message: "Invalid email"}
	}
	return nil
}

// ValidateUserName validates the display name
// Rules: non-blank, at most 64 characters
func ValidateUserName(userName string) error {
	userName = strings.TrimSpace(userName)

	if userName == "" {
		return &ValidationError{Field: "userName", Message: "User name is required"}
	}

	if len([]rune(userName)) > MaxUserNameLength {
		return &ValidationError{Field: "userName", Message: "User name must be at most 64 characters"}
	}

	return nil
}

// ValidatePassword rejects passwords bcrypt cannot hash.
func ValidatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "Password is required !"}
	}
	if len(password) > MaxPasswordBytes {
		return &ValidationError{Field: "password", Message: "Password must be at most 72 bytes !"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
