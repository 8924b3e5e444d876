package services

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/mailer"
	"github.com/AnshRaj112/devcode-backend/internal/models"
	"github.com/AnshRaj112/devcode-backend/pkg/utils"
)

const (
	stageRequest = "request"
	stageConfirm = "confirm"
)

// ResetLink builds the front-end URL carrying the user id and the reset
// token, the token base64url encoded so it survives as one path segment.
func ResetLink(frontendBaseURL, userID, token string) string {
	return strings.TrimRight(frontendBaseURL, "/") + "/reset-password/" + userID + "/" +
		base64.RawURLEncoding.EncodeToString([]byte(token))
}

// DecodeResetToken accepts the token as it appears in a reset link or raw.
func DecodeResetToken(segment string) string {
	segment = strings.TrimSpace(segment)
	if strings.Count(segment, ".") == 2 {
		return segment
	}
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	} {
		if raw, err := enc.DecodeString(segment); err == nil && strings.Count(string(raw), ".") == 2 {
			return string(raw)
		}
	}
	return segment
}

// RequestReset issues a reset token for the account, stores it in place of
// any earlier one and e-mails the link. A delivery failure is returned to the
// caller; the stored token stays.
func (s *Service) RequestReset(ctx context.Context, email string) (err error) {
	defer func() { s.metrics.RecordReset(stageRequest, err) }()

	email = utils.NormalizeEmail(email)
	if email == "" {
		return apperr.New(apperr.CodeBadRequest, "Email is required !")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	userID := user.ID.Hex()

	token, err := s.tokens.Issue(KindReset, userID, "")
	if err != nil {
		return err
	}

	if _, err := s.users.Update(ctx, userID, func(u *models.User) error {
		u.VerificationToken = token
		return nil
	}); err != nil {
		return err
	}

	msg, err := mailer.ResetMessage(user.Email, user.UserName, ResetLink(s.frontendURL, userID, token))
	if err != nil {
		return apperr.New(apperr.CodeDeliveryFailed, "render reset email: %v", err)
	}
	if err := s.notifier.Deliver(ctx, mailer.KindReset, msg); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset requested", "user_id", userID)
	return nil
}

// ConfirmReset sets a new password if token is the reset token currently
// stored for userID and has not expired. The token is cleared in the same
// write, so it works once. All sessions are dropped as well.
func (s *Service) ConfirmReset(ctx context.Context, userID, token, newPassword string) (_ *models.User, err error) {
	defer func() { s.metrics.RecordReset(stageConfirm, err) }()

	userID = strings.TrimSpace(userID)
	token = DecodeResetToken(token)
	if newPassword == "" {
		return nil, apperr.New(apperr.CodeBadRequest, "Password is required !")
	}
	if userID == "" || token == "" {
		return nil, apperr.New(apperr.CodeBadRequest, "Id or Token is missing !")
	}
	if err := utils.ValidatePassword(newPassword); err != nil {
		return nil, apperr.New(apperr.CodeBadRequest, "%s", err.Error())
	}

	claims, err := s.tokens.Verify(KindReset, token)
	if err != nil {
		return nil, apperr.New(apperr.CodeTokenExpired, "Token has expired !")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, apperr.Storage("hash_password", err)
	}

	user, err := s.users.Update(ctx, userID, func(u *models.User) error {
		if u.VerificationToken == "" || u.VerificationToken != token || claims.Subject != u.ID.Hex() {
			return apperr.New(apperr.CodeNotFound, "User does not exist !")
		}
		u.PasswordHash = hash
		u.VerificationToken = ""
		u.Tokens = []string{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID.Hex())
	return user, nil
}
