package services

import (
	"context"
	"strings"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/mailer"
	"github.com/AnshRaj112/devcode-backend/internal/models"
	"github.com/AnshRaj112/devcode-backend/pkg/utils"
)

// Auth event labels.
const (
	eventRegister     = "register"
	eventLogin        = "login"
	eventLogout       = "logout"
	eventAuthenticate = "authenticate"
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User  *models.User
	Token string
}

// Register creates an account and sends a welcome e-mail in the background.
func (s *Service) Register(ctx context.Context, userName, email, password string) (_ *models.User, err error) {
	defer func() { s.metrics.RecordAuth(eventRegister, err) }()

	userName = strings.TrimSpace(userName)
	email = utils.NormalizeEmail(email)
	if userName == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.CodeBadRequest, "All fields are required !")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperr.New(apperr.CodeBadRequest, "%s", err.Error())
	}
	if err := utils.ValidateUserName(userName); err != nil {
		return nil, apperr.New(apperr.CodeBadRequest, "%s", err.Error())
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, apperr.New(apperr.CodeBadRequest, "%s", err.Error())
	}

	// Fast path; the unique index still catches a concurrent registration.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.CodeConflict, "User already exists !")
	} else if !apperr.Is(err, apperr.CodeNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Storage("hash_password", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	msg, err := mailer.WelcomeMessage(user.Email, user.UserName)
	if err != nil {
		s.logger.ErrorContext(ctx, "render welcome email", "user_id", user.ID.Hex(), "error", err)
	} else {
		s.notifier.Fire(mailer.KindWelcome, msg)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.Hex())
	return user, nil
}

// Login checks credentials and records a new session token on the user.
// Earlier tokens stay valid, one per device.
func (s *Service) Login(ctx context.Context, email, password string) (_ *LoginResult, err error) {
	defer func() { s.metrics.RecordAuth(eventLogin, err) }()

	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.CodeBadRequest, "All fields are required !")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.New(apperr.CodeInvalidCredentials, "Invalid Credentials !")
	}

	token, err := s.tokens.Issue(KindSession, user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, user.ID.Hex(), func(u *models.User) error {
		u.Tokens = append(u.Tokens, token)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", updated.ID.Hex(), "sessions", len(updated.Tokens))
	return &LoginResult{User: updated, Token: token}, nil
}

// Logout drops every session token of the user. Calling it twice is harmless.
func (s *Service) Logout(ctx context.Context, userID string) (err error) {
	defer func() { s.metrics.RecordAuth(eventLogout, err) }()

	_, err = s.users.Update(ctx, userID, func(u *models.User) error {
		u.Tokens = []string{}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user logged out", "user_id", userID)
	return nil
}

// Authenticate resolves a presented session token to its user. The token
// must verify and still be listed on the user. Every rejection is the same
// UNAUTHORIZED error; the reason is only in its context.
func (s *Service) Authenticate(ctx context.Context, token string) (_ *models.User, err error) {
	defer func() { s.metrics.RecordAuth(eventAuthenticate, err) }()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Unauthorized(apperr.ReasonMissing)
	}

	claims, err := s.tokens.Verify(KindSession, token)
	if err != nil {
		if tokenExpired(err) {
			return nil, apperr.Unauthorized(apperr.ReasonExpired)
		}
		return nil, apperr.Unauthorized(apperr.ReasonInvalid)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized(apperr.ReasonUserMissing)
		}
		return nil, err
	}

	if !user.HasSessionToken(token) {
		return nil, apperr.Unauthorized(apperr.ReasonRevoked)
	}
	return user, nil
}
