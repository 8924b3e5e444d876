package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
)

// TokenKind separates session tokens from reset tokens so one can never be
// presented as the other.
type TokenKind string

const (
	KindSession TokenKind = "session"
	KindReset   TokenKind = "reset"
)

const (
	SessionTokenTTL = 2 * time.Hour
	ResetTokenTTL   = 600 * time.Second
)

// Claims is the JWT payload of both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	Email string    `json:"email,omitempty"`
	Kind  TokenKind `json:"knd"`
}

// TokenIssuer signs and verifies HS256 tokens with a single key. It never
// touches the store.
type TokenIssuer struct {
	key []byte
	now func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, oops.Errorf("token signing key is empty")
	}
	return &TokenIssuer{key: []byte(secret), now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

func ttlFor(kind TokenKind) time.Duration {
	if kind == KindReset {
		return ResetTokenTTL
	}
	return SessionTokenTTL
}

// Issue mints a token of the given kind for userID. email is only embedded
// in session tokens.
func (i *TokenIssuer) Issue(kind TokenKind, userID, email string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttlFor(kind))),
		},
		Kind: kind,
	}
	if kind == KindSession {
		claims.Email = email
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", oops.Code(apperr.CodeTokenInvalid).With("kind", string(kind)).Wrapf(err, "sign token")
	}
	return token, nil
}

// Verify checks signature, algorithm, expiry and kind. Every failure is a
// TOKEN_INVALID error; expiry carries reason "expired".
func (i *TokenIssuer) Verify(kind TokenKind, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		reason := apperr.ReasonInvalid
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = apperr.ReasonExpired
		}
		return nil, oops.Code(apperr.CodeTokenInvalid).With("reason", reason).With("kind", string(kind)).Wrap(err)
	}

	if !token.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, oops.Code(apperr.CodeTokenInvalid).
			With("reason", apperr.ReasonInvalid).
			With("kind", string(kind)).
			Errorf("token kind mismatch or missing subject")
	}
	return claims, nil
}

// tokenExpired reports whether a Verify error was caused by expiry.
func tokenExpired(err error) bool {
	return apperr.Is(err, apperr.CodeTokenInvalid) && apperr.ReasonOf(err) == apperr.ReasonExpired
}
