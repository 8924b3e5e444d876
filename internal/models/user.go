package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the single persisted document per account. Session tokens, the
// pending reset token and saved projects all live inside it so that every
// change to an account is one document write.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	Version   int64              `bson:"version" json:"-"`

	UserName     string `bson:"userName" json:"userName"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password" json:"-"` // Don't return password in JSON

	// Session tokens currently accepted for this user, one per device.
	Tokens []string `bson:"tokens" json:"-"`
	// Outstanding reset token, empty when none was issued.
	VerificationToken string `bson:"verificationToken,omitempty" json:"-"`

	Projects []Project `bson:"projects" json:"projects"`
}

// HasSessionToken reports whether token is one of the user's live session tokens.
func (u *User) HasSessionToken(token string) bool {
	if token == "" {
		return false
	}
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// ProjectIndex returns the position of the project with the given id, or -1.
func (u *User) ProjectIndex(projectID string) int {
	for i := range u.Projects {
		if u.Projects[i].ProjectID == projectID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Tokens != nil {
		c.Tokens = make([]string, len(u.Tokens))
		copy(c.Tokens, u.Tokens)
	}
	if u.Projects != nil {
		c.Projects = make([]Project, len(u.Projects))
		copy(c.Projects, u.Projects)
	}
	return &c
}
