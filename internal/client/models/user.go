package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile is a document of the users collection, keyed by uid.
type UserProfile struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

func UserProfileFromRecord(rec docstore.Record) (UserProfile, error) {
	u := UserProfile{
		ID:    stringField(rec, docstore.IDField),
		Name:  stringField(rec, "name"),
		Email: stringField(rec, "email"),
		Role:  stringField(rec, "role"),
	}
	if err := Validate(u); err != nil {
		return UserProfile{}, err
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return u, nil
}

// NewProfileRecord is the users/{uid} body written on sign-up.
func NewProfileRecord(name, email string) docstore.Record {
	return docstore.Record{"name": name, "email": email, "role": RoleUser}
}

// ProfileFields is the update mask of NewProfileRecord.
var ProfileFields = []string{"name", "email", "role"}

// Session is the signed-in user, persisted as a whole under the "user" key.
type Session struct {
	UID       string    `json:"uid" validate:"required"`
	Email     string    `json:"email"`
	IDToken   string    `json:"idToken"`
	ExpiresAt time.Time `json:"expiresAt"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
}

// NewSession merges the sign-in result with the user's profile. Profile
// values win over the sign-in email, as the profile is the stored truth.
func NewSession(uid, email, idToken string, expiresAt time.Time, profile UserProfile) Session {
	s := Session{UID: uid, Email: email, IDToken: idToken, ExpiresAt: expiresAt, Name: profile.Name, Role: profile.Role}
	if profile.Email != "" {
		s.Email = profile.Email
	}
	return s
}

// ParseSession decodes a persisted session. Any parse or validation failure
// means the blob is corrupt.
func ParseSession(data string) (Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Session{}, err
	}
	if err := Validate(s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Expired reports whether the identity token is known to be past its expiry.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
