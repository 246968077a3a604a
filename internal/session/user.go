package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptUser marks a persisted user payload that could not be decoded.
var ErrCorruptUser = errors.New("corrupt persisted user")

// User is the profile returned by the backend on successful authentication.
type User struct {
	ID    string `json:"id"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// DisplayName prefers the phone number, falling back to email when the
// backend reports a placeholder phone.
func (u User) DisplayName() string {
	if u.Phone != "" && u.Phone != "0" {
		return u.Phone
	}
	if u.Email != "" {
		return u.Email
	}
	return u.Name
}

// UnmarshalJSON accepts both "id" and "_id".
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	return nil
}

// ParseUser decodes a persisted user payload. Anything other than a JSON
// object is reported as ErrCorruptUser.
func ParseUser(raw string) (User, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return User{}, ErrCorruptUser
	}

	var u User
	if err := json.Unmarshal(trimmed, &u); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	return u, nil
}
