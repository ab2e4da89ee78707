package models

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrIncompleteAuthResult = errors.New("auth result is missing tokens")

// TokenPair holds the issued tokens. They are opaque to the client.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// User is the server's user object. Only the role flag is interpreted; Raw
// keeps the object exactly as received so it can be stored verbatim.
type User struct {
	IsClient bool
	Raw      json.RawMessage
}

func (u *User) UnmarshalJSON(b []byte) error {
	var flag struct {
		IsClient bool `json:"is_client"`
	}
	if err := json.Unmarshal(b, &flag); err != nil {
		return err
	}
	u.IsClient = flag.IsClient
	u.Raw = append(u.Raw[:0], b...)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	return json.Marshal(struct {
		IsClient bool `json:"is_client"`
	}{u.IsClient})
}

// AuthResult is the body returned by both login endpoints.
type AuthResult struct {
	Token TokenPair `json:"token"`
	User  User      `json:"user"`
}

// Session is what gets written to the local stores after a login.
type Session struct {
	AccessToken  string
	RefreshToken string
	IsClient     bool
	// UserInfo is the JSON-serialised user object.
	UserInfo  string
	CreatedAt time.Time
}

// NewSession derives a Session from an AuthResult.
func NewSession(res *AuthResult, now time.Time) (*Session, error) {
	if res == nil || res.Token.Access == "" || res.Token.Refresh == "" {
		return nil, ErrIncompleteAuthResult
	}
	info, err := json.Marshal(res.User)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  res.Token.Access,
		RefreshToken: res.Token.Refresh,
		IsClient:     res.User.IsClient,
		UserInfo:     string(info),
		CreatedAt:    now.UTC(),
	}, nil
}
