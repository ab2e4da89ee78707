// Package cookies is the client's cookie store: cookies that server-rendered
// pages of the platform read, persisted in a bbolt file and grouped by
// domain.
package cookies

import (
	"context"
	"errors"
	"time"
)

var ErrEmptyDomain = errors.New("cookie domain is empty")

const SameSiteStrict = "Strict"

// Cookie is the persisted form of a cookie.
type Cookie struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Domain    string    `json:"domain"`
	Path      string    `json:"path"`
	Secure    bool      `json:"secure"`
	HttpOnly  bool      `json:"http_only"`
	SameSite  string    `json:"same_site"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	// PutAll writes every cookie of a domain in one transaction, replacing
	// cookies with the same name.
	PutAll(ctx context.Context, domain string, cookies []*Cookie) error
	List(ctx context.Context, domain string) ([]*Cookie, error)
	// Clear removes every cookie of a domain.
	Clear(ctx context.Context, domain string) error
	Close() error
}
