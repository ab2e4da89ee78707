package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
	"github.com/dmitrijs2005/coachlogin/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/coachlogin/internal/common"
)

var ErrInvalidOrigin = errors.New("invalid cookie origin")

// CookieSink mirrors the session into cookies for the client-facing site.
// Every cookie is Secure and SameSite=Strict.
type CookieSink struct {
	store  cookies.Store
	domain string
	now    func() time.Time
}

var _ Sink = (*CookieSink)(nil)

// NewCookieSink scopes cookies to the host of origin.
func NewCookieSink(store cookies.Store, origin string) (*CookieSink, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}
	return &CookieSink{store: store, domain: u.Hostname(), now: time.Now}, nil
}

func (c *CookieSink) Name() string { return "cookie" }

func (c *CookieSink) Write(ctx context.Context, s *models.Session) error {
	now := c.now().UTC()
	mk := func(name, value string) *cookies.Cookie {
		return &cookies.Cookie{
			Name:      name,
			Value:     value,
			Domain:    c.domain,
			Path:      "/",
			Secure:    true,
			SameSite:  cookies.SameSiteStrict,
			CreatedAt: now,
		}
	}
	return c.store.PutAll(ctx, c.domain, []*cookies.Cookie{
		mk(common.CookieAccessToken, s.AccessToken),
		mk(common.CookieRefreshToken, s.RefreshToken),
		mk(common.CookieIsAuthenticated, common.AuthenticatedValue),
		mk(common.CookieUserInfo, s.UserInfo),
	})
}

func (c *CookieSink) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, c.domain)
}

// Cookies lists what is stored for the sink's domain.
func (c *CookieSink) Cookies(ctx context.Context) ([]*cookies.Cookie, error) {
	return c.store.List(ctx, c.domain)
}
