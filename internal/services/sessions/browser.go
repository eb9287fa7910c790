package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register cookie store finders

	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

const (
	// CookieName is the venue backend's session cookie.
	CookieName = "PHPSESSID"
	// CookieDomain is matched as a suffix against cookie domains.
	CookieDomain = "wifi.id"
)

// ErrNoBrowserSession is returned when no browser holds a venue session.
var ErrNoBrowserSession = errors.New("no venue session cookie found in local browsers")

// CookieSource reads candidate session cookies.
type CookieSource func(ctx context.Context) ([]*kooky.Cookie, error)

// BrowserCookies reads valid PHPSESSID cookies for the venue domain from
// every cookie store kooky can find.
func BrowserCookies(ctx context.Context) ([]*kooky.Cookie, error) {
	return kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(CookieDomain), kooky.Name(CookieName))
}

// PickCredential returns the value of the cookie that expires last.
func PickCredential(cookies []*kooky.Cookie) (string, error) {
	var best *kooky.Cookie
	for _, c := range cookies {
		if c == nil || c.Value == "" {
			continue
		}
		if best == nil || c.Expires.After(best.Expires) {
			best = c
		}
	}
	if best == nil {
		return "", ErrNoBrowserSession
	}
	return best.Value, nil
}

// ImportFromBrowser stores the freshest browser session for project. Partial
// read errors from individual stores are tolerated when a cookie was found.
func (s *Service) ImportFromBrowser(ctx context.Context, project string, source CookieSource) (models.Session, error) {
	if source == nil {
		source = BrowserCookies
	}

	cookies, readErr := source(ctx)
	cred, err := PickCredential(cookies)
	if err != nil {
		if readErr != nil {
			return models.Session{}, fmt.Errorf("%w: %v", err, readErr)
		}
		return models.Session{}, err
	}
	if readErr != nil {
		logger.Warn("some cookie stores could not be read", "error", readErr)
	}

	if err := s.Set(project, cred, models.SourceBrowser); err != nil {
		return models.Session{}, err
	}
	sess, _ := s.Get(project)
	return sess, nil
}
