package auth

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/currentspace/mychat-api/internal/models"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "auth_token"

// ErrUnauthenticated is the single failure mode of Authenticate. Absent,
// malformed, forged and expired tokens all collapse into it so the boundary
// never leaks which check failed.
var ErrUnauthenticated = errors.New("not authenticated")

// Authenticate extracts the session cookie and returns the identity it carries.
func Authenticate(r *http.Request, secret string) (*models.User, error) {
	token, err := TokenFromRequest(r)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := ParseToken(token, secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// TokenFromRequest returns the raw session token from the request cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrUnauthenticated
	}
	return c.Value, nil
}

// NewSessionCookie wraps an issued token in the cookie the frontend expects.
// The payload is readable by any holder, so transport protection is all in
// the cookie attributes.
func NewSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie overwrites the session cookie with an empty,
// already-expired one (Max-Age=0 on the wire).
func ClearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// defaultCacheEntries bounds the cache. Sessions live a week, so without a
// cap every login would pin an entry for seven days.
const defaultCacheEntries = 10000

// IdentityCache memoizes token verification for the identity endpoint. It is
// an explicit object owned by the auth layer, written on login, invalidated
// on logout; a stale entry can never outlive its token because entries are
// keyed by the signed token itself. Size is capped: a full cache evicts
// expired entries first, then arbitrary ones.
type IdentityCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	maxEntries int
}

type cacheEntry struct {
	user      *models.User
	expiresAt time.Time
}

func NewIdentityCache() *IdentityCache {
	return &IdentityCache{
		entries:    make(map[string]cacheEntry),
		maxEntries: defaultCacheEntries,
	}
}

// Get returns the cached identity for a token. Entries past the token's own
// expiry are dropped so the cache can never outlast ParseToken's verdict.
func (c *IdentityCache) Get(token string) (*models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, token)
		return nil, false
	}
	return e.user, true
}

func (c *IdentityCache) Put(token string, user *models.User, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[token]; !ok && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[token] = cacheEntry{user: user, expiresAt: expiresAt}
}

// evictLocked makes room for one more entry: expired entries go first, then
// arbitrary live ones. Caller holds c.mu.
func (c *IdentityCache) evictLocked() {
	now := time.Now()
	for t, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, t)
		}
	}
	for t := range c.entries {
		if len(c.entries) < c.maxEntries {
			return
		}
		delete(c.entries, t)
	}
}

func (c *IdentityCache) Invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
}
