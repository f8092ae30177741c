package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/currentspace/mychat-api/internal/models"
)

func requestWithCookie(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	return r
}

func TestAuthenticate(t *testing.T) {
	token, err := IssueToken(&testUser, "topsecret", SessionTTL)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	tests := []struct {
		name    string
		req     *http.Request
		secret  string
		wantErr bool
	}{
		{"valid cookie", requestWithCookie(token), "topsecret", false},
		{"no cookie", requestWithCookie(""), "topsecret", true},
		{"forged token", requestWithCookie(token), "othersecret", true},
		{"garbage token", requestWithCookie("nonsense"), "topsecret", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := Authenticate(tt.req, tt.secret)
			if tt.wantErr {
				if err != ErrUnauthenticated {
					t.Errorf("Authenticate() = %v, want ErrUnauthenticated", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() failed: %v", err)
			}
			if user.ID != testUser.ID {
				t.Errorf("user.ID = %q, want %q", user.ID, testUser.ID)
			}
		})
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	c := NewSessionCookie("tok")
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie transport attributes wrong: %+v", c)
	}
	if c.MaxAge != 604800 {
		t.Errorf("MaxAge = %d, want 604800", c.MaxAge)
	}
	if c.Path != "/" {
		t.Errorf("Path = %q, want /", c.Path)
	}
}

func TestClearedCookieExpiresImmediately(t *testing.T) {
	rec := httptest.NewRecorder()
	http.SetCookie(rec, ClearedSessionCookie())

	header := rec.Header().Get("Set-Cookie")
	if !strings.Contains(header, "Max-Age=0") {
		t.Errorf("Set-Cookie = %q, want Max-Age=0", header)
	}
	if !strings.Contains(header, CookieName+"=;") {
		t.Errorf("Set-Cookie = %q, want empty value", header)
	}
}

func TestIdentityCache(t *testing.T) {
	cache := NewIdentityCache()
	u := &models.User{ID: "u1"}

	if _, ok := cache.Get("tok"); ok {
		t.Error("Get() on empty cache returned a value")
	}

	cache.Put("tok", u, time.Now().Add(time.Minute))
	if got, ok := cache.Get("tok"); !ok || got.ID != "u1" {
		t.Errorf("Get() = %v, %t; want cached user", got, ok)
	}

	cache.Invalidate("tok")
	if _, ok := cache.Get("tok"); ok {
		t.Error("Get() after Invalidate returned a value")
	}

	cache.Put("stale", u, time.Now().Add(-time.Minute))
	if _, ok := cache.Get("stale"); ok {
		t.Error("Get() returned an entry past its token expiry")
	}
}

func TestIdentityCacheBounded(t *testing.T) {
	cache := NewIdentityCache()
	cache.maxEntries = 3
	u := &models.User{ID: "u1"}

	// Fill to capacity with one already-expired entry.
	cache.Put("expired", u, time.Now().Add(-time.Minute))
	cache.Put("live-1", u, time.Now().Add(time.Hour))
	cache.Put("live-2", u, time.Now().Add(time.Hour))

	cache.Put("live-3", u, time.Now().Add(time.Hour))
	if len(cache.entries) > 3 {
		t.Fatalf("cache holds %d entries, want at most 3", len(cache.entries))
	}

	// The expired entry made room; the live ones survive.
	if _, ok := cache.Get("expired"); ok {
		t.Error("expired entry survived eviction")
	}
	for _, token := range []string{"live-1", "live-2", "live-3"} {
		if _, ok := cache.Get(token); !ok {
			t.Errorf("live entry %q was evicted while an expired one existed", token)
		}
	}

	// With only live entries at capacity, an insert still cannot grow the map.
	cache.Put("live-4", u, time.Now().Add(time.Hour))
	if len(cache.entries) > 3 {
		t.Errorf("cache holds %d entries after overflow, want at most 3", len(cache.entries))
	}
	if _, ok := cache.Get("live-4"); !ok {
		t.Error("newest entry missing after eviction")
	}
}
