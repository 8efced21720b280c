package theme

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

const (
	CookieName   = "theme"
	cookieMaxAge = 365 * 24 * 60 * 60
)

// ErrUnavailable is returned by storage that cannot be read or written.
var ErrUnavailable = errors.New("theme storage unavailable")

// CookieStorage keeps the preference in the visitor's browser. The cookie is
// not HttpOnly so the inline no-flash script can read it before first paint.
type CookieStorage struct {
	Request *http.Request
	Writer  http.ResponseWriter
}

func (s CookieStorage) Load() (Preference, bool, error) {
	if s.Request == nil {
		return Light, false, ErrUnavailable
	}
	c, err := s.Request.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return Light, false, nil
	}
	if err != nil {
		return Light, false, fmt.Errorf("read theme cookie: %w", err)
	}
	p, ok := ParsePreference(c.Value)
	if !ok {
		return Light, false, fmt.Errorf("invalid theme cookie %q", c.Value)
	}
	return p, true, nil
}

func (s CookieStorage) Save(p Preference) error {
	if s.Writer == nil {
		return ErrUnavailable
	}
	http.SetCookie(s.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    p.String(),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	})
	return nil
}

// MemoryStorage is an in-process slot. Setting Broken makes every call fail
// with ErrUnavailable, like a browser with storage disabled.
type MemoryStorage struct {
	mu     sync.Mutex
	value  *Preference
	Broken bool
}

func (m *MemoryStorage) Load() (Preference, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Broken {
		return Light, false, ErrUnavailable
	}
	if m.value == nil {
		return Light, false, nil
	}
	return *m.value, true, nil
}

func (m *MemoryStorage) Save(p Preference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Broken {
		return ErrUnavailable
	}
	m.value = &p
	return nil
}
