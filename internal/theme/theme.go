// Package theme resolves and persists the visitor's light/dark preference.
//
// The applied theme is the stored preference when one exists, otherwise the
// ambient color scheme reported by the browser, otherwise light.
package theme

import (
	"net/http"
	"strings"
)

type Preference uint8

const (
	Light Preference = iota
	Dark
)

func (p Preference) String() string {
	if p == Dark {
		return "dark"
	}
	return "light"
}

// ParsePreference accepts "light" or "dark", case-insensitively.
func ParsePreference(s string) (Preference, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, true
	case "dark":
		return Dark, true
	default:
		return Light, false
	}
}

// Storage is the single persisted preference slot.
type Storage interface {
	// Load reports the stored preference. ok is false when nothing is stored.
	Load() (p Preference, ok bool, err error)
	Save(p Preference) error
}

// Ambient reports the environment's color scheme, if it is known.
type Ambient interface {
	Ambient() (Preference, bool)
}

// AmbientFunc adapts a function to Ambient.
type AmbientFunc func() (Preference, bool)

func (f AmbientFunc) Ambient() (Preference, bool) { return f() }

// ClientHintHeader carries the browser's prefers-color-scheme media feature.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// HeaderAmbient reads the ambient scheme from the request's client hint.
type HeaderAmbient struct {
	Header http.Header
}

func (h HeaderAmbient) Ambient() (Preference, bool) {
	v := strings.Trim(h.Header.Get(ClientHintHeader), `"`)
	if v == "" {
		return Light, false
	}
	return ParsePreference(v)
}
