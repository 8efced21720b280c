// Package visitor sends a one-time visit notification per browsing session.
package visitor

import (
	"regexp"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/geo"
)

// Event is the record delivered to the visitor template. The JSON names are
// the template variables and must not change.
type Event struct {
	IP       string `json:"ip"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Device   string `json:"device"`
	Browser  string `json:"browser"`
	OS       string `json:"os"`
	Screen   string `json:"screen"`
	Referrer string `json:"referrer"`
	Page     string `json:"page"`
	Time     string `json:"time"`
}

// Visit is what the page and request tell us about the visitor.
type Visit struct {
	ClientIP  string
	UserAgent string
	Platform  string
	Screen    string
	Referrer  string
	Path      string
}

// TimeLayout matches the short locale format visitors see in browsers.
const TimeLayout = "1/2/2006, 3:04:05 PM"

var mobileUA = regexp.MustCompile(`(?i)Mobi|Android`)

// DeviceClass reports Mobile or Desktop from a user agent.
func DeviceClass(userAgent string) string {
	if mobileUA.MatchString(userAgent) {
		return "Mobile"
	}
	return "Desktop"
}

// NewEvent assembles the record for v at time t using the resolved location.
func NewEvent(v Visit, loc geo.Location, t time.Time) Event {
	referrer := strings.TrimSpace(v.Referrer)
	if referrer == "" {
		referrer = "Direct"
	}
	page := v.Path
	if page == "" {
		page = "/"
	}
	return Event{
		IP:       loc.IP,
		Country:  loc.Country,
		City:     loc.City,
		Device:   DeviceClass(v.UserAgent),
		Browser:  orUnknown(v.UserAgent),
		OS:       orUnknown(strings.Trim(v.Platform, `"`)),
		Screen:   orUnknown(v.Screen),
		Referrer: referrer,
		Page:     page,
		Time:     t.Format(TimeLayout),
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return geo.Unknown
	}
	return s
}
