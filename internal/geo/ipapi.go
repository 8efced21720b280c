// Package geo looks up coarse visitor location from an IP address.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Unknown replaces any field the lookup could not resolve.
const Unknown = "Unknown"

type Location struct {
	IP      string
	Country string
	City    string
}

// UnknownLocation is the result used when the lookup fails outright.
func UnknownLocation() Location {
	return Location{IP: Unknown, Country: Unknown, City: Unknown}
}

type Locator interface {
	Lookup(ctx context.Context, ip string) (Location, error)
}

// IPAPI queries an ipapi.co compatible JSON endpoint.
type IPAPI struct {
	baseURL    string
	httpClient *http.Client
}

func NewIPAPI(baseURL string, httpClient *http.Client) *IPAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &IPAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type ipapiResponse struct {
	IP          string `json:"ip"`
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// Lookup resolves ip, or the caller's own address when ip is empty. Fields
// missing from a successful reply are reported as Unknown.
func (c *IPAPI) Lookup(ctx context.Context, ip string) (Location, error) {
	endpoint := c.baseURL + "/json/"
	if ip != "" {
		endpoint = c.baseURL + "/" + url.PathEscape(ip) + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return UnknownLocation(), fmt.Errorf("geo: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UnknownLocation(), fmt.Errorf("geo: lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UnknownLocation(), fmt.Errorf("geo: lookup: status %d", resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return UnknownLocation(), fmt.Errorf("geo: decode: %w", err)
	}
	if body.Error {
		return UnknownLocation(), fmt.Errorf("geo: lookup: %s", body.Reason)
	}

	return Location{
		IP:      orUnknown(body.IP),
		Country: orUnknown(body.CountryName),
		City:    orUnknown(body.City),
	}, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
