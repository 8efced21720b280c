// Package emailjs sends template emails through the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultURL is the EmailJS send endpoint.
const DefaultURL = "https://api.emailjs.com/api/v1.0/email/send"

// ErrNotConfigured is returned when the service id or public key is missing.
var ErrNotConfigured = errors.New("emailjs: service not configured")

// ResponseError carries the status and body text returned by EmailJS.
type ResponseError struct {
	Status int
	Text   string
}

func (e *ResponseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("emailjs: status %d", e.Status)
	}
	return fmt.Sprintf("emailjs: status %d: %s", e.Status, e.Text)
}

// Response is a successful reply. EmailJS answers 200 with the body "OK".
type Response struct {
	Status int
	Text   string
}

type Client struct {
	url        string
	serviceID  string
	publicKey  string
	privateKey string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPrivateKey sets the access token required by accounts in strict mode.
func WithPrivateKey(key string) Option {
	return func(c *Client) { c.privateKey = key }
}

// WithRateLimit caps outgoing sends per second. EmailJS rejects bursts
// above one request per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func NewClient(url, serviceID, publicKey string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		serviceID:  serviceID,
		publicKey:  publicKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendRequest struct {
	ServiceID      string `json:"service_id"`
	TemplateID     string `json:"template_id"`
	UserID         string `json:"user_id"`
	AccessToken    string `json:"accessToken,omitempty"`
	TemplateParams any    `json:"template_params"`
}

// Send delivers one email built from templateID and params. A non-2xx reply
// is returned as *ResponseError. No retry is attempted.
func (c *Client) Send(ctx context.Context, templateID string, params any) (*Response, error) {
	if c.serviceID == "" || c.publicKey == "" || templateID == "" {
		return nil, ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("emailjs: rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return nil, fmt.Errorf("emailjs: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("emailjs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emailjs: send: %w", err)
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(text))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{Status: resp.StatusCode, Text: msg}
	}
	return &Response{Status: resp.StatusCode, Text: msg}, nil
}
