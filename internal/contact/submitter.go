// Package contact forwards contact-form messages to the site owner through
// the email delivery service.
package contact

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/Zachkp/portfolio/internal/emailjs"
	"go.uber.org/zap"
)

// Message holds the form fields. The form names are the contact template's
// variable names.
type Message struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	Message string `form:"message" json:"message" binding:"required"`
}

type State int

const (
	Idle State = iota
	Pending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome is the state shown next to the form. Reason is set only when
// State is Failed.
type Outcome struct {
	State  State
	Reason string
}

const (
	FallbackReason   = "Failed to send. Please try again."
	UnexpectedReason = "Unexpected response from email service."
)

// ErrPending is returned when a form is submitted while its previous
// submission is still in flight.
var ErrPending = errors.New("contact: submission already in progress")

// Form is one contact form and its outcome.
type Form struct {
	mu      sync.Mutex
	message Message
	outcome Outcome
}

func NewForm(m Message) *Form {
	return &Form{message: m}
}

func (f *Form) Message() Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Form) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Reset clears the fields.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form) reset() {
	f.message = Message{}
}

func (f *Form) begin() (Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome.State == Pending {
		return Message{}, ErrPending
	}
	f.outcome = Outcome{State: Pending}
	return f.message, nil
}

func (f *Form) finish(o Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcome = o
	if o.State == Succeeded {
		f.reset()
	}
}

// Sender delivers a template email. *emailjs.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, templateID string, params any) (*emailjs.Response, error)
}

type Submitter struct {
	sender     Sender
	templateID string
	logger     *zap.Logger
}

func NewSubmitter(sender Sender, templateID string, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{sender: sender, templateID: templateID, logger: logger}
}

// Submit moves f to Pending, sends once and waits for the reply. Success
// clears the fields; failure keeps them and records the reason. The only
// error returned is ErrPending.
func (s *Submitter) Submit(ctx context.Context, f *Form) (Outcome, error) {
	msg, err := f.begin()
	if err != nil {
		return f.Outcome(), err
	}

	resp, err := s.sender.Send(ctx, s.templateID, msg)

	var out Outcome
	switch {
	case err != nil:
		out = Outcome{State: Failed, Reason: Reason(err)}
		s.logger.Warn("contact message failed", zap.String("email", msg.Email), zap.Error(err))
	case resp == nil || resp.Status != http.StatusOK:
		out = Outcome{State: Failed, Reason: UnexpectedReason}
		s.logger.Warn("contact message got unexpected response", zap.String("email", msg.Email))
	default:
		out = Outcome{State: Succeeded}
		s.logger.Info("contact message sent", zap.String("name", msg.Name), zap.String("email", msg.Email))
	}

	f.finish(out)
	return out, nil
}

// Reason picks the most specific text for err: the service's reply text,
// then the error message, then FallbackReason.
func Reason(err error) string {
	if err == nil {
		return FallbackReason
	}
	var rerr *emailjs.ResponseError
	if errors.As(err, &rerr) && strings.TrimSpace(rerr.Text) != "" {
		return rerr.Text
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackReason
}

// Desk hands out one form per browsing session at a time, so a second POST
// arriving while the first is still sending is refused.
type Desk struct {
	mu       sync.Mutex
	inflight map[string]*Form
}

func NewDesk() *Desk {
	return &Desk{inflight: make(map[string]*Form)}
}

// Acquire returns a fresh form filled with m for session, or ErrPending when
// the session already holds one. release must be called once the
// submission has finished.
func (d *Desk) Acquire(session string, m Message) (f *Form, release func(), err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[session]; busy {
		return nil, func() {}, ErrPending
	}
	f = NewForm(m)
	d.inflight[session] = f

	var once sync.Once
	return f, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.inflight, session)
			d.mu.Unlock()
		})
	}, nil
}

// InFlight counts sessions with a submission in progress.
func (d *Desk) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}
