package visitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zachkp/portfolio/internal/diag"
	"github.com/Zachkp/portfolio/internal/emailjs"
	"github.com/Zachkp/portfolio/internal/geo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

// Outcome labels of visitor_notifications_total.
const (
	outcomeStarted   = "started"
	outcomeSkipped   = "skipped"
	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
)

// Sender delivers a template email. *emailjs.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, templateID string, params any) (*emailjs.Response, error)
}

// Stats counts notifier activity since start.
type Stats struct {
	Started   int64 `json:"started"`
	Skipped   int64 `json:"skipped"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
}

// Notifier fires the visitor notification at most once per session. The send
// is detached from the request: failures go to the diagnostic sink and are
// never returned to the caller.
type Notifier struct {
	marker     Marker
	locator    geo.Locator
	sender     Sender
	templateID string
	sink       *diag.Sink
	logger     *zap.Logger
	now        func() time.Time

	wg            sync.WaitGroup
	notifications *prometheus.CounterVec
}

// NewNotifier registers its counters on reg. A nil reg gets a private
// registry.
func NewNotifier(marker Marker, locator geo.Locator, sender Sender, templateID string, sink *diag.Sink, logger *zap.Logger, reg prometheus.Registerer) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = diag.NewSink(logger, 0)
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Notifier{
		marker:     marker,
		locator:    locator,
		sender:     sender,
		templateID: templateID,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
		notifications: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "visitor_notifications_total",
				Help: "Visitor notifications by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Notify starts the notification for session unless it was already started.
// The marker is set before the send begins, so a second call made while the
// first is still in flight is skipped. It reports whether a send was started.
func (n *Notifier) Notify(ctx context.Context, session string, v Visit) bool {
	first, err := n.marker.MarkSent(ctx, session)
	if err != nil {
		n.count(outcomeSkipped)
		n.sink.Report("visitor.marker", err)
		return false
	}
	if !first {
		n.count(outcomeSkipped)
		return false
	}

	n.count(outcomeStarted)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(context.WithoutCancel(ctx), v)
	}()
	return true
}

func (n *Notifier) deliver(ctx context.Context, v Visit) {
	defer func() {
		if r := recover(); r != nil {
			n.count(outcomeFailed)
			n.sink.Report("visitor.notify", fmt.Errorf("panic: %v", r))
		}
	}()

	loc, err := n.locator.Lookup(ctx, v.ClientIP)
	if err != nil {
		n.sink.Report("visitor.geo", err)
		loc = geo.UnknownLocation()
	}

	event := NewEvent(v, loc, n.now())
	if _, err := n.sender.Send(ctx, n.templateID, event); err != nil {
		n.count(outcomeFailed)
		n.sink.Report("visitor.notify", err)
		return
	}

	n.count(outcomeDelivered)
	n.logger.Debug("visitor notification sent",
		zap.String("country", event.Country),
		zap.String("device", event.Device),
		zap.String("page", event.Page),
	)
}

// Wait blocks until every started send has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) count(outcome string) {
	n.notifications.WithLabelValues(outcome).Inc()
}

// Stats reads the counters back for the diagnostics report.
func (n *Notifier) Stats() Stats {
	return Stats{
		Started:   n.read(outcomeStarted),
		Skipped:   n.read(outcomeSkipped),
		Delivered: n.read(outcomeDelivered),
		Failed:    n.read(outcomeFailed),
	}
}

func (n *Notifier) read(outcome string) int64 {
	var m dto.Metric
	if err := n.notifications.WithLabelValues(outcome).Write(&m); err != nil {
		return 0
	}
	return int64(m.GetCounter().GetValue())
}
