package visitor

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Marker is the session-scoped "already notified" slot.
type Marker interface {
	// MarkSent sets the marker for session and reports whether this call
	// was the one that set it.
	MarkSent(ctx context.Context, session string) (bool, error)
}

// Purger is implemented by markers whose expired entries must be removed.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// MemoryMarker keeps markers in process. Entries older than ttl count as
// unset.
type MemoryMarker struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewMemoryMarker(ttl time.Duration) *MemoryMarker {
	return &MemoryMarker{
		ttl:  ttl,
		now:  time.Now,
		sent: make(map[string]time.Time),
	}
}

func (m *MemoryMarker) MarkSent(_ context.Context, session string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if at, ok := m.sent[session]; ok && now.Sub(at) < m.ttl {
		return false, nil
	}
	m.sent[session] = now
	return true, nil
}

func (m *MemoryMarker) Purge(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int64
	for session, at := range m.sent {
		if now.Sub(at) >= m.ttl {
			delete(m.sent, session)
			n++
		}
	}
	return n, nil
}

// Len returns the number of kept markers.
func (m *MemoryMarker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// SchedulePurge runs p.Purge on the cron spec (with seconds field) and
// returns the started scheduler. Callers stop it on shutdown.
func SchedulePurge(spec string, p Purger, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(spec, func() {
		n, err := p.Purge(context.Background())
		if err != nil {
			logger.Warn("marker purge failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("expired visitor markers removed", zap.Int64("count", n))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
