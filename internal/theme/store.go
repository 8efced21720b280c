package theme

import (
	"sync"

	"go.uber.org/zap"
)

// Store owns the applied theme for one page. It replaces a module-level flag:
// callers build one per page load, call Init, then Get/Set/Toggle.
type Store struct {
	storage Storage
	ambient Ambient
	logger  *zap.Logger

	mu        sync.Mutex
	applied   Preference
	ready     bool
	explicit  bool
	listeners map[int]func(Preference)
	nextID    int
}

func NewStore(storage Storage, ambient Ambient, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ambient == nil {
		ambient = AmbientFunc(func() (Preference, bool) { return Light, false })
	}
	return &Store{
		storage:   storage,
		ambient:   ambient,
		logger:    logger,
		listeners: make(map[int]func(Preference)),
	}
}

// InitialPreference returns the stored preference, else the ambient scheme,
// else Light. A failing storage counts as nothing stored.
func (s *Store) InitialPreference() Preference {
	p, _ := s.initial()
	return p
}

func (s *Store) initial() (Preference, bool) {
	if s.storage != nil {
		p, ok, err := s.storage.Load()
		if err != nil {
			s.logger.Debug("theme storage unavailable, using ambient", zap.Error(err))
		} else if ok {
			return p, true
		}
	}
	if p, ok := s.ambient.Ambient(); ok {
		return p, false
	}
	return Light, false
}

// Init resolves the initial preference and applies it.
func (s *Store) Init() Preference {
	p, explicit := s.initial()

	s.mu.Lock()
	s.explicit = explicit
	s.mu.Unlock()

	s.apply(p)
	return p
}

// Get returns the applied theme.
func (s *Store) Get() Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Dark mirrors the document-level dark flag.
func (s *Store) Dark() bool {
	return s.Get() == Dark
}

// Explicit reports whether a preference has been stored.
func (s *Store) Explicit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.explicit
}

// Set stores p and applies it. The theme is applied even when saving fails;
// the save error is returned for logging only.
func (s *Store) Set(p Preference) error {
	s.mu.Lock()
	s.explicit = true
	s.mu.Unlock()

	s.apply(p)

	if s.storage == nil {
		return ErrUnavailable
	}
	return s.storage.Save(p)
}

// Toggle flips the applied theme and stores the result.
func (s *Store) Toggle() (Preference, error) {
	next := Dark
	if s.Get() == Dark {
		next = Light
	}
	return next, s.Set(next)
}

// OnAmbientChange follows the ambient scheme unless a preference is stored.
func (s *Store) OnAmbientChange(p Preference) {
	s.mu.Lock()
	explicit := s.explicit
	s.mu.Unlock()

	if explicit {
		return
	}
	s.apply(p)
}

// Subscribe registers fn to run whenever the applied theme changes. The
// returned func unregisters it; calling it more than once is a no-op.
func (s *Store) Subscribe(fn func(Preference)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) apply(p Preference) {
	s.mu.Lock()
	if s.ready && s.applied == p {
		s.mu.Unlock()
		return
	}
	s.applied = p
	s.ready = true
	fns := make([]func(Preference), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}
