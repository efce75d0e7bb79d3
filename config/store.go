package config

import "sync"

// Store guards a Config for concurrent readers and writers and persists every
// change back to its file.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  Config
}

// NewStore wraps the given configuration. path may be empty, in which case
// updates are kept in memory only.
func NewStore(path string, cfg Config) *Store {
	return &Store{path: path, cfg: cfg}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Update applies fn to the configuration, clamps the result and saves it.
// The previous configuration is kept when saving fails.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	fn(&next)
	next.Clamp()
	if s.path != "" {
		if err := Save(s.path, next); err != nil {
			return err
		}
	}
	s.cfg = next
	return nil
}
