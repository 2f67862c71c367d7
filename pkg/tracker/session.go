package tracker

import "sync"

// Session is the explicit per-page tracking state. The display marker and
// initialization flags live here, owned by the calling context, instead of
// in package-level globals.
type Session struct {
	mu             sync.Mutex
	initialized    bool
	markerInserted bool
}

// NewSession creates a fresh session for one page visit.
func NewSession() *Session {
	return &Session{}
}

// Initialize marks the session initialized. Returns false if it already was,
// so callers can make one-time setup idempotent.
func (s *Session) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return false
	}
	s.initialized = true
	return true
}

// MarkerPresent reports whether the display element was already inserted.
func (s *Session) MarkerPresent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markerInserted
}

// SetMarker records that the display element is now present.
func (s *Session) SetMarker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markerInserted = true
}

// ClearMarker records removal of the display element (page content replaced).
func (s *Session) ClearMarker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markerInserted = false
}
