package engine

import (
	"context"
	"sync"
)

// Screen is one visit to a screen. Work started for it runs under Ctx and
// carries Token, so results that arrive after the user navigated away can
// be recognised and dropped.
type Screen struct {
	Token  uint64
	Ctx    context.Context
	cancel context.CancelFunc
}

// Screens hands out a fresh Screen on every navigation and cancels the
// previous one.
type Screens struct {
	mu      sync.Mutex
	current *Screen
	next    uint64
}

// NewScreens creates a tracker with no active screen.
func NewScreens() *Screens {
	return &Screens{}
}

// Enter cancels the active screen's work and starts a new screen.
func (s *Screens) Enter(parent context.Context) *Screen {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.cancel()
	}
	s.next++
	ctx, cancel := context.WithCancel(parent)
	s.current = &Screen{Token: s.next, Ctx: ctx, cancel: cancel}
	return s.current
}

// Current reports whether token belongs to the active screen.
func (s *Screens) Current(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.Token == token
}

// Leave cancels the active screen without starting another.
func (s *Screens) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.cancel()
		s.current = nil
	}
}
