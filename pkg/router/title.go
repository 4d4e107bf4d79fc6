package router

import "sync"

// AfterNavigate returns the document title for a completed navigation:
// the route's "title" metadata when set, otherwise defaultTitle.
// It never fails.
func AfterNavigate(ev NavigationEvent, defaultTitle string) string {
	if ev.Route != nil {
		if title, ok := ev.Route.Title(); ok {
			return title
		}
	}
	return defaultTitle
}

// TitleSink receives the document title once per navigation.
// The display owner implements it.
type TitleSink interface {
	SetTitle(title string)
}

// TitleSinkFunc is a function adapter for TitleSink.
type TitleSinkFunc func(title string)

// SetTitle implements TitleSink.
func (f TitleSinkFunc) SetTitle(title string) {
	f(title)
}

// TitleSlot holds the currently displayed title.
type TitleSlot struct {
	mu      sync.RWMutex
	title   string
	updates int
}

// NewTitleSlot creates a slot showing the initial title.
func NewTitleSlot(initial string) *TitleSlot {
	return &TitleSlot{title: initial}
}

// SetTitle implements TitleSink.
func (s *TitleSlot) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.updates++
	s.mu.Unlock()
}

// Title returns the current title.
func (s *TitleSlot) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// Updates returns how many times the title has been written.
func (s *TitleSlot) Updates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates
}
