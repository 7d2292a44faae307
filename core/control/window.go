package control

import "time"

// Window is a wall-clock daylight window during which the controller acts.
type Window struct {
	start, end int // minutes since midnight
}

// NewWindow parses "HH:MM" bounds. Validation happens in Config.Validate, so
// unparseable bounds yield an always-open window.
func NewWindow(start, end string) Window {
	return Window{start: clockMinutes(start), end: clockMinutes(end)}
}

func clockMinutes(s string) int {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// Contains reports whether t falls inside the window. A window with equal
// bounds is always open.
func (w Window) Contains(t time.Time) bool {
	if w.start == w.end {
		return true
	}
	m := t.Hour()*60 + t.Minute()
	if w.start < w.end {
		return m >= w.start && m < w.end
	}
	// window spanning midnight
	return m >= w.start || m < w.end
}
