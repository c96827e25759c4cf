package domain

import "time"

// EventKind identifies which watcher stream a raw event came from.
type EventKind string

const (
	KindWindow  EventKind = "window"
	KindAFK     EventKind = "afk"
	KindBrowser EventKind = "browser"
	KindEditor  EventKind = "editor"
)

// RawEvent is a single event as reported by an ActivityWatch bucket.
// Payload keys depend on the watcher: window events carry "app" and
// "title", AFK events carry "status", browser events carry "url",
// editor events carry "language" and "project".
type RawEvent struct {
	Kind      EventKind
	Timestamp time.Time
	Duration  time.Duration
	Payload   map[string]string
}

// End returns the instant the event stopped.
func (e RawEvent) End() time.Time {
	return e.Timestamp.Add(e.Duration)
}
