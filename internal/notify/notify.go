// Package notify holds transient user-facing notifications.
//
// Notifications are separate from the chat log. Each one is shown for a fixed
// duration and then dismissed automatically; nothing here ever blocks the caller.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notification.
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// DefaultDuration is how long a notification stays visible.
const DefaultDuration = 5 * time.Second

// Notification is one transient message.
type Notification struct {
	ID        string
	Level     Level
	Text      string
	CreatedAt time.Time
}

// Notifier is what components use to surface notifications.
type Notifier interface {
	Notify(level Level, text string)
}

// Center keeps the currently visible notifications and a full history.
// All methods are safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	duration time.Duration
	active   []Notification
	history  []Notification
	timers   map[string]*time.Timer
	sinks    []func(Notification)
	now      func() time.Time
}

// NewCenter creates a Center that dismisses notifications after d.
// A non-positive d uses DefaultDuration.
func NewCenter(d time.Duration) *Center {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Center{
		duration: d,
		timers:   make(map[string]*time.Timer),
		now:      time.Now,
	}
}

// Subscribe registers fn to be called for every new notification.
// fn runs synchronously on the notifying goroutine and must not call back into the Center.
func (c *Center) Subscribe(fn func(Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, fn)
}

// Notify adds a notification and schedules its dismissal.
func (c *Center) Notify(level Level, text string) {
	n := Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Text:      text,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.active = append(c.active, n)
	c.history = append(c.history, n)
	c.timers[n.ID] = time.AfterFunc(c.duration, func() { c.Dismiss(n.ID) })
	sinks := append([]func(Notification){}, c.sinks...)
	c.mu.Unlock()

	for _, fn := range sinks {
		fn(n)
	}
}

// Dismiss removes a visible notification early. Unknown ids are ignored.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

// Active returns the notifications that are currently visible, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.active...)
}

// History returns every notification raised so far, oldest first.
func (c *Center) History() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.history...)
}

// Last returns the most recent notification, if any.
func (c *Center) Last() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return Notification{}, false
	}
	return c.history[len(c.history)-1], true
}

// Close stops all pending dismissal timers.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}
