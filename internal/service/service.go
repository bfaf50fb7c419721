// Package service holds the client's use cases outside the chat session:
// signing in and out, managing the document knowledge base, and querying the
// property portfolio. Every remote failure is logged and surfaced as a
// notification at the point of the call; callers get the wrapped error back.
package service

import (
	"errors"
	"io"
	"log/slog"

	"github.com/raphaelgruber/creassist/internal/notify"
)

var (
	// ErrEmptyQuery is returned for a blank portfolio query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrNoFiles is returned when an upload has nothing to send.
	ErrNoFiles = errors.New("no files to upload")
	// ErrUnsupportedFile is returned for file types the backend cannot index.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrNotLoggedIn is returned when an operation needs a signed-in user.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrMissingField is returned when a required form field is blank.
	ErrMissingField = errors.New("required field is empty")
)

// Anonymous is the actor id used for portfolio queries without a signed-in user.
const Anonymous = "anonymous"

// Option configures a service.
type Option func(*base)

// WithNotifier routes user-facing notifications to n.
func WithNotifier(n notify.Notifier) Option {
	return func(b *base) { b.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.logger = l }
}

// base carries what every service needs to report outcomes.
type base struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

func newBase(opts []Option) base {
	b := base{
		notifier: notify.Discard,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// fail logs err and shows text as an error notification.
func (b base) fail(msg, text string, err error, args ...any) {
	b.logger.Warn(msg, append(args, "error", err)...)
	b.notifier.Notify(notify.Error, text)
}
