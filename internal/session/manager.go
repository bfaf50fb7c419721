// Package session manages chat sessions on the client side: the ordered
// message log of the active conversation, the typing state while a reply is
// outstanding, and the list of sessions kept by the remote history service.
//
// Network calls never run under the manager's lock. Each send is tagged with
// the session it targets and the active-session generation at call time;
// replies that arrive after the user moved to another session are dropped.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/notify"
)

var (
	// ErrEmptyTitle is returned when renaming to a blank title.
	ErrEmptyTitle = errors.New("session title is empty")
	// ErrUnknownSession is returned for ids that are not in the session list.
	ErrUnknownSession = errors.New("unknown session")
	// ErrStale is returned when a load was superseded by a newer one.
	ErrStale = errors.New("superseded by a newer request")
	// ErrNoActiveSession is returned when an operation needs an active session.
	ErrNoActiveSession = errors.New("no active session")
)

// ChatTransport sends one user message and returns the assistant reply.
type ChatTransport interface {
	SendChat(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error)
}

// HistoryStore is the remote CRUD service for sessions.
type HistoryStore interface {
	ListSessions(ctx context.Context, userID string) ([]models.SessionSummary, error)
	GetSession(ctx context.Context, userID, sessionID string) (*models.Session, error)
	CreateSession(ctx context.Context, userID, title string) (*models.SessionSummary, error)
	RenameSession(ctx context.Context, sessionID, title string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// ConfirmFunc asks the user to approve deleting a session.
type ConfirmFunc func(models.SessionSummary) bool

// SendStatus is the outcome of Send.
type SendStatus int

const (
	// StatusDelivered: the assistant reply was appended.
	StatusDelivered SendStatus = iota
	// StatusFailed: the request failed and the fallback reply was appended.
	StatusFailed
	// StatusIgnored: a send for this session was already outstanding; nothing changed.
	StatusIgnored
	// StatusRejected: the message was blank or no session was active; no request was made.
	StatusRejected
	// StatusStale: the reply arrived after the user switched sessions and was discarded.
	StatusStale
)

func (s SendStatus) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusFailed:
		return "failed"
	case StatusIgnored:
		return "ignored"
	case StatusRejected:
		return "rejected"
	case StatusStale:
		return "stale"
	default:
		return "unknown"
	}
}

// SendResult reports what Send did.
type SendResult struct {
	Status SendStatus
	Reply  *models.Message // assistant message appended, if any
	Err    error           // transport error for StatusFailed
}

// Manager owns the active session and the session list.
// All methods are safe for concurrent use.
type Manager struct {
	transport ChatTransport
	store     HistoryStore
	notifier  notify.Notifier
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions []models.SessionSummary
	active   *models.Session
	gen      uint64 // bumped whenever active changes
	loadSeq  uint64 // bumped on every Select call
	typing   map[string]bool
	renames  map[string]*EditChain[string]
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier routes user-facing notifications to n.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager whose active session is a fresh local draft.
func NewManager(transport ChatTransport, store HistoryStore, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		store:     store,
		notifier:  notify.Discard,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		typing:    make(map[string]bool),
		renames:   make(map[string]*EditChain[string]),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.active = m.newDraft()
	return m
}

type notice struct {
	level notify.Level
	text  string
}

func (m *Manager) emit(notices ...notice) {
	for _, n := range notices {
		m.notifier.Notify(n.level, n.text)
	}
}

func (m *Manager) newDraft() *models.Session {
	now := m.now()
	return &models.Session{
		Title:     DefaultTitle,
		Messages:  []models.Message{models.NewMessage(models.RoleAssistant, WelcomeMessage, now)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// setActive switches the active session. Caller must hold mu.
func (m *Manager) setActive(s *models.Session) {
	m.active = s
	m.gen++
}

// typingKey identifies a session for the typing state. Drafts have no id yet,
// so each draft is keyed by its own identity.
func typingKey(s *models.Session) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("draft-%p", s)
}

// findSummary returns the index of id in the list or -1. Caller must hold mu.
func (m *Manager) findSummary(id string) int {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// Send appends the user's message to the active session and asks the
// assistant for a reply. Exactly one assistant message (the reply or the
// fallback) follows every accepted message. While a reply is outstanding for
// the session, further sends are ignored.
func (m *Manager) Send(ctx context.Context, actorID, text string) SendResult {
	text = strings.TrimSpace(text)
	if text == "" {
		m.emit(notice{notify.Warning, msgEmptyMessage})
		return SendResult{Status: StatusRejected}
	}

	m.mu.Lock()
	target := m.active
	if target == nil {
		m.mu.Unlock()
		m.emit(notice{notify.Warning, msgNoActive})
		return SendResult{Status: StatusRejected, Err: ErrNoActiveSession}
	}
	key := typingKey(target)
	if m.typing[key] {
		m.mu.Unlock()
		return SendResult{Status: StatusIgnored}
	}
	target.Messages = append(target.Messages, models.NewMessage(models.RoleUser, text, m.now()))
	m.typing[key] = true
	tag := m.gen
	sessionID := target.ID
	m.mu.Unlock()

	start := time.Now()
	reply, err := m.transport.SendChat(ctx, models.ChatRequest{
		UserID:    actorID,
		Message:   text,
		SessionID: sessionID,
	})
	m.logger.Debug("chat reply", "session_id", sessionID, "duration_ms", time.Since(start).Milliseconds(), "error", err)

	m.mu.Lock()
	delete(m.typing, key)
	now := m.now()

	if err == nil {
		m.recordRemoteTurn(target, reply.SessionID, text, now)
	}

	if m.active != target || m.gen != tag {
		m.mu.Unlock()
		m.logger.Info("discarding reply for inactive session", "session_id", sessionID)
		if err != nil {
			m.emit(notice{notify.Error, msgChatError})
		}
		return SendResult{Status: StatusStale, Err: err}
	}

	var result SendResult
	var msg models.Message
	if err != nil {
		msg = models.NewMessage(models.RoleAssistant, FallbackReply, now)
		result = SendResult{Status: StatusFailed, Err: err}
	} else {
		msg = models.NewMessage(models.RoleAssistant, reply.Response, now)
		result = SendResult{Status: StatusDelivered}
	}
	target.Messages = append(target.Messages, msg)
	result.Reply = &msg
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("chat request failed", "session_id", sessionID, "error", err)
		m.emit(notice{notify.Error, msgChatError})
	}
	return result
}

// recordRemoteTurn reflects a user/assistant pair the backend stored.
// A draft adopts the id the backend assigned to it and joins the list.
// Sessions that already had an id are only updated while still listed, so a
// late reply never brings back a deleted session. Caller must hold mu.
func (m *Manager) recordRemoteTurn(target *models.Session, replySessionID, firstText string, now time.Time) {
	adopted := false
	if target.ID == "" && replySessionID != "" {
		target.ID = replySessionID
		if target.Title == DefaultTitle {
			target.Title = models.SessionTitle(firstText)
		}
		adopted = true
	}
	if target.ID == "" {
		return
	}

	target.MessageCount += 2
	target.UpdatedAt = now

	if i := m.findSummary(target.ID); i >= 0 {
		m.sessions[i].MessageCount += 2
		m.sessions[i].UpdatedAt = models.Time{Time: now}
		return
	}
	if adopted {
		m.sessions = append([]models.SessionSummary{target.Summary()}, m.sessions...)
	}
}

// Refresh reloads the user's session list from the history service.
func (m *Manager) Refresh(ctx context.Context, actorID string) ([]models.SessionSummary, error) {
	sessions, err := m.store.ListSessions(ctx, actorID)
	if err != nil {
		m.logger.Warn("list sessions failed", "user_id", actorID, "error", err)
		m.emit(notice{notify.Error, msgHistoryFailed})
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	m.mu.Lock()
	m.sessions = append([]models.SessionSummary(nil), sessions...)
	for i := range m.sessions {
		if chain, ok := m.renames[m.sessions[i].ID]; ok {
			m.sessions[i].Title = chain.Value()
		}
	}
	out := append([]models.SessionSummary(nil), m.sessions...)
	m.mu.Unlock()
	return out, nil
}

// Create asks the history service for a new session, puts it at the top of
// the list and makes it active. On failure nothing local changes.
func (m *Manager) Create(ctx context.Context, actorID, title string) (*models.SessionSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	created, err := m.store.CreateSession(ctx, actorID, title)
	if err != nil {
		m.logger.Warn("create session failed", "user_id", actorID, "error", err)
		m.emit(notice{notify.Error, msgCreateFailed})
		return nil, fmt.Errorf("create session: %w", err)
	}
	if created.Title == "" {
		created.Title = title
	}

	m.mu.Lock()
	m.sessions = append([]models.SessionSummary{*created}, m.sessions...)
	m.setActive(&models.Session{
		ID:           created.ID,
		Title:        created.Title,
		CreatedAt:    created.CreatedAt.Time,
		UpdatedAt:    created.UpdatedAt.Time,
		MessageCount: created.MessageCount,
	})
	m.mu.Unlock()

	m.emit(notice{notify.Success, msgCreated})
	out := *created
	return &out, nil
}

// Select loads a session with its messages and makes it active, replacing the
// current log wholesale. If another Select starts, or the active session
// changes in any other way, before this one returns, its result is discarded
// and ErrStale is returned.
func (m *Manager) Select(ctx context.Context, actorID, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	m.loadSeq++
	seq := m.loadSeq
	gen := m.gen
	m.mu.Unlock()

	loaded, err := m.store.GetSession(ctx, actorID, sessionID)

	m.mu.Lock()
	if seq != m.loadSeq || gen != m.gen {
		m.mu.Unlock()
		m.logger.Info("discarding superseded session load", "session_id", sessionID)
		return nil, ErrStale
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("load session failed", "session_id", sessionID, "error", err)
		m.emit(notice{notify.Error, msgLoadFailed})
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	if chain, ok := m.renames[loaded.ID]; ok {
		loaded.Title = chain.Value()
	}
	m.setActive(loaded)
	if i := m.findSummary(loaded.ID); i >= 0 {
		m.sessions[i].Title = loaded.Title
		m.sessions[i].MessageCount = loaded.MessageCount
	}
	out := cloneSession(loaded)
	m.mu.Unlock()
	return out, nil
}

// Rename retitles a session optimistically and confirms with the history
// service. If the service rejects it, the title falls back to the newest
// rename that did not fail, or to the title before any of them.
func (m *Manager) Rename(ctx context.Context, sessionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		m.emit(notice{notify.Warning, msgEmptyTitle})
		return ErrEmptyTitle
	}

	m.mu.Lock()
	chain, ok := m.renames[sessionID]
	if !ok {
		prev, known := m.titleOf(sessionID)
		if !known {
			m.mu.Unlock()
			return fmt.Errorf("rename %s: %w", sessionID, ErrUnknownSession)
		}
		chain = NewEditChain(prev)
		m.renames[sessionID] = chain
	}
	edit := chain.Push(title)
	m.applyTitle(sessionID, chain.Value())
	m.mu.Unlock()

	err := m.store.RenameSession(ctx, sessionID, title)

	m.mu.Lock()
	if err != nil {
		edit.Rollback()
	} else {
		edit.Confirm()
	}
	// A delete in the meantime drops the chain; nothing is left to retitle.
	if m.renames[sessionID] == chain {
		m.applyTitle(sessionID, chain.Value())
		if chain.Settled() {
			delete(m.renames, sessionID)
		}
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("rename session failed", "session_id", sessionID, "error", err)
		m.emit(notice{notify.Error, msgRenameFailed})
		return fmt.Errorf("rename session: %w", err)
	}
	m.mu.Unlock()

	m.emit(notice{notify.Success, msgRenamed})
	return nil
}

// titleOf returns the displayed title of id. Caller must hold mu.
func (m *Manager) titleOf(id string) (string, bool) {
	if i := m.findSummary(id); i >= 0 {
		return m.sessions[i].Title, true
	}
	if m.active != nil && m.active.ID == id && id != "" {
		return m.active.Title, true
	}
	return "", false
}

// applyTitle sets the displayed title everywhere id appears. Caller must hold mu.
func (m *Manager) applyTitle(id, title string) {
	if i := m.findSummary(id); i >= 0 {
		m.sessions[i].Title = title
	}
	if m.active != nil && m.active.ID == id {
		m.active.Title = title
	}
}

// Delete removes a session after confirm approves it. A nil confirm counts as
// approval. If the deleted session was active, no session is active afterwards
// and the caller must Create or Select one. It reports whether the session was deleted.
func (m *Manager) Delete(ctx context.Context, sessionID string, confirm ConfirmFunc) (bool, error) {
	m.mu.Lock()
	summary := models.SessionSummary{ID: sessionID}
	if i := m.findSummary(sessionID); i >= 0 {
		summary = m.sessions[i]
	}
	m.mu.Unlock()

	if confirm != nil && !confirm(summary) {
		return false, nil
	}

	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		m.logger.Warn("delete session failed", "session_id", sessionID, "error", err)
		m.emit(notice{notify.Error, msgDeleteFailed})
		return false, fmt.Errorf("delete session: %w", err)
	}

	m.mu.Lock()
	if i := m.findSummary(sessionID); i >= 0 {
		m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
	}
	if m.active != nil && m.active.ID == sessionID {
		m.setActive(nil)
	}
	delete(m.renames, sessionID)
	m.mu.Unlock()

	m.emit(notice{notify.Success, msgDeleted})
	return true, nil
}

// NewDraft makes a fresh local draft active and returns a copy of it.
// The draft gets an id from the backend with its first reply.
func (m *Manager) NewDraft() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.newDraft()
	m.setActive(d)
	return cloneSession(d)
}

// Clear replaces the active view with a fresh local draft that only holds the
// welcome message. Nothing is sent to the backend.
func (m *Manager) Clear() {
	m.NewDraft()
}

// Active returns a copy of the active session, or nil when none is active.
func (m *Manager) Active() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	return cloneSession(m.active)
}

// Sessions returns a copy of the session list.
func (m *Manager) Sessions() []models.SessionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SessionSummary(nil), m.sessions...)
}

// Filter returns the sessions whose title contains term, ignoring case.
func (m *Manager) Filter(term string) []models.SessionSummary {
	term = strings.ToLower(strings.TrimSpace(term))

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionSummary
	for _, s := range m.sessions {
		if strings.Contains(strings.ToLower(s.Title), term) {
			out = append(out, s)
		}
	}
	return out
}

// Typing reports whether a reply is outstanding for the active session.
func (m *Manager) Typing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return false
	}
	return m.typing[typingKey(m.active)]
}

// Export writes the active session's transcript into dir and returns the
// file path. Earlier exports from the same day are kept.
func (m *Manager) Export(dir string) (string, error) {
	active := m.Active()
	if active == nil {
		m.emit(notice{notify.Warning, msgNothingToWrite})
		return "", ErrNoActiveSession
	}

	f, err := createTranscriptFile(dir, m.now())
	if err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}
	path := f.Name()
	_, err = f.WriteString(ExportTranscript(active))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	m.emit(notice{notify.Success, msgExported})
	return path, nil
}

func cloneSession(s *models.Session) *models.Session {
	out := *s
	out.Messages = append([]models.Message(nil), s.Messages...)
	return &out
}
