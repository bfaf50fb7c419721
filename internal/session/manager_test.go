package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/notify"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeTransport struct {
	mu    sync.Mutex
	calls []models.ChatRequest
	send  func(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error)
}

func (f *fakeTransport) SendChat(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.send(ctx, req)
}

func (f *fakeTransport) Calls() []models.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatRequest(nil), f.calls...)
}

func replyWith(text, sessionID string) func(context.Context, models.ChatRequest) (*models.ChatReply, error) {
	return func(context.Context, models.ChatRequest) (*models.ChatReply, error) {
		return &models.ChatReply{Response: text, SessionID: sessionID}, nil
	}
}

type fakeStore struct {
	mu       sync.Mutex
	list     []models.SessionSummary
	sessions map[string]*models.Session
	deleted  []string
	renamed  map[string]string

	listErr   error
	createErr error
	renameErr error
	deleteErr error

	// getHook runs before GetSession returns; tests use it to block a load.
	getHook func(sessionID string)
	// renameHook, when set, decides the outcome of RenameSession.
	renameHook func(title string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]*models.Session),
		renamed:  make(map[string]string),
	}
}

func (f *fakeStore) add(s *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	f.list = append(f.list, s.Summary())
}

func (f *fakeStore) ListSessions(_ context.Context, _ string) ([]models.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.SessionSummary(nil), f.list...), nil
}

func (f *fakeStore) GetSession(_ context.Context, _, sessionID string) (*models.Session, error) {
	if f.getHook != nil {
		f.getHook(sessionID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return cloneSession(s), nil
}

func (f *fakeStore) CreateSession(_ context.Context, _, title string) (*models.SessionSummary, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	s := &models.Session{ID: "created-" + title, Title: title}
	f.add(s)
	sum := s.Summary()
	return &sum, nil
}

func (f *fakeStore) RenameSession(_ context.Context, sessionID, title string) error {
	if f.renameHook != nil {
		if err := f.renameHook(title); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renameErr != nil {
		return f.renameErr
	}
	f.renamed[sessionID] = title
	return nil
}

func (f *fakeStore) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type recorder struct {
	mu    sync.Mutex
	items []string
}

func (r *recorder) Notify(level notify.Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, string(level)+":"+text)
}

func (r *recorder) All() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.items...)
}

func setup(t *testing.T, transport *fakeTransport, store *fakeStore) (*Manager, *recorder) {
	t.Helper()
	if transport == nil {
		transport = &fakeTransport{send: replyWith("ok", "")}
	}
	if store == nil {
		store = newFakeStore()
	}
	rec := &recorder{}
	return NewManager(transport, store, WithNotifier(rec)), rec
}

func sessionWith(id, title string, contents ...string) *models.Session {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &models.Session{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
	for i, c := range contents {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		s.Messages = append(s.Messages, models.NewMessage(role, c, now))
	}
	s.MessageCount = len(s.Messages)
	return s
}

// =============================================================================
// SEND
// =============================================================================

func TestSendAppendsUserAndAssistant(t *testing.T) {
	transport := &fakeTransport{send: replyWith("Found 3 properties...", "")}
	m, _ := setup(t, transport, nil)

	before := len(m.Active().Messages)
	res := m.Send(context.Background(), "user-1", "Show me Broadway properties")

	require.Equal(t, StatusDelivered, res.Status)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "Found 3 properties...", res.Reply.Content)

	msgs := m.Active().Messages
	require.Len(t, msgs, before+2)
	assert.Equal(t, models.RoleUser, msgs[before].Role)
	assert.Equal(t, "Show me Broadway properties", msgs[before].Content)
	assert.Equal(t, models.RoleAssistant, msgs[before+1].Role)
	assert.Equal(t, "Found 3 properties...", msgs[before+1].Content)
	assert.False(t, m.Typing())

	calls := transport.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.ChatRequest{UserID: "user-1", Message: "Show me Broadway properties"}, calls[0])
}

func TestSendTwoMessagesPerCall(t *testing.T) {
	tests := []string{"a", "  padded  ", "What is the average rent per square foot in my portfolio?"}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			m, _ := setup(t, nil, nil)
			before := len(m.Active().Messages)

			m.Send(context.Background(), "u", text)

			msgs := m.Active().Messages
			require.Len(t, msgs, before+2)
			assert.Equal(t, strings.TrimSpace(text), msgs[before].Content)
			assert.False(t, m.Typing())
		})
	}
}

func TestSendRejectsBlankText(t *testing.T) {
	transport := &fakeTransport{send: replyWith("never", "")}
	m, rec := setup(t, transport, nil)
	before := m.Active()

	res := m.Send(context.Background(), "u", "   \n\t")

	assert.Equal(t, StatusRejected, res.Status)
	assert.Empty(t, transport.Calls())
	assert.Equal(t, before.Messages, m.Active().Messages)
	assert.Equal(t, []string{"warning:" + msgEmptyMessage}, rec.All())
}

func TestSendFailureAppendsFallback(t *testing.T) {
	transport := &fakeTransport{send: func(context.Context, models.ChatRequest) (*models.ChatReply, error) {
		return nil, errors.New("connection refused")
	}}
	m, rec := setup(t, transport, nil)
	before := len(m.Active().Messages)

	res := m.Send(context.Background(), "u", "hello")

	assert.Equal(t, StatusFailed, res.Status)
	require.Error(t, res.Err)

	msgs := m.Active().Messages
	require.Len(t, msgs, before+2)
	assert.Equal(t, "hello", msgs[before].Content, "user message is kept")
	assert.Equal(t, models.RoleAssistant, msgs[before+1].Role)
	assert.Equal(t, FallbackReply, msgs[before+1].Content)
	assert.False(t, m.Typing())
	assert.Equal(t, []string{"error:" + msgChatError}, rec.All())
}

func TestSendWhileWaitingIsIgnored(t *testing.T) {
	release := make(chan struct{})
	transport := &fakeTransport{send: func(context.Context, models.ChatRequest) (*models.ChatReply, error) {
		<-release
		return &models.ChatReply{Response: "done"}, nil
	}}
	m, _ := setup(t, transport, nil)

	done := make(chan SendResult)
	go func() { done <- m.Send(context.Background(), "u", "first") }()

	require.Eventually(t, m.Typing, time.Second, time.Millisecond)
	waiting := m.Active()

	res := m.Send(context.Background(), "u", "second")
	assert.Equal(t, StatusIgnored, res.Status)
	assert.Equal(t, waiting.Messages, m.Active().Messages, "no state change while waiting")
	assert.True(t, m.Typing())

	close(release)
	assert.Equal(t, StatusDelivered, (<-done).Status)
	assert.Len(t, transport.Calls(), 1)
	assert.False(t, m.Typing())
}

func TestSendReplyDroppedAfterSelect(t *testing.T) {
	release := make(chan struct{})
	transport := &fakeTransport{send: func(context.Context, models.ChatRequest) (*models.ChatReply, error) {
		<-release
		return &models.ChatReply{Response: "late reply", SessionID: "s1"}, nil
	}}
	store := newFakeStore()
	store.add(sessionWith("s1", "First"))
	store.add(sessionWith("s2", "Second", "q", "a"))
	m, _ := setup(t, transport, store)
	ctx := context.Background()

	_, err := m.Refresh(ctx, "u")
	require.NoError(t, err)
	_, err = m.Select(ctx, "u", "s1")
	require.NoError(t, err)

	done := make(chan SendResult)
	go func() { done <- m.Send(ctx, "u", "hello") }()
	require.Eventually(t, m.Typing, time.Second, time.Millisecond)

	_, err = m.Select(ctx, "u", "s2")
	require.NoError(t, err)
	assert.False(t, m.Typing(), "typing belongs to the previous session")

	close(release)
	res := <-done
	assert.Equal(t, StatusStale, res.Status)
	assert.Nil(t, res.Reply)

	active := m.Active()
	assert.Equal(t, "s2", active.ID)
	require.Len(t, active.Messages, 2)
	assert.Equal(t, "a", active.Messages[1].Content)

	// The backend still stored the turn.
	for _, s := range m.Sessions() {
		if s.ID == "s1" {
			assert.Equal(t, 2, s.MessageCount)
		}
	}
}

func TestSendReplyDroppedAfterClear(t *testing.T) {
	release := make(chan struct{})
	transport := &fakeTransport{send: func(context.Context, models.ChatRequest) (*models.ChatReply, error) {
		<-release
		return &models.ChatReply{Response: "late"}, nil
	}}
	m, _ := setup(t, transport, nil)

	done := make(chan SendResult)
	go func() { done <- m.Send(context.Background(), "u", "hello") }()
	require.Eventually(t, m.Typing, time.Second, time.Millisecond)

	m.Clear()
	close(release)

	assert.Equal(t, StatusStale, (<-done).Status)
	msgs := m.Active().Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeMessage, msgs[0].Content)
}

func TestSendReplyAfterDeleteKeepsSessionGone(t *testing.T) {
	release := make(chan struct{})
	transport := &fakeTransport{send: func(context.Context, models.ChatRequest) (*models.ChatReply, error) {
		<-release
		return &models.ChatReply{Response: "late reply", SessionID: "s1"}, nil
	}}
	store := newFakeStore()
	store.add(sessionWith("s1", "Doomed"))
	m, _ := setup(t, transport, store)
	ctx := context.Background()

	_, err := m.Refresh(ctx, "u")
	require.NoError(t, err)
	_, err = m.Select(ctx, "u", "s1")
	require.NoError(t, err)

	done := make(chan SendResult)
	go func() { done <- m.Send(ctx, "u", "hello") }()
	require.Eventually(t, m.Typing, time.Second, time.Millisecond)

	deleted, err := m.Delete(ctx, "s1", nil)
	require.NoError(t, err)
	require.True(t, deleted)
	require.Empty(t, m.Sessions())

	close(release)
	res := <-done
	assert.Equal(t, StatusStale, res.Status)
	assert.Empty(t, m.Sessions())
	assert.Nil(t, m.Active())
}

func TestSendDraftAdoptsSessionID(t *testing.T) {
	transport := &fakeTransport{send: replyWith("Found 3 properties...", "sess-42")}
	m, _ := setup(t, transport, nil)

	m.Send(context.Background(), "u", "Show me Broadway properties")

	active := m.Active()
	assert.Equal(t, "sess-42", active.ID)
	assert.Equal(t, "Show me Broadway properties", active.Title)
	assert.Equal(t, 2, active.MessageCount)

	sessions := m.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-42", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].MessageCount)

	// The follow-up carries the adopted id.
	m.Send(context.Background(), "u", "and in Midtown?")
	calls := transport.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "sess-42", calls[1].SessionID)
	assert.Equal(t, 4, m.Sessions()[0].MessageCount)
}

func TestSendWithoutActiveSession(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Only"))
	transport := &fakeTransport{send: replyWith("never", "")}
	m, rec := setup(t, transport, store)
	ctx := context.Background()

	_, err := m.Select(ctx, "u", "s1")
	require.NoError(t, err)
	ok, err := m.Delete(ctx, "s1", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, m.Active())

	res := m.Send(ctx, "u", "hello")
	assert.Equal(t, StatusRejected, res.Status)
	assert.ErrorIs(t, res.Err, ErrNoActiveSession)
	assert.Empty(t, transport.Calls())
	assert.Contains(t, rec.All(), "warning:"+msgNoActive)
}

// =============================================================================
// SESSION LIST
// =============================================================================

func TestSelectReplacesLog(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Broadway", "q1", "a1", "q2", "a2"))
	m, _ := setup(t, nil, store)

	loaded, err := m.Select(context.Background(), "u", "s1")
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 4)

	active := m.Active()
	assert.Equal(t, "s1", active.ID)
	assert.Equal(t, "Broadway", active.Title)
	assert.Len(t, active.Messages, 4)
	for _, msg := range active.Messages {
		assert.NotEqual(t, WelcomeMessage, msg.Content)
	}
}

func TestSelectSupersededLoadIsDiscarded(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "First", "old-q", "old-a"))
	store.add(sessionWith("s2", "Second", "new-q", "new-a"))

	started := make(chan struct{})
	release := make(chan struct{})
	store.getHook = func(id string) {
		if id == "s1" {
			close(started)
			<-release
		}
	}
	m, _ := setup(t, nil, store)
	ctx := context.Background()

	first := make(chan error)
	go func() {
		_, err := m.Select(ctx, "u", "s1")
		first <- err
	}()
	<-started

	_, err := m.Select(ctx, "u", "s2")
	require.NoError(t, err)
	snapshot := m.Active()

	close(release)
	assert.ErrorIs(t, <-first, ErrStale)

	active := m.Active()
	assert.Equal(t, "s2", active.ID)
	assert.Equal(t, snapshot.Messages, active.Messages)
}

func TestSelectDiscardedAfterCreate(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "First", "old-q", "old-a"))

	started := make(chan struct{})
	release := make(chan struct{})
	store.getHook = func(string) {
		close(started)
		<-release
	}
	m, _ := setup(t, nil, store)
	ctx := context.Background()

	loaded := make(chan error)
	go func() {
		_, err := m.Select(ctx, "u", "s1")
		loaded <- err
	}()
	<-started

	created, err := m.Create(ctx, "u", "Fresh")
	require.NoError(t, err)

	close(release)
	assert.ErrorIs(t, <-loaded, ErrStale)
	assert.Equal(t, created.ID, m.Active().ID)
	assert.Empty(t, m.Active().Messages)
}

func TestSelectDiscardedAfterClear(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "First", "old-q", "old-a"))

	started := make(chan struct{})
	release := make(chan struct{})
	store.getHook = func(string) {
		close(started)
		<-release
	}
	m, _ := setup(t, nil, store)

	loaded := make(chan error)
	go func() {
		_, err := m.Select(context.Background(), "u", "s1")
		loaded <- err
	}()
	<-started

	m.Clear()
	close(release)

	assert.ErrorIs(t, <-loaded, ErrStale)
	assert.True(t, m.Active().IsDraft())
}

func TestSelectFailureKeepsActive(t *testing.T) {
	m, rec := setup(t, nil, nil)
	before := m.Active()

	_, err := m.Select(context.Background(), "u", "missing")
	require.Error(t, err)

	assert.Equal(t, before.Messages, m.Active().Messages)
	assert.Equal(t, []string{"error:" + msgLoadFailed}, rec.All())
}

func TestCreateSession(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Existing"))
	m, rec := setup(t, nil, store)
	ctx := context.Background()
	_, err := m.Refresh(ctx, "u")
	require.NoError(t, err)

	created, err := m.Create(ctx, "u", "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, created.Title)

	sessions := m.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, created.ID, sessions[0].ID, "new session is prepended")

	active := m.Active()
	assert.Equal(t, created.ID, active.ID)
	assert.Empty(t, active.Messages)
	assert.Equal(t, []string{"success:" + msgCreated}, rec.All())
}

func TestCreateSessionFailure(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Existing"))
	store.createErr = errors.New("network unreachable")
	m, rec := setup(t, nil, store)
	ctx := context.Background()
	_, err := m.Refresh(ctx, "u")
	require.NoError(t, err)
	before := m.Active()

	_, err = m.Create(ctx, "u", "Q3 review")
	require.Error(t, err)

	assert.Len(t, m.Sessions(), 1)
	assert.Equal(t, before, m.Active())
	assert.Equal(t, []string{"error:" + msgCreateFailed}, rec.All())
}

func TestRefreshFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("500 Internal Server Error")
	m, rec := setup(t, nil, store)

	_, err := m.Refresh(context.Background(), "u")
	require.Error(t, err)
	assert.Empty(t, m.Sessions())
	assert.Equal(t, []string{"error:" + msgHistoryFailed}, rec.All())
}

func TestRename(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Old"))
	m, rec := setup(t, nil, store)
	ctx := context.Background()
	_, err := m.Select(ctx, "u", "s1")
	require.NoError(t, err)
	_, err = m.Refresh(ctx, "u")
	require.NoError(t, err)

	require.NoError(t, m.Rename(ctx, "s1", " New title "))

	assert.Equal(t, "New title", m.Sessions()[0].Title)
	assert.Equal(t, "New title", m.Active().Title)
	assert.Equal(t, "New title", store.renamed["s1"])
	assert.Equal(t, []string{"success:" + msgRenamed}, rec.All())
}

func TestRenameFailureReverts(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Old"))
	store.renameErr = errors.New("403 Forbidden")
	m, rec := setup(t, nil, store)
	ctx := context.Background()
	_, err := m.Select(ctx, "u", "s1")
	require.NoError(t, err)
	_, err = m.Refresh(ctx, "u")
	require.NoError(t, err)

	err = m.Rename(ctx, "s1", "New title")
	require.Error(t, err)

	assert.Equal(t, "Old", m.Sessions()[0].Title)
	assert.Equal(t, "Old", m.Active().Title)
	assert.Equal(t, []string{"error:" + msgRenameFailed}, rec.All())
}

func TestRenameOverlapping(t *testing.T) {
	tests := []struct {
		name      string
		firstErr  error
		secondErr error
		want      string
	}{
		{name: "both fail", firstErr: errors.New("500"), secondErr: errors.New("500"), want: "A"},
		{name: "first ok second fails", secondErr: errors.New("500"), want: "B"},
		{name: "first fails second ok", firstErr: errors.New("500"), want: "C"},
		{name: "both ok", want: "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.add(sessionWith("s1", "A"))

			// Each rename blocks until its outcome is released.
			gates := map[string]chan error{"B": make(chan error), "C": make(chan error)}
			store.renameHook = func(title string) error { return <-gates[title] }

			m, _ := setup(t, nil, store)
			ctx := context.Background()
			_, err := m.Refresh(ctx, "u")
			require.NoError(t, err)

			first := make(chan error)
			go func() { first <- m.Rename(ctx, "s1", "B") }()
			require.Eventually(t, func() bool { return m.Sessions()[0].Title == "B" }, time.Second, time.Millisecond)

			second := make(chan error)
			go func() { second <- m.Rename(ctx, "s1", "C") }()
			require.Eventually(t, func() bool { return m.Sessions()[0].Title == "C" }, time.Second, time.Millisecond)

			gates["C"] <- tt.secondErr
			<-second
			gates["B"] <- tt.firstErr
			<-first

			assert.Equal(t, tt.want, m.Sessions()[0].Title)
		})
	}
}

func TestRefreshKeepsPendingRename(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Old"))
	gate := make(chan error)
	store.renameHook = func(string) error { return <-gate }

	m, _ := setup(t, nil, store)
	ctx := context.Background()
	_, err := m.Refresh(ctx, "u")
	require.NoError(t, err)

	done := make(chan error)
	go func() { done <- m.Rename(ctx, "s1", "New") }()
	require.Eventually(t, func() bool { return m.Sessions()[0].Title == "New" }, time.Second, time.Millisecond)

	// The server list still carries the old title.
	list, err := m.Refresh(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "New", list[0].Title)

	gate <- nil
	require.NoError(t, <-done)
	assert.Equal(t, "New", m.Sessions()[0].Title)
}

func TestRenameValidation(t *testing.T) {
	m, rec := setup(t, nil, nil)

	assert.ErrorIs(t, m.Rename(context.Background(), "s1", "  "), ErrEmptyTitle)
	assert.Equal(t, []string{"warning:" + msgEmptyTitle}, rec.All())

	assert.ErrorIs(t, m.Rename(context.Background(), "nope", "Title"), ErrUnknownSession)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name        string
		confirm     ConfirmFunc
		deleteErr   error
		wantDeleted bool
		wantErr     bool
		wantCalls   int
		wantActive  bool
	}{
		{name: "confirmed", confirm: func(models.SessionSummary) bool { return true }, wantDeleted: true, wantCalls: 1},
		{name: "declined", confirm: func(models.SessionSummary) bool { return false }, wantActive: true},
		{name: "remote failure", confirm: func(models.SessionSummary) bool { return true }, deleteErr: errors.New("boom"), wantErr: true, wantActive: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.add(sessionWith("s1", "Doomed"))
			store.add(sessionWith("s2", "Other"))
			store.deleteErr = tt.deleteErr
			m, _ := setup(t, nil, store)
			ctx := context.Background()
			_, err := m.Refresh(ctx, "u")
			require.NoError(t, err)
			_, err = m.Select(ctx, "u", "s1")
			require.NoError(t, err)

			var asked models.SessionSummary
			deleted, err := m.Delete(ctx, "s1", func(s models.SessionSummary) bool {
				asked = s
				return tt.confirm(s)
			})

			assert.Equal(t, "Doomed", asked.Title)
			assert.Equal(t, tt.wantDeleted, deleted)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, store.deleted, tt.wantCalls)
			if tt.wantDeleted {
				assert.Len(t, m.Sessions(), 1)
				assert.Nil(t, m.Active())
			} else {
				assert.Len(t, m.Sessions(), 2)
			}
			assert.Equal(t, tt.wantActive, m.Active() != nil)
		})
	}
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Active"))
	store.add(sessionWith("s2", "Other"))
	m, _ := setup(t, nil, store)
	ctx := context.Background()
	_, err := m.Refresh(ctx, "u")
	require.NoError(t, err)
	_, err = m.Select(ctx, "u", "s1")
	require.NoError(t, err)

	ok, err := m.Delete(ctx, "s2", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s1", m.Active().ID)
}

func TestFilter(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Broadway leases"))
	store.add(sessionWith("s2", "Midtown comps"))
	store.add(sessionWith("s3", "broadway GCI"))
	m, _ := setup(t, nil, store)
	_, err := m.Refresh(context.Background(), "u")
	require.NoError(t, err)

	got := m.Filter("BROADWAY")
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, "s3", got[1].ID)

	assert.Len(t, m.Filter(""), 3)
	assert.Empty(t, m.Filter("soho"))
}

func TestClearStartsDraft(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Loaded", "q", "a"))
	m, _ := setup(t, nil, store)
	_, err := m.Select(context.Background(), "u", "s1")
	require.NoError(t, err)

	m.Clear()

	active := m.Active()
	assert.True(t, active.IsDraft())
	assert.Equal(t, DefaultTitle, active.Title)
	require.Len(t, active.Messages, 1)
	assert.Equal(t, WelcomeMessage, active.Messages[0].Content)
}

func TestActiveReturnsCopy(t *testing.T) {
	m, _ := setup(t, nil, nil)

	a := m.Active()
	a.Messages[0].Content = "mutated"
	a.Title = "mutated"

	b := m.Active()
	assert.Equal(t, WelcomeMessage, b.Messages[0].Content)
	assert.Equal(t, DefaultTitle, b.Title)
}

func TestExportWritesTranscript(t *testing.T) {
	day := time.Date(2025, 6, 9, 15, 0, 0, 0, time.UTC)
	transport := &fakeTransport{send: replyWith("Found 3 properties...", "")}
	rec := &recorder{}
	m := NewManager(transport, newFakeStore(), WithNotifier(rec), WithClock(func() time.Time { return day }))
	m.Send(context.Background(), "u", "Show me Broadway properties")

	dir := t.TempDir()
	path, err := m.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cre-chat-export-2025-06-09.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"assistant: "+WelcomeMessage+"\n\nuser: Show me Broadway properties\n\nassistant: Found 3 properties...",
		string(data))
	assert.Equal(t, []string{"success:" + msgExported}, rec.All())
}

func TestExportSameDayKeepsEarlierFiles(t *testing.T) {
	day := time.Date(2025, 6, 9, 15, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.add(sessionWith("s1", "First", "q1", "a1"))
	store.add(sessionWith("s2", "Second", "q2", "a2"))
	m := NewManager(&fakeTransport{send: replyWith("ok", "")}, store, WithClock(func() time.Time { return day }))
	ctx := context.Background()
	dir := t.TempDir()

	_, err := m.Select(ctx, "u", "s1")
	require.NoError(t, err)
	first, err := m.Export(dir)
	require.NoError(t, err)

	_, err = m.Select(ctx, "u", "s2")
	require.NoError(t, err)
	second, err := m.Export(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "cre-chat-export-2025-06-09.txt"), first)
	assert.Equal(t, filepath.Join(dir, "cre-chat-export-2025-06-09-2.txt"), second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "user: q1\n\nassistant: a1", string(data))
	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "user: q2\n\nassistant: a2", string(data))
}

func TestExportWithoutActiveSession(t *testing.T) {
	store := newFakeStore()
	store.add(sessionWith("s1", "Gone"))
	m, rec := setup(t, nil, store)
	ctx := context.Background()
	_, err := m.Select(ctx, "u", "s1")
	require.NoError(t, err)
	_, err = m.Delete(ctx, "s1", nil)
	require.NoError(t, err)

	_, err = m.Export(t.TempDir())
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Contains(t, rec.All(), "warning:"+msgNothingToWrite)
}
