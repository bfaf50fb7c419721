package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/raphaelgruber/creassist/internal/metrics"
	"github.com/raphaelgruber/creassist/internal/models"
)

// historyMessage is a stored turn. Older backends call the array
// "conversations" and the text field "message".
type historyMessage struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Message   string      `json:"message"`
	Timestamp models.Time `json:"timestamp"`
}

type sessionDetail struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	CreatedAt     models.Time      `json:"created_at"`
	UpdatedAt     models.Time      `json:"updated_at"`
	Messages      []historyMessage `json:"messages"`
	Conversations []historyMessage `json:"conversations"`
}

func (d *sessionDetail) toSession() *models.Session {
	raw := d.Messages
	if len(raw) == 0 {
		raw = d.Conversations
	}
	msgs := toMessages(raw)

	return &models.Session{
		ID:           d.ID,
		Title:        d.Title,
		Messages:     msgs,
		CreatedAt:    d.CreatedAt.Time,
		UpdatedAt:    d.UpdatedAt.Time,
		MessageCount: len(msgs),
	}
}

func toMessages(raw []historyMessage) []models.Message {
	msgs := make([]models.Message, 0, len(raw))
	for _, m := range raw {
		content := m.Content
		if content == "" {
			content = m.Message
		}
		id := m.ID
		if id == "" {
			id = models.NewMessageID(m.Timestamp.Time)
		}
		msgs = append(msgs, models.Message{
			ID:        id,
			Role:      models.ParseRole(m.Role),
			Content:   content,
			Timestamp: m.Timestamp.Time,
		})
	}
	return msgs
}

// ListSessions returns the user's sessions, most recently updated first.
func (c *Client) ListSessions(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	var sessions []models.SessionSummary
	path := "/history/sessions/" + url.PathEscape(userID)
	if err := c.doJSON(ctx, metrics.OpHistory, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession returns one session with its full message log.
func (c *Client) GetSession(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	var detail sessionDetail
	path := "/history/sessions/" + url.PathEscape(userID) + "/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, metrics.OpHistory, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	if detail.ID == "" {
		detail.ID = sessionID
	}
	return detail.toSession(), nil
}

// CreateSession creates an empty session. An empty title lets the backend pick its default.
func (c *Client) CreateSession(ctx context.Context, userID, title string) (*models.SessionSummary, error) {
	body := map[string]any{"user_id": userID}
	if title != "" {
		body["title"] = title
	}

	var created models.SessionSummary
	if err := c.doJSON(ctx, metrics.OpHistory, http.MethodPost, "/history/sessions/create", body, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("create session: empty id in response")
	}
	return &created, nil
}

// RenameSession sets a session's title.
func (c *Client) RenameSession(ctx context.Context, sessionID, title string) error {
	path := "/history/sessions/" + url.PathEscape(sessionID) + "/title"
	return c.doJSON(ctx, metrics.OpHistory, http.MethodPut, path, map[string]string{"title": title}, nil)
}

// DeleteSession deletes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := "/history/sessions/" + url.PathEscape(sessionID)
	return c.doJSON(ctx, metrics.OpHistory, http.MethodDelete, path, nil, nil)
}
