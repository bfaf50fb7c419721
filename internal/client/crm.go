package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/raphaelgruber/creassist/internal/metrics"
	"github.com/raphaelgruber/creassist/internal/models"
)

// CreateUser registers a CRM user and returns its id.
func (c *Client) CreateUser(ctx context.Context, input models.SignupInput) (string, error) {
	var result struct {
		UserID string `json:"user_id"`
	}
	if err := c.doJSON(ctx, metrics.OpCRM, http.MethodPost, "/crm/create_user", input, &result); err != nil {
		return "", err
	}
	if result.UserID == "" {
		return "", fmt.Errorf("create user: empty user_id in response")
	}
	return result.UserID, nil
}

// UpdateUser changes the set fields of a CRM user.
func (c *Client) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error {
	path := "/crm/update_user/" + url.PathEscape(userID)
	return c.doJSON(ctx, metrics.OpCRM, http.MethodPut, path, update, nil)
}

// Conversations returns every message the CRM logged for a user, oldest first.
func (c *Client) Conversations(ctx context.Context, userID string) ([]models.Message, error) {
	var raw []historyMessage
	path := "/crm/conversations/" + url.PathEscape(userID)
	if err := c.doJSON(ctx, metrics.OpCRM, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return toMessages(raw), nil
}

// TagMessage labels a stored message, e.g. "lead" or "follow-up".
func (c *Client) TagMessage(ctx context.Context, messageID, tag string) error {
	body := map[string]string{"message_id": messageID, "tag": tag}
	return c.doJSON(ctx, metrics.OpCRM, http.MethodPut, "/crm/tag_message", body, nil)
}
