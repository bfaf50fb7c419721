package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/raphaelgruber/creassist/internal/metrics"
	"github.com/raphaelgruber/creassist/internal/models"
)

// =============================================================================
// CHAT
// =============================================================================

// SendChat sends a message and returns the assistant reply.
func (c *Client) SendChat(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	var reply models.ChatReply
	if err := c.doJSON(ctx, metrics.OpChat, http.MethodPost, "/chat/", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name string
	Data io.Reader
}

// UploadDocuments uploads files to be indexed into the knowledge base.
func (c *Client) UploadDocuments(ctx context.Context, files []UploadFile) (*models.UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Data); err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/upload_docs", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result models.UploadResult
	if err := c.do(metrics.OpUpload, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddTextDocuments adds raw text snippets to the knowledge base.
func (c *Client) AddTextDocuments(ctx context.Context, docs []string) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	body := map[string]any{"documents": docs}
	if err := c.doJSON(ctx, metrics.OpDocuments, http.MethodPost, "/chat/add-documents", body, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// ListDocuments returns the indexed documents.
func (c *Client) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var result struct {
		Documents []models.Document `json:"documents"`
	}
	if err := c.doJSON(ctx, metrics.OpDocuments, http.MethodGet, "/chat/documents", nil, &result); err != nil {
		return nil, err
	}
	return result.Documents, nil
}

// DeleteDocument removes one document and its chunks.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.doJSON(ctx, metrics.OpDocuments, http.MethodDelete, "/chat/documents/"+url.PathEscape(id), nil, nil)
}

// ClearDocuments removes every document from the knowledge base.
func (c *Client) ClearDocuments(ctx context.Context) error {
	return c.doJSON(ctx, metrics.OpDocuments, http.MethodDelete, "/chat/documents", nil, nil)
}

// =============================================================================
// PORTFOLIO
// =============================================================================

// AnalyzePortfolio runs a natural-language query over the property portfolio.
func (c *Client) AnalyzePortfolio(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := c.doJSON(ctx, metrics.OpAnalyze, http.MethodPost, "/analyze/analyze_portfolio", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PortfolioStats returns aggregate portfolio figures.
func (c *Client) PortfolioStats(ctx context.Context) (*models.PortfolioStats, error) {
	var stats models.PortfolioStats
	if err := c.doJSON(ctx, metrics.OpAnalyze, http.MethodGet, "/analyze/portfolio_stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
