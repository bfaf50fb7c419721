package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/notify"
)

// PortfolioBackend answers portfolio queries.
type PortfolioBackend interface {
	AnalyzePortfolio(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResult, error)
	PortfolioStats(ctx context.Context) (*models.PortfolioStats, error)
}

// AnalyzeOptions are the extras a query may ask for.
type AnalyzeOptions struct {
	Chart bool
	CSV   bool
}

// ExampleQueries are suggested portfolio queries.
var ExampleQueries = []string{
	"Show me properties above 15,000 SF with rent below $90/SF",
	"Find all properties on Broadway",
	"Which properties have the highest GCI over 3 years?",
	"List suites under 5,000 SF",
}

// PortfolioService runs portfolio queries.
type PortfolioService struct {
	base
	backend PortfolioBackend
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(backend PortfolioBackend, opts ...Option) *PortfolioService {
	return &PortfolioService{base: newBase(opts), backend: backend}
}

// Analyze runs query on behalf of actorID (Anonymous when empty).
func (s *PortfolioService) Analyze(ctx context.Context, actorID, query string, opts AnalyzeOptions) (*models.AnalysisResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.notifier.Notify(notify.Warning, "Please enter a query to analyze your portfolio")
		return nil, ErrEmptyQuery
	}
	if actorID == "" {
		actorID = Anonymous
	}

	result, err := s.backend.AnalyzePortfolio(ctx, models.AnalyzeRequest{
		UserID:      actorID,
		Query:       query,
		ReturnChart: opts.Chart,
		DownloadCSV: opts.CSV,
	})
	if err != nil {
		s.fail("analyze portfolio failed", "Portfolio analysis failed. Please try again.", err, "query", query)
		return nil, fmt.Errorf("analyze portfolio: %w", err)
	}

	s.notifier.Notify(notify.Success, fmt.Sprintf("Analysis complete! Found %d matching properties.", result.TotalMatches))
	return result, nil
}

// Stats returns aggregate portfolio figures.
func (s *PortfolioService) Stats(ctx context.Context) (*models.PortfolioStats, error) {
	stats, err := s.backend.PortfolioStats(ctx)
	if err != nil {
		s.fail("portfolio stats failed", "Failed to load portfolio stats", err)
		return nil, fmt.Errorf("portfolio stats: %w", err)
	}
	return stats, nil
}
