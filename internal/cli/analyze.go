package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/service"
)

const maxMatchRows = 10

var (
	analyzeChart    bool
	analyzeCSV      bool
	analyzeAll      bool
	analyzeExamples bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Query the property portfolio",
	Long: `Ask a natural-language question about the property portfolio.

The backend interprets the query, returns matching properties and a summary,
and can produce a chart or a CSV download.

Examples:
  creassist analyze "Show me properties above 15,000 SF with rent below $90/SF"
  creassist analyze "Find all properties on Broadway" --chart --csv
  creassist analyze --examples`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show portfolio statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := portfolioSvc.Stats(context.Background())
		if err != nil {
			return err
		}
		printPortfolioStats(stdout, stats)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeChart, "chart", false, "generate a chart")
	analyzeCmd.Flags().BoolVar(&analyzeCSV, "csv", false, "generate a CSV download")
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "print every match instead of the top 10")
	analyzeCmd.Flags().BoolVar(&analyzeExamples, "examples", false, "list example queries")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeExamples {
		for _, q := range service.ExampleQueries {
			fmt.Fprintf(stdout, "  %s\n", q)
		}
		return nil
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	result, err := portfolioSvc.Analyze(context.Background(), authSvc.ActorID(), query, service.AnalyzeOptions{
		Chart: analyzeChart,
		CSV:   analyzeCSV,
	})
	if err != nil {
		return err
	}

	limit := maxMatchRows
	if analyzeAll {
		limit = len(result.Matches)
	}
	printAnalysis(stdout, result, cfg.APIURL, limit)
	return nil
}

// printAnalysis renders an analysis: summary, interpretation, top matches and download links.
func printAnalysis(w io.Writer, r *models.AnalysisResult, baseURL string, limit int) {
	fmt.Fprintf(w, "Analysis Results\n")
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
	fmt.Fprintf(w, "Found %s properties matching your criteria\n\n", humanize.Comma(int64(r.TotalMatches)))

	if r.Summary != "" {
		fmt.Fprintf(w, "Summary:\n  %s\n\n", r.Summary)
	}
	if r.QueryInterpretation != "" {
		fmt.Fprintf(w, "Query Interpretation:\n  %s\n\n", strings.ReplaceAll(r.QueryInterpretation, "\n", "\n  "))
	}

	if n := min(len(r.Matches), limit); n > 0 {
		fmt.Fprintf(w, "Matching Properties (Top %d):\n", n)
		fmt.Fprintf(w, "  %-32s %-8s %10s %12s %14s\n", "Property Address", "Suite", "Size (SF)", "Rent/SF/Year", "GCI (3 Years)")
		for _, m := range r.Matches[:n] {
			fmt.Fprintf(w, "  %-32s %-8s %10s %12s %14s\n",
				cell(m, "Property Address"), cell(m, "Suite"), numberCell(m, "Size (SF)"),
				cell(m, "Rent/SF/Year"), cell(m, "GCI On 3 Years"))
		}
		fmt.Fprintln(w)
	}

	if r.ChartURL != "" {
		fmt.Fprintf(w, "Chart: %s%s\n", baseURL, r.ChartURL)
	}
	if r.CSVURL != "" {
		fmt.Fprintf(w, "CSV:   %s%s\n", baseURL, r.CSVURL)
	}
}

// cell renders one column of a match, or N/A.
func cell(m models.PortfolioMatch, col string) string {
	v, ok := m[col]
	if !ok || v == nil {
		return "N/A"
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "N/A"
	}
	return s
}

// numberCell renders a numeric column with thousands separators.
func numberCell(m models.PortfolioMatch, col string) string {
	switch v := m[col].(type) {
	case float64:
		if v == 0 {
			return "N/A"
		}
		return humanize.Commaf(v)
	case int:
		return humanize.Comma(int64(v))
	default:
		return cell(m, col)
	}
}

// printPortfolioStats renders the aggregate portfolio figures.
func printPortfolioStats(w io.Writer, s *models.PortfolioStats) {
	fmt.Fprintf(w, "Portfolio Statistics\n")
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
	fmt.Fprintf(w, "Properties:      %s\n", humanize.Comma(int64(s.TotalProperties)))
	fmt.Fprintf(w, "Avg rent:        $%.2f/SF\n", s.AvgRentPerSF)
	fmt.Fprintf(w, "Avg size:        %.1fK SF\n", s.AvgSizeSF/1000)
	if s.AvgGCI3Years > 0 {
		fmt.Fprintf(w, "Avg GCI (3 yrs): $%s\n", humanize.Commaf(s.AvgGCI3Years))
	}
	if s.SizeRange != nil {
		fmt.Fprintf(w, "Size range:      %s - %s SF\n", humanize.Commaf(s.SizeRange.Min), humanize.Commaf(s.SizeRange.Max))
	}
	if s.RentRange != nil {
		fmt.Fprintf(w, "Rent range:      $%.2f - $%.2f/SF\n", s.RentRange.Min, s.RentRange.Max)
	}
}
