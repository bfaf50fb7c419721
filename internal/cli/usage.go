package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/creassist/internal/metrics"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Check the backend and show request statistics",
	Long: `Probe the backend once per area and print request timings.

Statistics are in-memory and cover the requests made by this command.

Examples:
  creassist usage
  creassist usage --api-url http://cre-backend:8000`,
	RunE: runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Errors are recorded in the snapshot; keep probing the other areas.
	_, _ = apiClient.PortfolioStats(ctx)
	_, _ = apiClient.ListDocuments(ctx)
	if u := authSvc.Current(); u != nil {
		_, _ = apiClient.ListSessions(ctx, u.ID)
	}

	fmt.Fprintf(stdout, "Backend: %s\n\n", cfg.APIURL)
	printClientStats(stdout, collector.Snapshot())
	return nil
}

// printClientStats displays request statistics.
func printClientStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "Client Statistics (in-memory, this process)\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", snap.UptimeSeconds)

	if len(snap.Operations) == 0 {
		fmt.Fprintln(w, "\nNo requests made.")
		return
	}
	for _, op := range snap.Operations {
		fmt.Fprintf(w, "\n%s:\n", op.Op)
		printOpStats(w, op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
