package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/raphaelgruber/tenantchat/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [endpoint]",
	Short: "Check the API and show request timings",
	Long: `Check the configured API and show per-endpoint request statistics.
With an endpoint, only that endpoint's timings are shown in detail.

Every other command prints the same statistics on exit with --verbose.

Examples:
  tenantchat stats
  tenantchat stats "GET /chats"
  tenantchat chats list -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	s := appClient.Session.Bootstrap(ctx)
	fmt.Fprintf(out, "API:      %s\n", appClient.Client.BaseURL())
	if s.IsAuthenticated {
		fmt.Fprintf(out, "Session:  %s at %s\n", s.User.Email, s.CompanyName)
		if err := appClient.Chats.FetchHistory(ctx); err != nil {
			fmt.Fprintf(out, "Chats:    %s\n", defaultTheme.errorStyle().Render(err.Error()))
		} else {
			fmt.Fprintf(out, "Chats:    %d\n", len(appClient.Chats.State().History))
		}
	} else {
		fmt.Fprintln(out, "Session:  not logged in")
	}
	fmt.Fprintln(out)

	if len(args) == 1 {
		printOperation(out, args[0], appClient.Metrics.Operation(args[0]))
		return nil
	}
	if !verbose {
		printStats(out, appClient.Metrics.Snapshot())
	}
	return nil
}

// printStats prints the per-endpoint request statistics.
func printStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "Requests (uptime %.1fs)\n", snap.UptimeSeconds)
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
	if len(snap.Operations) == 0 {
		fmt.Fprintln(w, "No requests made.")
		return
	}
	fmt.Fprintf(w, "%-32s %5s %5s %8s %8s\n", "Endpoint", "Count", "Fail", "Avg ms", "Max ms")
	for _, op := range snap.Operations {
		fmt.Fprintf(w, "%-32s %5d %5d %8.1f %8d\n", op.Operation, op.Count, op.Failures, op.AvgTimeMs, op.MaxTimeMs)
	}
}

// printOperation prints the timings of a single endpoint.
func printOperation(w io.Writer, name string, op *metrics.OperationSnapshot) {
	if op == nil {
		fmt.Fprintf(w, "No requests to %s.\n", name)
		return
	}
	fmt.Fprintf(w, "%s\n", op.Operation)
	fmt.Fprintf(w, "  Requests: %d (%d failed)\n", op.Count, op.Failures)
	fmt.Fprintf(w, "  Time:     min %d ms, avg %.1f ms, max %d ms\n", op.MinTimeMs, op.AvgTimeMs, op.MaxTimeMs)
}
