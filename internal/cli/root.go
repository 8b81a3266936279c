// Package cli provides the command-line interface for tenantchat.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/raphaelgruber/tenantchat/internal/app"
	"github.com/raphaelgruber/tenantchat/internal/config"
	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// The client for the running command
	appClient *app.App
)

// errNotLoggedIn is returned by commands that need a session when there is none.
var errNotLoggedIn = errors.New("not logged in (run 'tenantchat login')")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tenantchat",
	Short: "Chat with your company's assistant",
	Long: `tenantchat is a client for the multi-tenant enterprise chat service.

Log in with your company domain, keep conversations with the assistant,
upload documents for summaries, and, with the right permissions, administer
your company's users.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip client setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg := config.Load()

		// The terminal UI owns the screen, so it logs to the file only
		var stderr io.Writer = os.Stderr
		if cmd.Name() == tuiCmd.Name() {
			stderr = nil
		}

		var err error
		appClient, err = app.New(cfg, stderr)
		if err != nil {
			return fmt.Errorf("start client: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeClient(cmd.ErrOrStderr())
	},
}

// closeClient prints statistics when asked and shuts the client down.
func closeClient(w io.Writer) {
	if appClient == nil {
		return
	}
	defer func() { appClient = nil }()

	if verbose {
		printStats(w, appClient.Metrics.Snapshot())
	}
	if err := appClient.Close(); err != nil {
		fmt.Fprintf(w, "Warning: failed to save session: %v\n", err)
	}
}

// enter bootstraps the session and applies the guard for location.
// It returns the session when the location may be shown.
func enter(ctx context.Context, location string) (models.Session, error) {
	s := appClient.Session.Bootstrap(ctx)

	d := guard.Resolve(s, location)
	switch d.Outcome {
	case guard.Allow:
		return s, nil
	case guard.Redirect:
		if d.To == guard.LoginPath {
			return s, errNotLoggedIn
		}
		return s, fmt.Errorf("%s is not available here (go to %s)", location, d.To)
	case guard.Denied, guard.NotFound:
		return s, errors.New(d.Message())
	default:
		return s, fmt.Errorf("session not ready for %s", location)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	// Post-run hooks are skipped when a command fails
	closeClient(rootCmd.ErrOrStderr())
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print request statistics on exit")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(statsCmd)
}
