package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginDomain   string
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your company's workspace",
	Long: `Log in with your company domain, email and password.

The session cookie is saved so later commands stay logged in.
The password is prompted for when not given.

Examples:
  tenantchat login --domain acme --email a@acme.com
  TENANTCHAT_DOMAIN=acme tenantchat login -e a@acme.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and their permissions",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginDomain, "domain", "d", "", "company domain (default: last used or $TENANTCHAT_DOMAIN)")
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "email address (default: last used)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when empty)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	s := appClient.Session.Bootstrap(ctx)
	if d := guard.Resolve(s, guard.LoginPath); d.Outcome == guard.Redirect {
		fmt.Fprintf(out, "Already logged in as %s (%s).\n", s.User.Email, s.CompanyName)
		return nil
	}

	domain := firstNonEmpty(loginDomain, appClient.Domain())
	email := firstNonEmpty(loginEmail, appClient.Email())
	in := bufio.NewReader(cmd.InOrStdin())

	var err error
	if domain == "" {
		if domain, err = prompt(out, in, "Company domain: "); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = prompt(out, in, "Email: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptPassword(out, in); err != nil {
			return err
		}
	}

	creds := client.Credentials{Domain: domain, Email: email, Password: password}
	if err := appClient.Session.Login(ctx, creds); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	appClient.Remember(strings.TrimSpace(domain), strings.TrimSpace(email))

	s = appClient.Session.State()
	fmt.Fprintf(out, "Logged in as %s (%s) at %s.\n", s.User.Name, s.RoleName, s.CompanyName)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if s := appClient.Session.Bootstrap(ctx); !s.IsAuthenticated {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	if err := appClient.Session.Logout(ctx); err != nil {
		// The local session is gone either way
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server logout failed: %s\n", client.Message(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := enter(context.Background(), guard.HomePath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Name:     %s\n", s.User.Name)
	fmt.Fprintf(out, "Email:    %s\n", s.User.Email)
	fmt.Fprintf(out, "Company:  %s (%s)\n", s.CompanyName, s.CompanyID)
	fmt.Fprintf(out, "Role:     %s\n", s.RoleName)
	if verbose {
		fmt.Fprintln(out, "Permissions:")
		for _, p := range s.Permissions.Slice() {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}
	if routes := guard.VisibleAdminRoutes(s); len(routes) > 0 {
		names := make([]string, len(routes))
		for i, r := range routes {
			names[i] = r.Title
		}
		fmt.Fprintf(out, "Admin:    %s\n", strings.Join(names, ", "))
	}
	return nil
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads the password without echo when stdin is a terminal.
func promptPassword(out io.Writer, in *bufio.Reader) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return prompt(out, in, "Password: ")
	}
	fmt.Fprint(out, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
