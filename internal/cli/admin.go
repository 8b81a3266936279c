package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/raphaelgruber/tenantchat/internal/client"
	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/spf13/cobra"
)

var (
	adminPage   int
	adminLimit  int
	adminSearch string

	newUserName     string
	newUserEmail    string
	newUserPassword string
	newUserRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administer your company (requires admin permissions)",
	Long: `Administer users, roles and activity logs of your company.
Platform administrators can also manage companies.

Each page needs a permission; pages you may not open are refused.

Examples:
  tenantchat admin
  tenantchat admin users --search alex
  tenantchat admin users add --name Bob --email bob@acme.com --role employee
  tenantchat admin logs --limit 20`,
	Args: cobra.NoArgs,
	RunE: runAdmin,
}

var adminCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies (platform administrators)",
	Args:  cobra.NoArgs,
	RunE:  runAdminCompanies,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users of your company",
	Args:  cobra.NoArgs,
	RunE:  runAdminUsers,
}

var adminUsersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user in your company",
	Args:  cobra.NoArgs,
	RunE:  runAdminUsersAdd,
}

var adminUsersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <user-id>",
	Short: "Disable a user's login",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersDeactivate,
}

var adminRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List roles and their permissions",
	Args:  cobra.NoArgs,
	RunE:  runAdminRoles,
}

var adminLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the activity log, newest first",
	Args:  cobra.NoArgs,
	RunE:  runAdminLogs,
}

func init() {
	for _, c := range []*cobra.Command{adminCompaniesCmd, adminUsersCmd, adminLogsCmd} {
		c.Flags().IntVar(&adminPage, "page", 1, "page number")
		c.Flags().IntVarP(&adminLimit, "limit", "n", 0, "page size (server default when 0)")
	}
	adminCompaniesCmd.Flags().StringVarP(&adminSearch, "search", "s", "", "filter by name or domain")
	adminUsersCmd.Flags().StringVarP(&adminSearch, "search", "s", "", "filter by name or email")

	adminUsersAddCmd.Flags().StringVar(&newUserName, "name", "", "full name")
	adminUsersAddCmd.Flags().StringVar(&newUserEmail, "email", "", "email address")
	adminUsersAddCmd.Flags().StringVar(&newUserPassword, "password", "", "initial password")
	adminUsersAddCmd.Flags().StringVar(&newUserRole, "role", "employee", "role name")
	_ = adminUsersAddCmd.MarkFlagRequired("name")
	_ = adminUsersAddCmd.MarkFlagRequired("email")
	_ = adminUsersAddCmd.MarkFlagRequired("password")

	adminUsersCmd.AddCommand(adminUsersAddCmd)
	adminUsersCmd.AddCommand(adminUsersDeactivateCmd)

	adminCmd.AddCommand(adminCompaniesCmd)
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminRolesCmd)
	adminCmd.AddCommand(adminLogsCmd)
}

func listOptions() client.ListOptions {
	return client.ListOptions{Page: adminPage, Limit: adminLimit, Search: adminSearch}
}

func runAdmin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s := appClient.Session.Bootstrap(ctx)

	d := guard.Resolve(s, guard.AdminPath)
	switch d.Outcome {
	case guard.Redirect:
		if d.To == guard.LoginPath {
			return errNotLoggedIn
		}
	case guard.Denied:
		return errors.New(d.Message())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Admin pages for %s:\n\n", s.RoleName)
	for _, r := range guard.VisibleAdminRoutes(s) {
		mark := " "
		if r.Path == d.To {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %-14s %s\n", mark, r.Title, r.Path)
	}
	return nil
}

func runAdminCompanies(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, "/admin/companies"); err != nil {
		return err
	}
	page, err := appClient.Client.ListCompanies(ctx, listOptions())
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Companies (%d):\n\n", page.Total)
	for _, c := range page.Companies {
		status := ""
		if !c.IsActive {
			status = " [inactive]"
		}
		fmt.Fprintf(out, "- %s (%s) %s%s\n", c.Name, c.Domain, c.ID, status)
	}
	printPagination(out, page.Pagination)
	return nil
}

func runAdminUsers(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, "/admin/users"); err != nil {
		return err
	}
	page, err := appClient.Client.ListUsers(ctx, listOptions())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Users (%d):\n\n", page.Total)
	for _, u := range page.Users {
		status := ""
		if !u.IsActive {
			status = " [inactive]"
		}
		fmt.Fprintf(out, "- %s <%s> %s%s\n", u.Name, u.Email, u.RoleName, status)
		if verbose {
			fmt.Fprintf(out, "  id %s\n", u.ID)
		}
	}
	printPagination(out, page.Pagination)
	return nil
}

// requireManageUsers gates user changes, which need more than viewing the list.
func requireManageUsers(ctx context.Context) error {
	if _, err := enter(ctx, "/admin/users"); err != nil {
		return err
	}
	d := guard.RequirePermission(appClient.Session.State(), "/admin/users", models.PermissionManageUsers)
	if d.Outcome != guard.Allow {
		return errors.New(d.Message())
	}
	return nil
}

func runAdminUsersAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := requireManageUsers(ctx); err != nil {
		return err
	}

	roles, err := appClient.Client.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	var roleID string
	for _, r := range roles {
		if r.Name == newUserRole {
			roleID = r.ID
		}
	}
	if roleID == "" {
		return fmt.Errorf("unknown role %q", newUserRole)
	}

	user, err := appClient.Client.CreateUser(ctx, client.CreateUserInput{
		Name:     newUserName,
		Email:    newUserEmail,
		Password: newUserPassword,
		RoleID:   roleID,
		IsActive: true,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s <%s> as %s (%s)\n", user.Name, user.Email, user.RoleName, user.ID)
	return nil
}

func runAdminUsersDeactivate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := requireManageUsers(ctx); err != nil {
		return err
	}
	if err := appClient.Client.DeactivateUser(ctx, args[0]); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", args[0])
	return nil
}

func runAdminRoles(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, "/admin/roles"); err != nil {
		return err
	}
	roles, err := appClient.Client.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Roles (%d):\n\n", len(roles))
	for _, r := range roles {
		fmt.Fprintf(out, "- %s (%d permissions)\n", r.Name, len(r.Permissions))
		if verbose {
			for _, p := range r.Permissions {
				fmt.Fprintf(out, "    %s\n", p)
			}
		}
	}
	return nil
}

func runAdminLogs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, "/admin/logs"); err != nil {
		return err
	}
	page, err := appClient.Client.ListActivityLogs(ctx, listOptions())
	if err != nil {
		return fmt.Errorf("list activity logs: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Activity (%d):\n\n", page.Total)
	for _, l := range page.Logs {
		mark := defaultTheme.completedStyle().Render("✓")
		if !l.Success {
			mark = defaultTheme.errorStyle().Render("✗")
		}
		fmt.Fprintf(out, "%s %s %-8s %-10s %s\n", mark, l.Timestamp.Local().Format(time.DateTime), l.Action, l.Resource, l.UserEmail)
	}
	printPagination(out, page.Pagination)
	return nil
}

func printPagination(w io.Writer, p models.Pagination) {
	if p.TotalPages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d (--page to see more)\n", p.Page, p.TotalPages)
	}
}
