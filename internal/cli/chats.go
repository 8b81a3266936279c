package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/spf13/cobra"
)

var chatsLimit int

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List and manage conversations",
	Long: `List and manage your conversations with the assistant.

Subcommands:
  list      List conversations, most recent first (default)
  new       Start a conversation
  show      Print a conversation
  rename    Change a conversation's title
  delete    Delete a conversation and its messages

Examples:
  tenantchat chats
  tenantchat chats new "Quarterly planning"
  tenantchat chats show 01hx...
  tenantchat chats rename 01hx... "Q3 planning"`,
	Args: cobra.NoArgs,
	RunE: runChatsList,
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE:  runChatsList,
}

var chatsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start a conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChatsNew,
}

var chatsShowCmd = &cobra.Command{
	Use:   "show <chat-id>",
	Short: "Print a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsShow,
}

var chatsRenameCmd = &cobra.Command{
	Use:   "rename <chat-id> <title>",
	Short: "Change a conversation's title",
	Args:  cobra.ExactArgs(2),
	RunE:  runChatsRename,
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsDelete,
}

func init() {
	chatsCmd.Flags().IntVarP(&chatsLimit, "limit", "n", 0, "max conversations to show (0 for all)")
	chatsListCmd.Flags().IntVarP(&chatsLimit, "limit", "n", 0, "max conversations to show (0 for all)")

	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsNewCmd)
	chatsCmd.AddCommand(chatsShowCmd)
	chatsCmd.AddCommand(chatsRenameCmd)
	chatsCmd.AddCommand(chatsDeleteCmd)
}

func runChatsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, guard.HomePath); err != nil {
		return err
	}
	if err := appClient.Chats.FetchHistory(ctx); err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	out := cmd.OutOrStdout()
	history := appClient.Chats.State().History
	if len(history) == 0 {
		fmt.Fprintln(out, "No conversations yet. Start one with 'tenantchat chats new'.")
		return nil
	}
	if chatsLimit > 0 && len(history) > chatsLimit {
		history = history[:chatsLimit]
	}

	fmt.Fprintf(out, "Conversations (%d):\n\n", len(history))
	for _, c := range history {
		fmt.Fprintf(out, "- %s  %s\n", c.ID, c.Title)
		if verbose {
			fmt.Fprintf(out, "  updated %s\n", c.UpdatedAt.Local().Format(time.DateTime))
		}
	}
	return nil
}

func runChatsNew(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, guard.HomePath); err != nil {
		return err
	}

	var title string
	if len(args) == 1 {
		title = args[0]
	}
	id, err := appClient.Chats.CreateChat(ctx, title)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created conversation %s\n", id)
	return nil
}

func runChatsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]
	if _, err := enter(ctx, guard.ChatPath(id)); err != nil {
		return err
	}
	if err := appClient.Lifecycle.Navigate(ctx, id); err != nil {
		return fmt.Errorf("open chat: %w", err)
	}

	conv := appClient.Chats.State().Current
	out := cmd.OutOrStdout()
	if len(conv.Messages) == 0 {
		fmt.Fprintln(out, "No messages yet.")
		return nil
	}
	for _, m := range conv.Messages {
		printMessage(out, m)
	}
	return nil
}

func runChatsRename(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, guard.HomePath); err != nil {
		return err
	}
	title := strings.TrimSpace(args[1])
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if err := appClient.Chats.RenameChat(ctx, args[0], title); err != nil {
		return fmt.Errorf("rename chat: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", args[0], title)
	return nil
}

func runChatsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, guard.HomePath); err != nil {
		return err
	}
	if err := appClient.Chats.DeleteChat(ctx, args[0]); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

// printMessage writes one message in transcript form.
func printMessage(w io.Writer, m models.Message) {
	speaker := defaultTheme.userStyle().Render("you")
	if m.Role == models.RoleAssistant {
		speaker = defaultTheme.assistantStyle().Render("assistant")
	}
	fmt.Fprintf(w, "%s: %s\n", speaker, m.Content)
	for _, a := range m.Attachments {
		fmt.Fprintf(w, "  [attachment] %s (%d bytes)\n", a.Filename, a.Size)
	}
	if verbose && m.ModelUsed != "" {
		fmt.Fprintf(w, "  %s\n", defaultTheme.hintStyle().Render(fmt.Sprintf("%s, %.2fs", m.ModelUsed, m.ResponseTime)))
	}
}
