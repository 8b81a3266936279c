package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/tenantchat/internal/chat"
	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/spf13/cobra"
)

var (
	sendNew   bool
	sendTitle string
)

var sendCmd = &cobra.Command{
	Use:   "send [chat-id] <message>",
	Short: "Send a message and print the assistant's reply",
	Long: `Send a message to a conversation and wait for the assistant's reply.

With --new a conversation is started first and only the message is given.

Examples:
  tenantchat send 01hx... "What changed in the travel policy?"
  tenantchat send --new "Draft a welcome email for new hires"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendNew, "new", false, "start a new conversation")
	sendCmd.Flags().StringVar(&sendTitle, "title", "", "title for the new conversation")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, err := enter(ctx, guard.HomePath); err != nil {
		return err
	}

	var chatID, content string
	switch {
	case sendNew && len(args) == 1:
		content = args[0]
	case !sendNew && len(args) == 2:
		chatID, content = args[0], args[1]
	case sendNew:
		return fmt.Errorf("with --new give only the message")
	default:
		return fmt.Errorf("give a chat id and a message, or use --new")
	}
	if strings.TrimSpace(content) == "" {
		return chat.ErrEmptyMessage
	}

	if sendNew {
		id, err := appClient.Chats.CreateChat(ctx, sendTitle)
		if err != nil {
			return fmt.Errorf("create chat: %w", err)
		}
		chatID = id
	}
	if err := appClient.Lifecycle.Navigate(ctx, chatID); err != nil {
		return fmt.Errorf("open chat: %w", err)
	}

	err := runPending("Waiting for the assistant", func() error {
		return appClient.Chats.SendMessage(ctx, chatID, content)
	})
	if errors.Is(err, errInterrupted) {
		return err
	}
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	out := cmd.OutOrStdout()
	msgs := appClient.Chats.State().Current.Messages
	if n := len(msgs); n > 0 {
		printMessage(out, msgs[n-1])
	}
	if sendNew {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("conversation "+chatID))
	}
	return nil
}
