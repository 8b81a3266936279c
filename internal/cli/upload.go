package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/tenantchat/internal/guard"
	"github.com/raphaelgruber/tenantchat/internal/models"
	"github.com/spf13/cobra"
)

var uploadAction string

var uploadCmd = &cobra.Command{
	Use:   "upload <chat-id> <file>",
	Short: "Upload a document for the assistant to process",
	Long: `Upload a document (up to 10MB) into a conversation.

The assistant summarizes it, or extracts its key terms with --action extract.

Examples:
  tenantchat upload 01hx... report.pdf
  tenantchat upload 01hx... notes.txt --action extract`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadAction, "action", "a", string(models.DocumentSummarize), "what to do with the document (summarize, extract)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	chatID, path := args[0], args[1]

	action := models.DocumentAction(uploadAction)
	if !action.Valid() {
		return fmt.Errorf("unknown action %q (use summarize or extract)", uploadAction)
	}
	if _, err := enter(ctx, guard.ChatPath(chatID)); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	if err := appClient.Lifecycle.Navigate(ctx, chatID); err != nil {
		return fmt.Errorf("open chat: %w", err)
	}

	var result *models.DocumentResult
	err = runPending("Processing "+filepath.Base(path), func() error {
		var err error
		result, err = appClient.Chats.UploadDocument(ctx, chatID, filepath.Base(path), f, action)
		return err
	})
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}

	out := cmd.OutOrStdout()
	printMessage(out, result.AIMessage)
	return nil
}
