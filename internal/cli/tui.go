package cli

import (
	"fmt"

	"github.com/raphaelgruber/tenantchat/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive chat interface",
	Long: `Open the full-screen chat interface.

Keys:
  ctrl+n       new conversation
  ctrl+d       delete the open conversation
  up/down      move through conversations
  enter        open the selected conversation / send
  tab          switch between the list and the input
  ctrl+c       quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tui.Run(appClient); err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	},
}
