package cmd

import (
	"context"

	"github.com/msto63/nsms/internal/tui"
	"github.com/spf13/cobra"
)

var consoleSender string

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive SMS tester",
	Long: `Opens a terminal console that plays a phone on the tester backend.
Typed texts go through the router; replies appear as they are sent.
Use /sender <number> to switch phones.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVar(&consoleSender, "sender", "0700000000", "initial phone number")
}

func runConsole(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), "console")
	if err != nil {
		return err
	}
	defer a.Close()

	replies, unsubscribe := a.tester.Subscribe(32)
	defer unsubscribe()

	return tui.Run(tui.Config{
		Router:  a.router,
		Backend: a.tester.Name(),
		Sender:  consoleSender,
		Replies: replies,
	})
}
