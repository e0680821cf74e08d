package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/msto63/nsms/foundation/utils/stringx"
	"github.com/msto63/nsms/internal/router"
	"github.com/spf13/cobra"
)

var (
	sendBackend string
	sendSender  string
)

var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Inject an incoming SMS and print the reply",
	Long: `Feeds a text through the router as if it arrived on the tester
backend. The incoming message and the reply are logged like real traffic.

Example:
  nsms send --sender 0788123123 "REG James Kamau 12.03.1977"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendBackend, "backend", "", "backend the message arrives on (default: tester backend)")
	sendCmd.Flags().StringVar(&sendSender, "sender", "0700000000", "sender phone number")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := openApp(ctx, "send")
	if err != nil {
		return err
	}
	defer a.Close()

	backend := stringx.FirstNonBlank(sendBackend, a.tester.Name())

	res, err := a.router.HandleIncoming(ctx, backend, sendSender, strings.Join(args, " "))
	if err != nil && res == nil {
		return err
	}
	printErr := printOutput(cmd.OutOrStdout(), res, func(w *tabwriter.Writer) {
		printResult(w, res)
	})
	if err != nil {
		return err
	}
	return printErr
}

func printResult(w *tabwriter.Writer, res *router.Result) {
	fmt.Fprintf(w, "in\t%s\t%s\n", res.Incoming.Identity, res.Incoming.Text)
	handler := res.Handler
	if handler == "" {
		handler = "(unknown keyword)"
	}
	fmt.Fprintf(w, "handler\t%s\n", handler)
	if res.Reply != nil {
		fmt.Fprintf(w, "out\t%s\t%s\n", res.Reply.Status, res.Reply.Text)
	}
}
