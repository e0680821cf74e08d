package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/msto63/nsms/foundation/utils/stringx"
	"github.com/msto63/nsms/internal/message"
	"github.com/spf13/cobra"
)

var (
	msgBackend   string
	msgSearch    string
	msgDirection string
	msgSince     string
	msgLimit     int
	msgOffset    int
	msgFile      string
	msgOlderThan time.Duration
	msgDays      int
)

var messagesCmd = &cobra.Command{
	Use:     "messages",
	Aliases: []string{"msg"},
	Short:   "Inspect the message log",
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages, newest first",
	RunE:  runMessagesList,
}

var messagesCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export messages as CSV",
	RunE:  runMessagesCSV,
}

var messagesMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show incoming and outgoing volume per month",
	RunE:  runMessagesMonthly,
}

var messagesDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show message counts per day",
	RunE:  runMessagesDaily,
}

var messagesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Count unsent and failed outgoing messages",
	RunE:  runMessagesStatus,
}

func init() {
	rootCmd.AddCommand(messagesCmd)
	messagesCmd.AddCommand(messagesListCmd, messagesCSVCmd, messagesMonthlyCmd, messagesDailyCmd, messagesStatusCmd)

	for _, c := range []*cobra.Command{messagesListCmd, messagesCSVCmd, messagesMonthlyCmd} {
		c.Flags().StringVar(&msgBackend, "backend", "", "only this backend")
		c.Flags().StringVarP(&msgSearch, "search", "s", "", "text or number contains")
		c.Flags().StringVar(&msgSince, "since", "", "only messages on or after this date (YYYY-MM-DD)")
	}
	for _, c := range []*cobra.Command{messagesListCmd, messagesCSVCmd, messagesDailyCmd} {
		c.Flags().StringVarP(&msgDirection, "direction", "d", "", "I (incoming) or O (outgoing)")
	}
	messagesListCmd.Flags().IntVarP(&msgLimit, "limit", "n", 50, "maximum number of messages")
	messagesListCmd.Flags().IntVar(&msgOffset, "offset", 0, "skip this many messages")
	messagesCSVCmd.Flags().StringVarP(&msgFile, "file", "f", "", "write to file instead of stdout")
	messagesDailyCmd.Flags().IntVar(&msgDays, "days", 30, "number of days back")
	messagesStatusCmd.Flags().DurationVar(&msgOlderThan, "older-than", 0, "age after which queued messages count as unsent (default from config)")
}

// messageFilter builds the filter from the flags. Only list pages.
func messageFilter(paged bool) (message.Filter, error) {
	f := message.Filter{
		Backend: msgBackend,
		Search:  msgSearch,
	}
	if paged {
		f.Limit, f.Offset = msgLimit, msgOffset
	}
	switch msgDirection {
	case "":
	case "I", "i", "in":
		f.Direction = message.Incoming
	case "O", "o", "out":
		f.Direction = message.Outgoing
	default:
		return f, fmt.Errorf("invalid direction %q, use I or O", msgDirection)
	}
	if msgSince != "" {
		since, err := time.Parse("2006-01-02", msgSince)
		if err != nil {
			return f, fmt.Errorf("invalid --since %q: %w", msgSince, err)
		}
		f.Since = since
	}
	return f, nil
}

func runMessagesList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	filter, err := messageFilter(true)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, "messages")
	if err != nil {
		return err
	}
	defer a.Close()

	msgs, err := a.messages.Query(ctx, filter)
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), msgs, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "DATE\tDIR\tBACKEND\tNUMBER\tSTATUS\tTEXT")
		for _, m := range msgs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				m.Date.Local().Format("2006-01-02 15:04:05"), m.Direction, m.Backend, m.Identity, m.Status, stringx.Truncate(stringx.SingleLine(m.Text), 60, "..."))
		}
	})
}

func runMessagesCSV(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	filter, err := messageFilter(false)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, "messages")
	if err != nil {
		return err
	}
	defer a.Close()

	msgs, err := a.messages.Query(ctx, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if msgFile != "" {
		f, err := os.Create(msgFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return message.WriteCSV(out, msgs)
}

func runMessagesMonthly(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	filter, err := messageFilter(false)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, "messages")
	if err != nil {
		return err
	}
	defer a.Close()

	volumes, err := a.messages.Monthly(ctx, filter)
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), volumes, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "MONTH\tIN\tOUT\tTOTAL")
		for _, v := range volumes {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", v.Month.Format("2006-01"), v.Incoming, v.Outgoing, v.Total)
		}
	})
}

func runMessagesDaily(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	filter, err := messageFilter(false)
	if err != nil {
		return err
	}
	if filter.Direction == "" {
		filter.Direction = message.Incoming
	}
	a, err := openApp(ctx, "messages")
	if err != nil {
		return err
	}
	defer a.Close()

	since := time.Now().UTC().AddDate(0, 0, -msgDays)
	counts, err := a.messages.Daily(ctx, filter.Direction, since)
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), counts, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "DAY\tCOUNT")
		for _, c := range counts {
			fmt.Fprintf(w, "%s\t%d\n", c.Day.Format("2006-01-02"), c.Count)
		}
	})
}

func runMessagesStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, "messages")
	if err != nil {
		return err
	}
	defer a.Close()

	age := msgOlderThan
	if age == 0 {
		age = a.cfg.Router.UnsentAfter.Duration
	}
	counts, err := a.messages.StatusCounts(ctx, time.Now().UTC().Add(-age))
	if err != nil {
		return err
	}
	return printOutput(cmd.OutOrStdout(), counts, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "unsent (older than %s):\t%d\n", age, counts.Unsent)
		fmt.Fprintf(w, "error:\t%d\n", counts.Errored)
	})
}
