package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/msto63/nsms/internal/router/server"
	"github.com/msto63/nsms/internal/text"
	"github.com/spf13/cobra"
)

var (
	textsLocale string
	textsUser   string
	textsRemote string
)

var textsCmd = &cobra.Command{
	Use:   "texts",
	Short: "Manage reply texts",
	Long: `Reply texts are created from the locale bundles the first time a
reply is used. Edited texts override the bundles.`,
}

var textsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reply texts",
	RunE:  runTextsList,
}

var textsSetCmd = &cobra.Command{
	Use:   "set <slug> <text>",
	Short: "Store a reply text",
	Long: `Stores the text for a reply slug. Variables use {{.name}}, e.g.

  nsms texts set --locale rw register.ok "Murakoze {{.first_name}}!"

Written locally, the text reaches a running "nsms serve" once its text
cache expires (5 minutes). With --remote the text is stored through the
router API and applies at once:

  nsms texts set --remote http://localhost:8080 unknown "Send HELP"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTextsSet,
}

func init() {
	rootCmd.AddCommand(textsCmd)
	textsCmd.AddCommand(textsListCmd, textsSetCmd)

	textsListCmd.Flags().StringVar(&textsLocale, "locale", "", "only this locale")
	textsSetCmd.Flags().StringVar(&textsLocale, "locale", "", "locale of the text (default: default locale)")
	textsSetCmd.Flags().StringVar(&textsUser, "user", "cli", "author recorded with the change")
	textsSetCmd.Flags().StringVar(&textsRemote, "remote", "", "router base URL; store through the running server")
}

func runTextsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, "texts")
	if err != nil {
		return err
	}
	defer a.Close()

	texts, err := a.texts.List(ctx, textsLocale)
	if err != nil {
		return err
	}
	if texts == nil {
		texts = []*text.Text{}
	}
	return printOutput(cmd.OutOrStdout(), texts, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "SLUG\tLOCALE\tMODIFIED BY\tTEXT")
		for _, t := range texts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Slug, t.Locale, t.ModifiedBy, t.Text)
		}
	})
}

func runTextsSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	slug, body := args[0], strings.Join(args[1:], " ")
	if textsRemote != "" {
		return setTextRemote(ctx, cmd, slug, body)
	}

	a, err := openApp(ctx, "texts")
	if err != nil {
		return err
	}
	defer a.Close()

	locale := textsLocale
	if locale == "" {
		locale = a.cfg.Text.DefaultLocale
	}
	if err := a.catalog.Set(ctx, slug, locale, body, textsUser); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] updated\n", slug, locale)
	return nil
}

// setTextRemote stores a text through PUT /api/v1/texts of a running router.
func setTextRemote(ctx context.Context, cmd *cobra.Command, slug, body string) error {
	payload, err := json.Marshal(server.TextUpdate{Slug: slug, Locale: textsLocale, Text: body, User: textsUser})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	url := strings.TrimRight(textsRemote, "/") + "/api/v1/texts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("router not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e server.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("router rejected the text (%d): %s", resp.StatusCode, e.Error)
	}
	var stored server.TextUpdate
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] updated on %s\n", stored.Slug, stored.Locale, textsRemote)
	return nil
}
