package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/msto63/nsms/foundation/sms/parser"
	"github.com/spf13/cobra"
)

var (
	parseSeparators string
	parseFields     string
	parseYear       int
)

var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Tokenize a message and interpret its fields",
	Long: `Runs the SMS tokenizer on a text.

Without --fields every token is listed. With --fields the accessors are
applied in order, exactly as a command handler would:

  keyword:<kw>[|<kw>...]  word  rest  int  hour  phone  date

A field that does not match is reported and nothing is consumed.

Examples:
  nsms parse "REG,James Kamau,12.03.1977"
  nsms parse --sep , --fields keyword:reg,word,word,date,phone "reg James Kirk 10/12/44 0788383381"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parseSeparators, "sep", "", "extra separator runes (default from config)")
	parseCmd.Flags().StringVar(&parseFields, "fields", "", "comma separated field list")
	parseCmd.Flags().IntVar(&parseYear, "year", 0, "reference year for two-digit years (default: current year)")
}

// FieldResult is one interpreted field.
type FieldResult struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	OK    bool   `json:"ok" yaml:"ok"`
}

// ParseResult is the outcome of nsms parse.
type ParseResult struct {
	Text      string        `json:"text" yaml:"text"`
	WordCount int           `json:"word_count" yaml:"word_count"`
	Tokens    []string      `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Fields    []FieldResult `json:"fields,omitempty" yaml:"fields,omitempty"`
	Remaining string        `json:"remaining" yaml:"remaining"`
}

func runParse(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	seps := parseSeparators
	if !cmd.Flags().Changed("sep") {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		seps = cfg.Parser.Separators
	}

	p := parser.New(text, []rune(seps)...)
	if parseYear > 0 {
		p.WithReferenceYear(parseYear)
	}

	result := ParseResult{Text: text, WordCount: p.WordCount()}
	if parseFields == "" {
		for {
			word, ok := p.NextWord()
			if !ok {
				break
			}
			result.Tokens = append(result.Tokens, word)
		}
	} else {
		for _, field := range strings.Split(parseFields, ",") {
			fr, err := applyField(p, strings.TrimSpace(field))
			if err != nil {
				return err
			}
			result.Fields = append(result.Fields, fr)
		}
	}
	result.Remaining = p.Remaining()

	return printOutput(cmd.OutOrStdout(), result, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "words:\t%d\n", result.WordCount)
		for i, tok := range result.Tokens {
			fmt.Fprintf(w, "%d\t%s\n", i+1, tok)
		}
		for _, f := range result.Fields {
			mark := "ok"
			if !f.OK {
				mark = "no match"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", f.Field, f.Value, mark)
		}
		fmt.Fprintf(w, "remaining:\t%q\n", result.Remaining)
	})
}

// applyField runs the accessor named by field on p.
func applyField(p *parser.Parser, field string) (FieldResult, error) {
	name, arg, _ := strings.Cut(field, ":")
	fr := FieldResult{Field: field}

	switch strings.ToLower(name) {
	case "keyword":
		if arg == "" {
			return fr, fmt.Errorf("field %q needs keywords, e.g. keyword:reg|register", field)
		}
		fr.Value, fr.OK = p.NextKeyword(strings.Split(arg, "|"))
	case "word":
		fr.Value, fr.OK = p.NextWord()
	case "rest":
		fr.Value, fr.OK = p.NextRest()
	case "int":
		fr.Value, fr.OK = p.NextInt()
	case "phone":
		fr.Value, fr.OK = p.NextPhone()
	case "hour":
		hour, ok := p.NextHour()
		if ok {
			fr.Value = fmt.Sprint(hour)
		}
		fr.OK = ok
	case "date":
		date, ok := p.NextDate()
		if ok {
			fr.Value = date.Format("2006-01-02")
		}
		fr.OK = ok
	default:
		return fr, fmt.Errorf("unknown field %q", name)
	}
	return fr, nil
}
