package cmd

import (
	"bytes"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/msto63/nsms/foundation/sms/parser"
)

func TestApplyField(t *testing.T) {
	p := parser.New("reg James 10/12/44 O78838338l 7 extra words", ',').WithReferenceYear(2026)

	tests := []struct {
		field string
		value string
		ok    bool
	}{
		{"keyword:register|reg", "reg", true},
		{"date", "", false},
		{"word", "James", true},
		{"date", "1944-12-10", true},
		{"phone", "0788383381", true},
		{"hour", "7", true},
		{"int", "", false},
		{"rest", "extra words", true},
		{"word", "", false},
	}

	for _, tt := range tests {
		got, err := applyField(p, tt.field)
		if err != nil {
			t.Fatalf("applyField(%q) error = %v", tt.field, err)
		}
		if got.Value != tt.value || got.OK != tt.ok {
			t.Errorf("applyField(%q) = %+v, want %q/%v", tt.field, got, tt.value, tt.ok)
		}
	}

	if _, err := applyField(p, "keyword"); err == nil {
		t.Error("keyword without list should fail")
	}
	if _, err := applyField(p, "colour"); err == nil {
		t.Error("unknown field should fail")
	}
}

func TestPrintOutput(t *testing.T) {
	defer func(old string) { outputFormat = old }(outputFormat)

	result := ParseResult{Text: "help", WordCount: 1, Tokens: []string{"help"}}
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"word_count": 1`},
		{"yaml", "word_count: 1"},
		{"table", "remaining"},
	}

	for _, tt := range tests {
		outputFormat = tt.format
		var buf bytes.Buffer
		err := printOutput(&buf, result, func(w *tabwriter.Writer) {
			w.Write([]byte("remaining\n"))
		})
		if err != nil {
			t.Fatalf("%s: printOutput() error = %v", tt.format, err)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("%s: output %q lacks %q", tt.format, buf.String(), tt.want)
		}
	}

	outputFormat = "xml"
	if err := printOutput(&bytes.Buffer{}, result, nil); err == nil {
		t.Error("unknown format should fail")
	}
}
