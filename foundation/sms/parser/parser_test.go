// File: parser_test.go
// Title: SMS Parser Unit Tests
// Description: Table-driven tests for the tokenizer primitive and every typed
//              accessor, covering separator sets, keypad confusions, phone
//              lengths, date validation and end-to-end command parsing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial test suite

package parser

import (
	"testing"
	"time"
)

// referenceYear pins two-digit year expansion in tests.
const referenceYear = 2026

func newTestParser(message string, separators ...rune) *Parser {
	return New(message, separators...).WithReferenceYear(referenceYear)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParser_NextWord(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		separators []rune
		want       string
		wantOK     bool
	}{
		{"space", "reg bach", nil, "reg", true},
		{"comma", "reg, bach", []rune{','}, "reg", true},
		{"dot", "reg. bach", []rune{'.'}, "reg", true},

		{"all separators comma", "reg, bach", []rune{' ', ',', '.'}, "reg", true},
		{"all separators dot", "reg. bach", []rune{' ', ',', '.'}, "reg", true},
		{"reordered separators", "reg, bach", []rune{'.', ',', ' '}, "reg", true},
		{"reordered separators again", "reg, bach", []rune{',', ' ', '.'}, "reg", true},

		{"glued by dot", "reg.bach", []rune{' ', ',', '.'}, "reg", true},
		{"glued by dot comma", "reg.,bach", []rune{' ', ',', '.'}, "reg", true},
		{"glued by double dot", "reg..bach", []rune{' ', ',', '.'}, "reg", true},
		{"glued by comma", "reg,bach", []rune{' ', ',', '.'}, "reg", true},

		{"single letter", "r handell", nil, "r", true},
		{"single letter comma", "r, handell", []rune{','}, "r", true},
		{"single letter dot", "r. handell", []rune{'.'}, "r", true},

		{"only comma", ", ", []rune{','}, "", false},
		{"only dot", ". ", []rune{'.'}, "", false},
		{"only space", " ", []rune{',', ' ', '.'}, "", false},
		{"comma alone", ",", []rune{',', ' ', '.'}, "", false},
		{"mixed separators", ", . ,, ", []rune{',', ' ', '.'}, "", false},
		{"space then dots", " ...", []rune{',', ' ', '.'}, "", false},
		{"long separator run", " ..,, ..,,", []rune{',', ' ', '.'}, "", false},
		{"alternating separators", ",.,. ,.,. ", []rune{',', ' ', '.'}, "", false},
		{"empty", "", nil, "", false},
		{"blank", "  ", nil, "", false},

		{"dots are content by default", "..", nil, "..", true},
		{"dots are content with comma separator", "..", []rune{','}, "..", true},
		{"commas are separators", ",,", []rune{','}, "", false},
		{"commas are content with dot separator", ",,", []rune{'.'}, ",,", true},
		{"dots are separators", "..", []rune{'.'}, "", false},

		{"keeps casing and punctuation", "  O'Brien-Smith rest", nil, "O'Brien-Smith", true},
		{"no digit repair", "l2o", nil, "l2o", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message, tt.separators...)
			got, ok := p.NextWord()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextWord() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParser_NextKeyword(t *testing.T) {
	keywords := []string{"register", "reg"}

	tests := []struct {
		name       string
		message    string
		separators []rune
		want       string
		wantOK     bool
	}{
		{"short", "reg bach", nil, "reg", true},
		{"short comma", "reg, bach", []rune{','}, "reg", true},
		{"short dot", "reg. bach", []rune{'.'}, "reg", true},
		{"short all separators", "reg bach", []rune{'.', ' ', ','}, "reg", true},
		{"short all separators dot", "reg. bach", []rune{'.', ' ', ','}, "reg", true},
		{"short all separators comma", "reg, bach", []rune{'.', ' ', ','}, "reg", true},

		{"long", "register bach", nil, "register", true},
		{"long comma", "register, bach", []rune{','}, "register", true},
		{"long dot", "register. bach", []rune{'.'}, "register", true},
		{"long all separators dot", "register. bach", []rune{'.', ' ', ','}, "register", true},
		{"long all separators", "register bach", []rune{'.', ' ', ','}, "register", true},
		{"long all separators comma", "register, bach", []rune{'.', ' ', ','}, "register", true},

		{"upper case", "REG bach", nil, "reg", true},
		{"upper case comma", "REG, bach", []rune{','}, "reg", true},
		{"upper case dot", "REG. bach", []rune{'.'}, "reg", true},
		{"mixed case", "ReGiStEr bach", nil, "register", true},

		{"not a keyword", "notkeyword bach", nil, "", false},
		{"not a keyword comma", "notkeyword, bach", []rune{','}, "", false},
		{"not a keyword dot", "notkeyword. bach", []rune{'.'}, "", false},
		{"not a keyword all dot", "notkeyword. bach", []rune{'.', ' ', ','}, "", false},
		{"not a keyword all", "notkeyword bach", []rune{'.', ' ', ','}, "", false},
		{"not a keyword all comma", "notkeyword, bach", []rune{'.', ' ', ','}, "", false},
		{"prefix only", "regi bach", nil, "", false},

		{"blank", " ", nil, "", false},
		{"comma only", ",", []rune{','}, "", false},
		{"dot only", ".", []rune{'.'}, "", false},
		{"blank all", " ", []rune{',', ' ', '.'}, "", false},
		{"comma only all", ",", []rune{',', ' ', '.'}, "", false},
		{"dot only duplicated separators", ".", []rune{'.', ' ', '.'}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message, tt.separators...)
			got, ok := p.NextKeyword(keywords)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextKeyword() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParser_NextKeyword_FirstMatchWins(t *testing.T) {
	p := newTestParser("REG bach")
	got, ok := p.NextKeyword([]string{"Reg", "reg"})
	if !ok || got != "Reg" {
		t.Errorf("NextKeyword() = (%q, %v), want (%q, true)", got, ok, "Reg")
	}
}

func TestParser_NextKeyword_MissLeavesToken(t *testing.T) {
	p := newTestParser("notkeyword bach")

	if _, ok := p.NextKeyword([]string{"register", "reg"}); ok {
		t.Fatal("NextKeyword() should not match")
	}

	word, ok := p.NextWord()
	if !ok || word != "notkeyword" {
		t.Errorf("NextWord() after failed keyword = (%q, %v), want (%q, true)", word, ok, "notkeyword")
	}
}

func TestParser_NextHour(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		separators []rune
		want       int
		wantOK     bool
	}{
		{"compact reading", " 1245 CET", nil, 12, true},
		{"compact reading comma", " 1245, CET", []rune{','}, 12, true},
		{"compact reading dot", " 1245. CET", []rune{'.'}, 12, true},
		{"lower l is one", " l245", nil, 12, true},
		{"upper L is one", " L245", nil, 12, true},
		{"lower o is zero", " 2o45", nil, 20, true},
		{"upper O is zero", " 2O45", nil, 20, true},
		{"single digit", "9 am", nil, 9, true},
		{"two digits", "07", nil, 7, true},
		{"three digits", "930", nil, 93, true},
		{"not numeric", "noon", nil, 0, false},
		{"colon is not a digit", "12:45", nil, 0, false},
		{"empty", "", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message, tt.separators...)
			got, ok := p.NextHour()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextHour() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParser_NextPhone(t *testing.T) {
	allSeparators := []rune{'.', ' ', ','}

	tests := []struct {
		name       string
		message    string
		separators []rune
		want       string
		wantOK     bool
	}{
		{"local", "  0788383388 Bach", nil, "0788383388", true},
		{"local comma", "  0788383388, Bach", []rune{','}, "0788383388", true},
		{"local dot", "  0788383388. Bach", []rune{'.'}, "0788383388", true},
		{"local all dot", "  0788383388. Bach", allSeparators, "0788383388", true},
		{"local all", "  0788383388 Bach", allSeparators, "0788383388", true},
		{"local all comma", "  0788383388, Bach", allSeparators, "0788383388", true},

		{"international", "  250788383388", nil, "250788383388", true},
		{"international comma", "  250788383388", []rune{','}, "250788383388", true},
		{"international dot", "  250788383388", []rune{'.'}, "250788383388", true},
		{"international all", "  250788383388", allSeparators, "250788383388", true},

		{"plus prefix", " +250788383388", nil, "250788383388", true},
		{"plus prefix comma", " +250788383388", []rune{','}, "250788383388", true},
		{"plus prefix dot", " +250788383388", []rune{'.'}, "250788383388", true},
		{"plus prefix all", " +250788383388", allSeparators, "250788383388", true},

		{"l is one", " 250788l83388", nil, "250788183388", true},
		{"l and o", " 2507883lo338", nil, "250788310338", true},
		{"l and zero", " 2507883l0338", nil, "250788310338", true},

		{"nothing", " ", nil, "", false},
		{"nothing comma", " ", []rune{','}, "", false},
		{"nothing dot", " ", []rune{'.'}, "", false},
		{"nothing all", " ", allSeparators, "", false},

		{"not numeric", "078838338a", nil, "", false},
		{"not numeric comma", "078838338a", []rune{','}, "", false},
		{"not numeric dot", "078838338a", []rune{'.'}, "", false},

		{"eleven digits", "07883833881", nil, "", false},
		{"eleven digits comma", "07883833881", []rune{','}, "", false},
		{"eleven digits dot", "07883833881", []rune{'.'}, "", false},
		{"eleven digits all", "07883833881", allSeparators, "", false},

		{"nine digits", "078838338", nil, "", false},
		{"double plus", "++250788383388", nil, "", false},
		{"plus only", "+", nil, "", false},
		{"plus in the middle", "0788+383388", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message, tt.separators...)
			got, ok := p.NextPhone()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextPhone() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParser_NextInt(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		separators []rune
		want       string
		wantOK     bool
	}{
		{"plain", "  120 Homeless children", nil, "120", true},
		{"comma", "  120, Homeless children", []rune{','}, "120", true},
		{"dot", "  120. Homeless children", []rune{'.'}, "120", true},
		{"l is one", "  l20 Homeless children", nil, "120", true},
		{"l and o", "  l2o Homeless children", nil, "120", true},
		{"l and O", "  l2O Homeless children", nil, "120", true},
		{"leading zeros kept", "007", nil, "007", true},
		{"long number kept as text", "123456789012345678901234567890", nil, "123456789012345678901234567890", true},
		{"word", "Homeless", nil, "", false},
		{"negative", "-5", nil, "", false},
		{"decimal", "1.5", nil, "", false},
		{"empty", "", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message, tt.separators...)
			got, ok := p.NextInt()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextInt() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParser_NextDate(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    time.Time
		wantOK  bool
	}{
		{"dot short month", "23.6.77", date(1977, time.June, 23), true},
		{"slash short month", "23/6/77", date(1977, time.June, 23), true},
		{"dash short month", "23-6-77", date(1977, time.June, 23), true},

		{"dot", "23.06.77", date(1977, time.June, 23), true},
		{"slash", "23/06/77", date(1977, time.June, 23), true},
		{"dash", "23-06-77", date(1977, time.June, 23), true},

		{"this century dot", "23.06.11", date(2011, time.June, 23), true},
		{"this century slash", "23/06/11", date(2011, time.June, 23), true},
		{"this century dash", "23-06-11", date(2011, time.June, 23), true},

		{"year zero dot", "23.06.00", date(2000, time.June, 23), true},
		{"year zero slash", "23/06/00", date(2000, time.June, 23), true},
		{"year zero dash", "23-06-00", date(2000, time.June, 23), true},

		{"four digit year", "10.12.1944", date(1944, time.December, 10), true},
		{"four digit future year", "01/01/2049", date(2049, time.January, 1), true},

		{"invalid day dot", "31.6.77", time.Time{}, false},
		{"invalid day slash", "31/6/77", time.Time{}, false},
		{"invalid day dash", "31-6-77", time.Time{}, false},
		{"day zero", "0.6.77", time.Time{}, false},

		{"invalid month dot", "10.13.77", time.Time{}, false},
		{"invalid month slash", "10/13/77", time.Time{}, false},
		{"invalid month dash", "10-13-77", time.Time{}, false},
		{"month zero", "10.0.77", time.Time{}, false},

		{"invalid year dot", "10.13.113", time.Time{}, false},
		{"invalid year slash", "10/13/113", time.Time{}, false},
		{"invalid year dash", "10-13-113", time.Time{}, false},
		{"three digit year", "10.12.113", time.Time{}, false},
		{"one digit year", "10.12.5", time.Time{}, false},

		{"space separated", "10 12 31", time.Time{}, false},
		{"semicolon separated", "10;12;31", time.Time{}, false},
		{"colon separated", "10:12:31", time.Time{}, false},
		{"comma separated", "10,12,31", time.Time{}, false},
		{"mixed separators", "10.12/31", time.Time{}, false},
		{"two parts", "10.12", time.Time{}, false},
		{"four parts", "10.12.31.1", time.Time{}, false},
		{"empty part", "10..31", time.Time{}, false},
		{"no digit repair", "1o.12.77", time.Time{}, false},

		{"leap day", "29.02.2000", date(2000, time.February, 29), true},
		{"leap day two digit year", "29.2.04", date(2004, time.February, 29), true},
		{"no leap day in 1900", "29.02.1900", time.Time{}, false},
		{"no leap day in 2001", "29.02.01", time.Time{}, false},
		{"end of december", "31.12.99", date(1999, time.December, 31), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message)
			got, ok := p.NextDate()
			if ok != tt.wantOK || !got.Equal(tt.want) {
				t.Errorf("NextDate() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParser_NextDate_TwoDigitYearBoundary(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		referenceYear int
		wantYear      int
	}{
		{"reference year itself", "01.01.26", 2026, 2026},
		{"year after reference", "01.01.27", 2026, 1927},
		{"forty nine", "01.01.49", 2026, 1949},
		{"fifty", "01.01.50", 2026, 1950},
		{"forty four", "10.12.44", 2026, 1944},
		{"eleven in 2011", "23.06.11", 2011, 2011},
		{"twelve in 2011", "23.06.12", 2011, 1912},
		{"forty nine in 2049", "01.01.49", 2049, 2049},
		{"fifty in 2049", "01.01.50", 2049, 1950},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.message).WithReferenceYear(tt.referenceYear)
			got, ok := p.NextDate()
			if !ok {
				t.Fatalf("NextDate() failed for %q", tt.message)
			}
			if got.Year() != tt.wantYear {
				t.Errorf("NextDate() year = %d, want %d", got.Year(), tt.wantYear)
			}
		})
	}
}

func TestParser_WordCount(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		separators []rune
		want       int
	}{
		{"blank", "  ", nil, 0},
		{"blank comma", "  ", []rune{','}, 0},
		{"comma space", ", ", []rune{','}, 0},
		{"blank dot", "  ", []rune{'.'}, 0},
		{"dot space", ". ", []rune{'.'}, 0},

		{"empty", "", nil, 0},
		{"empty comma", "", []rune{','}, 0},
		{"empty dot", "", []rune{'.'}, 0},

		{"one word", "  hello  ", nil, 1},
		{"one word comma", "  hello  ", []rune{','}, 1},
		{"one word dot", "  hello  ", []rune{'.'}, 1},

		{"two words dot is content", "  hello. world", nil, 2},
		{"two words comma separator", "  hello., world", []rune{','}, 2},
		{"two words dot separator", "  hello,. world", []rune{'.'}, 2},
		{"two words dot and comma separators", "  hello., world", []rune{'.', ','}, 2},

		{"glued dot is content", " hello world.foo", nil, 2},
		{"glued dot with comma separator", " hello, world.foo", []rune{','}, 2},
		{"glued comma with dot separator", " hello. world,foo", []rune{'.'}, 2},
		{"glued dot with dot separator", " hello world.foo", []rune{'.'}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message, tt.separators...)
			if got := p.WordCount(); got != tt.want {
				t.Errorf("WordCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParser_FailedAccessorsDoNotConsume(t *testing.T) {
	tests := []struct {
		name   string
		access func(p *Parser) bool
	}{
		{"keyword", func(p *Parser) bool { _, ok := p.NextKeyword([]string{"reg"}); return ok }},
		{"hour", func(p *Parser) bool { _, ok := p.NextHour(); return ok }},
		{"phone", func(p *Parser) bool { _, ok := p.NextPhone(); return ok }},
		{"int", func(p *Parser) bool { _, ok := p.NextInt(); return ok }},
		{"date", func(p *Parser) bool { _, ok := p.NextDate(); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser("  James, Kirk", ',')
			before := p.Remaining()

			if tt.access(p) {
				t.Fatalf("%s accessor should fail on a name", tt.name)
			}
			if p.Remaining() != before {
				t.Errorf("Remaining() = %q, want %q", p.Remaining(), before)
			}

			word, ok := p.NextWord()
			if !ok || word != "James" {
				t.Errorf("NextWord() = (%q, %v), want (%q, true)", word, ok, "James")
			}
		})
	}
}

func TestParser_PeekingIsIdempotent(t *testing.T) {
	p := newTestParser("REG James Kirk")

	for i := 0; i < 3; i++ {
		if !p.HasWord() {
			t.Fatal("HasWord() = false, want true")
		}
		if got := p.WordCount(); got != 3 {
			t.Fatalf("WordCount() = %d, want 3", got)
		}
	}

	keyword, ok := p.NextKeyword([]string{"reg"})
	if !ok || keyword != "reg" {
		t.Fatalf("NextKeyword() = (%q, %v), want (%q, true)", keyword, ok, "reg")
	}
	if got := p.WordCount(); got != 2 {
		t.Errorf("WordCount() after keyword = %d, want 2", got)
	}
}

func TestParser_SeparatorOrderIndependence(t *testing.T) {
	message := "REG.James,Kirk 10/12/44,+250788383381"
	orders := [][]rune{
		{'.', ' ', ','},
		{',', '.', ' '},
		{' ', ',', '.'},
		{',', '.'},
		{'.', ',', '.', ','},
	}

	for _, separators := range orders {
		p := newTestParser(message, separators...)
		if got := p.WordCount(); got != 5 {
			t.Errorf("WordCount() with %q = %d, want 5", string(separators), got)
		}
		keyword, _ := p.NextKeyword([]string{"reg"})
		first, _ := p.NextWord()
		last, _ := p.NextWord()
		born, _ := p.NextDate()
		phone, _ := p.NextPhone()

		if keyword != "reg" || first != "James" || last != "Kirk" ||
			!born.Equal(date(1944, time.December, 10)) || phone != "250788383381" {
			t.Errorf("separators %q parsed (%q, %q, %q, %v, %q)",
				string(separators), keyword, first, last, born, phone)
		}
	}
}

func TestParser_NextRest(t *testing.T) {
	p := newTestParser("REP l2O, Homeless children.,", ',', '.')

	if _, ok := p.NextKeyword([]string{"rep"}); !ok {
		t.Fatal("NextKeyword() should match rep")
	}
	count, ok := p.NextInt()
	if !ok || count != "120" {
		t.Fatalf("NextInt() = (%q, %v), want (%q, true)", count, ok, "120")
	}

	rest, ok := p.NextRest()
	if !ok || rest != "Homeless children" {
		t.Errorf("NextRest() = (%q, %v), want (%q, true)", rest, ok, "Homeless children")
	}
	if p.HasWord() {
		t.Error("HasWord() after NextRest() = true, want false")
	}
	if _, ok := p.NextRest(); ok {
		t.Error("NextRest() on exhausted parser should fail")
	}
}

func TestParser_Separators(t *testing.T) {
	p := New("", ',', ',', '.')
	got := p.Separators()
	if len(got) != 3 {
		t.Fatalf("Separators() = %q, want three distinct runes", got)
	}
	for _, r := range " ,." {
		if !p.isSeparator(r) {
			t.Errorf("isSeparator(%q) = false, want true", r)
		}
	}
}

func TestParser_EndToEnd(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		separators []rune
	}{
		{"spaces", "REG James Kirk 10.12.44 0788383381", nil},
		{"commas", "REG, James, Kirk, 10.12.44, 0788383381", []rune{','}},
		{"dots and spaces", "REG. James. Kirk. 10/12/44. 0788383381", []rune{'.'}},
		{"dots only", "REG.James.Kirk.10/12/44.0788383381", []rune{'.'}},
		{"dots with all separators", "REG.James.Kirk.10/12/44.0788383381", []rune{'.', ' ', ','}},
		{"mixed", "REG.James,Kirk 10/12/44,0788383381", []rune{'.', ' ', ','}},
		{"mixed runs", "REG James,.Kirk, . 10/12/44,0788383381", []rune{'.', ' ', ','}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.message, tt.separators...)

			if got, ok := p.NextKeyword([]string{"reg"}); !ok || got != "reg" {
				t.Errorf("NextKeyword() = (%q, %v), want (%q, true)", got, ok, "reg")
			}
			if got, ok := p.NextWord(); !ok || got != "James" {
				t.Errorf("NextWord() = (%q, %v), want (%q, true)", got, ok, "James")
			}
			if got, ok := p.NextWord(); !ok || got != "Kirk" {
				t.Errorf("NextWord() = (%q, %v), want (%q, true)", got, ok, "Kirk")
			}
			if got, ok := p.NextDate(); !ok || !got.Equal(date(1944, time.December, 10)) {
				t.Errorf("NextDate() = (%v, %v), want (1944-12-10, true)", got, ok)
			}
			if got, ok := p.NextPhone(); !ok || got != "0788383381" {
				t.Errorf("NextPhone() = (%q, %v), want (%q, true)", got, ok, "0788383381")
			}
			if p.HasWord() {
				t.Errorf("HasWord() = true, remaining %q", p.Remaining())
			}
		})
	}
}
