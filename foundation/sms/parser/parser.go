// File: parser.go
// Title: SMS Tokenizing Interpreter
// Description: Implements the peek/commit tokenizer primitive over the
//              unconsumed remainder of a message and the textual accessors
//              built on it (words, keywords, free-text tails).
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import (
	"strings"
	"time"
)

// DefaultSeparator is a member of every separator set.
const DefaultSeparator = ' '

// Parser interprets one message token by token.
type Parser struct {
	remaining     string            // Unconsumed suffix of the message
	separators    map[rune]struct{} // Runes that terminate a token
	referenceYear int               // Latest year a two-digit year may expand to
}

// token is a peeked token together with the byte offset, relative to the
// remaining text at peek time, just past its last rune.
type token struct {
	text string
	end  int
}

// New creates a parser for message. Space always separates tokens; any runes
// passed in separators are added to the set. The order in which separators
// are given does not matter.
func New(message string, separators ...rune) *Parser {
	set := make(map[rune]struct{}, len(separators)+1)
	set[DefaultSeparator] = struct{}{}
	for _, r := range separators {
		set[r] = struct{}{}
	}

	return &Parser{
		remaining:     message,
		separators:    set,
		referenceYear: time.Now().Year(),
	}
}

// WithReferenceYear sets the year two-digit years are resolved against and
// returns the parser. It defaults to the current year.
func (p *Parser) WithReferenceYear(year int) *Parser {
	p.referenceYear = year
	return p
}

// Separators returns the separator set as a string in no particular order.
func (p *Parser) Separators() string {
	var b strings.Builder
	for r := range p.separators {
		b.WriteRune(r)
	}
	return b.String()
}

// Remaining returns the text that has not been consumed yet.
func (p *Parser) Remaining() string {
	return p.remaining
}

// HasWord reports whether at least one more token is available.
func (p *Parser) HasWord() bool {
	_, ok := p.peek()
	return ok
}

// WordCount returns the number of tokens left in the message. The parser
// position is not changed.
func (p *Parser) WordCount() int {
	count := 0
	rest := p.remaining
	for {
		tok, ok := p.scan(rest)
		if !ok {
			return count
		}
		count++
		rest = rest[tok.end:]
	}
}

// NextWord consumes and returns the next token verbatim.
func (p *Parser) NextWord() (string, bool) {
	tok, ok := p.peek()
	if !ok {
		return "", false
	}
	p.commit(tok)
	return tok.text, true
}

// NextKeyword compares the next token case-insensitively against keywords in
// order. On the first match the token is consumed and the keyword is
// returned with the spelling used in keywords. Without a match nothing is
// consumed.
func (p *Parser) NextKeyword(keywords []string) (string, bool) {
	tok, ok := p.peek()
	if !ok {
		return "", false
	}

	for _, keyword := range keywords {
		if strings.EqualFold(tok.text, keyword) {
			p.commit(tok)
			return keyword, true
		}
	}
	return "", false
}

// NextRest consumes everything left and returns it without leading and
// trailing separators. Separators between tokens are kept as typed.
func (p *Parser) NextRest() (string, bool) {
	rest := strings.TrimFunc(p.remaining, p.isSeparator)
	if rest == "" {
		return "", false
	}
	p.remaining = ""
	return rest, true
}

// peek returns the next token without consuming it.
func (p *Parser) peek() (token, bool) {
	return p.scan(p.remaining)
}

// commit drops the separators in front of tok and tok itself. Separators
// after tok are left for the next scan to skip.
func (p *Parser) commit(tok token) {
	p.remaining = p.remaining[tok.end:]
}

// scan finds the first token in s.
func (p *Parser) scan(s string) (token, bool) {
	start := strings.IndexFunc(s, p.isContent)
	if start < 0 {
		return token{}, false
	}

	end := len(s)
	if n := strings.IndexFunc(s[start:], p.isSeparator); n >= 0 {
		end = start + n
	}

	return token{text: s[start:end], end: end}, true
}

func (p *Parser) isSeparator(r rune) bool {
	_, ok := p.separators[r]
	return ok
}

func (p *Parser) isContent(r rune) bool {
	return !p.isSeparator(r)
}
