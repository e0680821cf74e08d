// File: fields.go
// Title: Typed Field Interpreters
// Description: Numeric, phone number and date interpreters built on the
//              peek/commit primitive, including the letter-for-digit repair
//              table used by the numeric fields.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import (
	"strconv"
	"strings"
	"time"
)

const (
	// LocalPhoneLength is the digit count of a number in local format.
	LocalPhoneLength = 10

	// InternationalPhoneLength is the digit count of a number with its
	// country code.
	InternationalPhoneLength = 12

	// DateSeparators lists the runes allowed between day, month and year.
	DateSeparators = "./-"
)

// confusables maps letters that are commonly typed instead of a digit.
var confusables = map[rune]rune{
	'l': '1',
	'L': '1',
	'o': '0',
	'O': '0',
}

// NextHour interprets the next token as a compact clock reading. Up to two
// digits are the hour itself; longer readings such as "1245" yield their
// leading two digits.
func (p *Parser) NextHour() (int, bool) {
	tok, ok := p.peek()
	if !ok {
		return 0, false
	}

	digits, ok := normalizeDigits(tok.text)
	if !ok {
		return 0, false
	}
	if len(digits) > 2 {
		digits = digits[:2]
	}

	hour, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	p.commit(tok)
	return hour, true
}

// NextPhone interprets the next token as a phone number. One leading '+' is
// dropped; the rest must be 10 (local) or 12 (international) digits.
func (p *Parser) NextPhone() (string, bool) {
	tok, ok := p.peek()
	if !ok {
		return "", false
	}

	digits, ok := normalizeDigits(strings.TrimPrefix(tok.text, "+"))
	if !ok {
		return "", false
	}
	if len(digits) != LocalPhoneLength && len(digits) != InternationalPhoneLength {
		return "", false
	}

	p.commit(tok)
	return digits, true
}

// NextInt interprets the next token as a non-negative integer and returns
// its digits as text, so callers keep leading zeros and the digit count.
func (p *Parser) NextInt() (string, bool) {
	tok, ok := p.peek()
	if !ok {
		return "", false
	}

	digits, ok := normalizeDigits(tok.text)
	if !ok {
		return "", false
	}

	p.commit(tok)
	return digits, true
}

// NextDate interprets the next token as day, month and year separated by
// one of DateSeparators. Two-digit years never land after the reference
// year ("77" is 1977, "11" is 2011). The returned date is at midnight UTC.
func (p *Parser) NextDate() (time.Time, bool) {
	tok, ok := p.peek()
	if !ok {
		return time.Time{}, false
	}

	date, ok := parseDate(tok.text, p.referenceYear)
	if !ok {
		return time.Time{}, false
	}

	p.commit(tok)
	return date, true
}

// normalizeDigits repairs confusable letters and reports whether the result
// is a non-empty run of ASCII digits.
func normalizeDigits(s string) (string, bool) {
	if s == "" {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if digit, ok := confusables[r]; ok {
			r = digit
		}
		if r < '0' || r > '9' {
			return "", false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

func parseDate(s string, referenceYear int) (time.Time, bool) {
	for _, sep := range DateSeparators {
		parts := strings.Split(s, string(sep))
		if len(parts) != 3 {
			continue
		}
		return buildDate(parts[0], parts[1], parts[2], referenceYear)
	}
	return time.Time{}, false
}

func buildDate(dayText, monthText, yearText string, referenceYear int) (time.Time, bool) {
	if !isDigits(dayText, 1, 2) || !isDigits(monthText, 1, 2) {
		return time.Time{}, false
	}

	year, ok := expandYear(yearText, referenceYear)
	if !ok {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(dayText)
	month, _ := strconv.Atoi(monthText)
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// expandYear accepts two- or four-digit years. A two-digit year is placed in
// the 2000s unless that lies after referenceYear, then in the 1900s.
func expandYear(s string, referenceYear int) (int, bool) {
	switch {
	case isDigits(s, 2, 2):
		year, _ := strconv.Atoi(s)
		if 2000+year > referenceYear {
			return 1900 + year, true
		}
		return 2000 + year, true
	case isDigits(s, 4, 4):
		year, _ := strconv.Atoi(s)
		return year, true
	default:
		return 0, false
	}
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
