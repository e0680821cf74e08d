// File: doc.go
// Title: SMS Parser Package Documentation
// Description: Tokenizing interpreter for short, noisy text messages typed on
//              constrained keypads. Extracts keywords, names, phone numbers,
//              dates, hours and integers one token at a time.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package parser walks a raw SMS left to right and exposes typed accessors
(NextWord, NextKeyword, NextHour, NextPhone, NextInt, NextDate) that each try
to interpret the upcoming token as one kind of field.

Tokens are maximal runs of characters that are not separators. Space is
always a separator; additional separator runes are supplied when the parser
is created and behave as an unordered set.

Every accessor peeks the next token first and consumes it only when the
interpretation succeeds. A failed accessor leaves the parser untouched, so a
caller can retry the same token with a different accessor:

	p := parser.New("REG James,Kirk 10/12/44,0788383381", ',', '.')
	keyword, _ := p.NextKeyword([]string{"register", "reg"}) // "reg"
	first, _ := p.NextWord()                                 // "James"
	last, _ := p.NextWord()                                  // "Kirk"
	born, _ := p.NextDate()                                  // 1944-12-10
	phone, _ := p.NextPhone()                                // "0788383381"
	p.HasWord()                                              // false

Numeric accessors repair the usual keypad/OCR confusions before validating
digits: 'l' and 'L' read as 1, 'o' and 'O' read as 0.

The parser performs no I/O, holds no shared state and is not safe for
concurrent use; create one per message.
*/
package parser
