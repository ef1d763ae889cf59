// Package parser extracts register readings from loosely formatted telemetry text.
//
// Tolerance rules, applied in order:
//
//  1. Unicode NFKC folding, so full-width digits, colons and no-break spaces become ASCII.
//  2. CR and LF are dropped without leaving a gap; other whitespace runs collapse to one space.
//  3. Adjacent repeated ':' or ',' collapse to one.
//  4. Leading and trailing spaces and commas are trimmed.
//
// A field is read as the quoted key, optional spaces, one ':', optional spaces, an optional
// opening quote, then a number (optional '-', digits, optional fraction). If a key occurrence is
// not followed by a number the next occurrence is tried. A field that never matches is "".
package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	telemetry "analyzer-training/internal/telemetry/domain"
)

const (
	keyStartRegister = "Start register"
	keyRawData       = "Raw data"
)

// Parse extracts the register and reading from one raw blob. It never fails.
func Parse(raw string) telemetry.RawRecord {
	s := Normalize(raw)
	return telemetry.RawRecord{
		StartRegister: extract(s, keyStartRegister),
		RawData:       extract(s, keyRawData),
	}
}

// ParseInto parses raw and records the result in acc.
func ParseInto(acc *Accumulator, raw string) telemetry.RawRecord {
	record := Parse(raw)
	if acc != nil {
		acc.Add(record)
	}
	return record
}

// Normalize applies the tolerance rules to a raw blob.
func Normalize(raw string) string {
	s := norm.NFKC.String(raw)

	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	pendingSpace := false
	for _, r := range s {
		if r == '\r' || r == '\n' {
			continue
		}
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			if b.Len() > 0 {
				b.WriteByte(' ')
				prev = ' '
			}
			pendingSpace = false
		}
		if (r == ':' || r == ',') && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.Trim(b.String(), " ,")
}

func extract(s, key string) string {
	quoted := `"` + key + `"`
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], quoted)
		if i < 0 {
			return ""
		}
		pos := from + i + len(quoted)
		if value, ok := scanValue(s, pos); ok {
			return value
		}
		from = pos
	}
	return ""
}

func scanValue(s string, pos int) (string, bool) {
	pos = skipSpaces(s, pos)
	if pos >= len(s) || s[pos] != ':' {
		return "", false
	}
	pos = skipSpaces(s, pos+1)
	if pos < len(s) && s[pos] == '"' {
		pos++
	}

	start := pos
	if pos < len(s) && s[pos] == '-' {
		pos++
	}
	digits := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	if pos == digits {
		return "", false
	}
	if pos+1 < len(s) && s[pos] == '.' && isDigit(s[pos+1]) {
		pos++
		for pos < len(s) && isDigit(s[pos]) {
			pos++
		}
	}
	return s[start:pos], true
}

func skipSpaces(s string, pos int) int {
	for pos < len(s) && s[pos] == ' ' {
		pos++
	}
	return pos
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
