package query

import (
	"strings"
	"time"

	"github.com/starford/donno/internal/models"
)

var (
	textPrefixes = map[string]TextField{"ti": Title, "ta": Tag, "nb": Notebook}
	timePrefixes = map[string]TimeField{"cr": Created, "up": Updated}
)

// timestampPadding completes partial timestamps, keyed by literal length.
var timestampPadding = map[int]string{
	4:  "-01-01 00:00:00",
	7:  "-01 00:00:00",
	10: " 00:00:00",
	13: ":00:00",
	16: ":00",
	19: "",
}

// Parse compiles one search string.
func Parse(raw string) (Term, error) {
	if raw == "" {
		return nil, newError(raw, raw, ErrSyntax)
	}
	segs := strings.Split(raw, ":")
	if len(segs) == 1 {
		return TextTerm{Field: AllText, Pattern: raw, IgnoreCase: true}, nil
	}

	prefix := segs[0]
	if f, ok := timePrefixes[prefix]; ok {
		return parseTimeTerm(raw, f, segs[1:])
	}
	f, ok := textPrefixes[prefix]
	if !ok {
		return nil, newError(raw, prefix, ErrSyntax)
	}
	if len(segs) > 3 {
		return nil, newError(raw, raw, ErrSyntax)
	}
	if segs[1] == "" {
		return nil, newError(raw, raw, ErrSyntax)
	}

	t := TextTerm{Field: f, Pattern: segs[1], IgnoreCase: true}
	if len(segs) == 3 {
		flags := segs[2]
		if flags == "B" || flags == "b" {
			return nil, newError(raw, flags, ErrFieldFlagMismatch)
		}
		ignoreCase, wholeWord, ok := parseTextFlags(flags)
		if !ok {
			return nil, newError(raw, flags, ErrSyntax)
		}
		t.IgnoreCase, t.WholeWord = ignoreCase, wholeWord
	}
	return t, nil
}

// ParseAll compiles every search string, stopping at the first error.
func ParseAll(raws []string) ([]Term, error) {
	terms := make([]Term, 0, len(raws))
	for _, raw := range raws {
		t, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// parseTimeTerm handles cr/up. The timestamp may itself contain colons
// ("2022-01-12 10:30"), so the last segment is a flag only when it is not a
// two-digit time component.
func parseTimeTerm(raw string, f TimeField, rest []string) (Term, error) {
	t := TimeTerm{Field: f}
	if n := len(rest); n > 1 && !isTimeComponent(rest[n-1]) {
		switch flags := rest[n-1]; {
		case flags == "B":
		case flags == "b":
			t.Before = true
		case isTextFlags(flags):
			return nil, newError(raw, flags, ErrFieldFlagMismatch)
		default:
			return nil, newError(raw, flags, ErrSyntax)
		}
		rest = rest[:n-1]
	}

	value := strings.Join(rest, ":")
	if value == "" {
		return nil, newError(raw, raw, ErrSyntax)
	}
	at, err := parseTimestamp(value)
	if err != nil {
		return nil, newError(raw, value, ErrTimestampFormat)
	}
	t.At = at
	return t, nil
}

// parseTimestamp accepts a year, year-month, date, date-hour,
// date-hour-minute or full timestamp and fills in the missing tail.
func parseTimestamp(value string) (time.Time, error) {
	pad, ok := timestampPadding[len(value)]
	if !ok {
		return time.Time{}, ErrTimestampFormat
	}
	return models.ParseTime(value + pad)
}

// parseTextFlags reads one or two flag letters: at most one of i/I
// (ignore/respect case) and at most one of w/W (whole word/partial).
func parseTextFlags(flags string) (ignoreCase, wholeWord, ok bool) {
	if len(flags) == 0 || len(flags) > 2 {
		return false, false, false
	}
	ignoreCase = true
	var seenCase, seenWord bool
	for _, c := range flags {
		switch c {
		case 'i', 'I':
			if seenCase {
				return false, false, false
			}
			seenCase = true
			ignoreCase = c == 'i'
		case 'w', 'W':
			if seenWord {
				return false, false, false
			}
			seenWord = true
			wholeWord = c == 'w'
		default:
			return false, false, false
		}
	}
	return ignoreCase, wholeWord, true
}

func isTextFlags(s string) bool {
	_, _, ok := parseTextFlags(s)
	return ok
}

func isTimeComponent(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}
