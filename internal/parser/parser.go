// Package parser encodes and decodes note files.
//
// A note file starts with five labelled header lines, a blank line and a
// separator line. Everything after the blank line that follows the separator
// is the body:
//
//	Title: Powershell Profile
//	Tags: ps1; shell
//	Notebook: /Tech/Public
//	Created: 2021-06-01 10:00:00
//	Updated: 2021-06-02 08:30:00
//
//	------
//
//	body text...
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/donno/internal/models"
)

// Separator is the line between the header block and the body.
const Separator = "------"

const (
	labelTitle    = "Title:"
	labelTags     = "Tags:"
	labelNotebook = "Notebook:"
	labelCreated  = "Created:"
	labelUpdated  = "Updated:"
)

var headerLabels = [...]string{labelTitle, labelTags, labelNotebook, labelCreated, labelUpdated}

// ErrDecode is matched by every *DecodeError.
var ErrDecode = errors.New("malformed note")

// DecodeError reports why a note file could not be decoded. Line is 1-based.
type DecodeError struct {
	Line   int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("parser: line %d: %s", e.Line, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

func decodeErr(line int, format string, args ...any) *DecodeError {
	return &DecodeError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// Parse decodes raw note bytes. The returned note has an empty Path; the
// caller knows where the bytes came from.
func Parse(data []byte) (*models.Note, error) {
	rest := string(data)
	var values [len(headerLabels)]string

	for i, label := range headerLabels {
		line, tail, ok := strings.Cut(rest, "\n")
		if !ok {
			return nil, decodeErr(i+1, "header truncated before %q", label)
		}
		v, err := stripLabel(i+1, trimCR(line), label)
		if err != nil {
			return nil, err
		}
		values[i] = v
		rest = tail
	}

	line, tail, ok := strings.Cut(rest, "\n")
	if !ok || trimCR(line) != "" {
		return nil, decodeErr(len(headerLabels)+1, "expected blank line after header")
	}
	rest = tail

	line, tail, ok = strings.Cut(rest, "\n")
	if trimCR(line) != Separator {
		return nil, decodeErr(len(headerLabels)+2, "expected separator %q", Separator)
	}
	if !ok {
		tail = ""
	}
	body := tail
	switch {
	case strings.HasPrefix(body, "\r\n"):
		body = body[2:]
	case strings.HasPrefix(body, "\n"):
		body = body[1:]
	}

	created, err := parseTime(4, values[3])
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(5, values[4])
	if err != nil {
		return nil, err
	}

	return &models.Note{
		Title:    values[0],
		Tags:     splitTags(values[1]),
		Notebook: values[2],
		Created:  created,
		Updated:  updated,
		Body:     body,
	}, nil
}

// Format encodes n. Parse(Format(n)) reproduces every field except Path.
func Format(n models.Note) []byte {
	var buf bytes.Buffer
	writeHeader(&buf, labelTitle, n.Title)
	writeHeader(&buf, labelTags, strings.Join(n.Tags, models.TagSeparator))
	writeHeader(&buf, labelNotebook, n.Notebook)
	writeHeader(&buf, labelCreated, models.FormatTime(n.Created))
	writeHeader(&buf, labelUpdated, models.FormatTime(n.Updated))
	buf.WriteString("\n" + Separator + "\n\n")
	buf.WriteString(n.Body)
	return buf.Bytes()
}

// Template returns the header skeleton offered to the editor for a new note.
func Template(notebook string, now time.Time) []byte {
	return Format(models.Note{Notebook: notebook, Created: now, Updated: now})
}

func writeHeader(buf *bytes.Buffer, label, value string) {
	buf.WriteString(label)
	buf.WriteByte(' ')
	buf.WriteString(value)
	buf.WriteByte('\n')
}

// stripLabel removes label and the single space that follows it. A bare
// label is an empty value.
func stripLabel(lineNo int, line, label string) (string, error) {
	if !strings.HasPrefix(line, label) {
		return "", decodeErr(lineNo, "expected %q header", label)
	}
	return strings.TrimPrefix(line[len(label):], " "), nil
}

func parseTime(lineNo int, s string) (time.Time, error) {
	t, err := models.ParseTime(s)
	if err != nil {
		return time.Time{}, decodeErr(lineNo, "invalid timestamp %q", s)
	}
	return t, nil
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, models.TagSeparator)
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}
