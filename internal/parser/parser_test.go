package parser

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/starford/donno/internal/models"
)

const sample = "Title: Powershell Profile\n" +
	"Tags: ps1; shell\n" +
	"Notebook: /Tech/Public\n" +
	"Created: 2021-06-01 10:00:00\n" +
	"Updated: 2021-06-02 08:30:00\n" +
	"\n" +
	"------\n" +
	"\n" +
	"first line\n\nafter a blank line\n"

func TestParse_Sample(t *testing.T) {
	n, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "Powershell Profile" {
		t.Errorf("title = %q, want %q", n.Title, "Powershell Profile")
	}
	if !reflect.DeepEqual(n.Tags, []string{"ps1", "shell"}) {
		t.Errorf("tags = %v, want [ps1 shell]", n.Tags)
	}
	if n.Notebook != "/Tech/Public" {
		t.Errorf("notebook = %q", n.Notebook)
	}
	wantCreated := time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC)
	if !n.Created.Equal(wantCreated) {
		t.Errorf("created = %v, want %v", n.Created, wantCreated)
	}
	if n.Body != "first line\n\nafter a blank line\n" {
		t.Errorf("body = %q", n.Body)
	}
	if n.Path != "" {
		t.Errorf("path = %q, want empty", n.Path)
	}
}

func TestFormat_ByteIdentical(t *testing.T) {
	n, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := string(Format(*n)); got != sample {
		t.Errorf("re-encoded note differs:\ngot  %q\nwant %q", got, sample)
	}
}

func TestRoundTrip(t *testing.T) {
	created := time.Date(2022, 1, 12, 9, 5, 7, 0, time.UTC)
	cases := []models.Note{
		{Title: "empty body", Tags: []string{}, Notebook: "/Misc", Created: created, Updated: created},
		{Title: "ünïcode ✓", Tags: []string{"日本", "a;b", "x y"}, Notebook: "/Tech/Public", Created: created, Updated: created.Add(time.Hour), Body: "\n\nleading blanks"},
		{Title: "", Tags: []string{"one"}, Notebook: "/Misc", Created: created, Updated: created, Body: "Title: not a header\n------\n"},
	}
	for _, want := range cases {
		got, err := Parse(Format(want))
		if err != nil {
			t.Fatalf("Parse(Format(%q)): %v", want.Title, err)
		}
		if !reflect.DeepEqual(*got, want) {
			t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", *got, want)
		}
	}
}

func TestParse_EmptyTagsAndBareLabels(t *testing.T) {
	in := "Title:\nTags:\nNotebook: /Misc\nCreated: 2021-01-01 00:00:00\nUpdated: 2021-01-01 00:00:00\n\n------\n"
	n, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "" || len(n.Tags) != 0 || n.Tags == nil {
		t.Errorf("title = %q, tags = %#v", n.Title, n.Tags)
	}
	if n.Body != "" {
		t.Errorf("body = %q, want empty", n.Body)
	}
}

func TestParse_CRLF(t *testing.T) {
	in := "Title: win\r\nTags: a\r\nNotebook: /Misc\r\nCreated: 2021-01-01 00:00:00\r\nUpdated: 2021-01-01 00:00:00\r\n\r\n------\r\n\r\nbody\r\n"
	n, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "win" || n.Body != "body\r\n" {
		t.Errorf("title = %q, body = %q", n.Title, n.Body)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]struct {
		in   string
		line int
	}{
		"empty":           {"", 1},
		"short header":    {"Title: a\nTags: b\n", 3},
		"wrong label":     {"Title: a\nTag: b\nNotebook: c\nCreated: 2021-01-01 00:00:00\nUpdated: 2021-01-01 00:00:00\n\n------\n", 2},
		"swapped order":   {"Tags: b\nTitle: a\nNotebook: c\nCreated: 2021-01-01 00:00:00\nUpdated: 2021-01-01 00:00:00\n\n------\n", 1},
		"bad created":     {"Title: a\nTags: b\nNotebook: c\nCreated: 2021-13-01 00:00:00\nUpdated: 2021-01-01 00:00:00\n\n------\n", 4},
		"date only":       {"Title: a\nTags: b\nNotebook: c\nCreated: 2021-01-01\nUpdated: 2021-01-01 00:00:00\n\n------\n", 4},
		"bad updated":     {"Title: a\nTags: b\nNotebook: c\nCreated: 2021-01-01 00:00:00\nUpdated: yesterday\n\n------\n", 5},
		"no blank line":   {"Title: a\nTags: b\nNotebook: c\nCreated: 2021-01-01 00:00:00\nUpdated: 2021-01-01 00:00:00\n------\n", 6},
		"no separator":    {"Title: a\nTags: b\nNotebook: c\nCreated: 2021-01-01 00:00:00\nUpdated: 2021-01-01 00:00:00\n\nbody\n", 7},
		"header only eof": {"Title: a\nTags: b\nNotebook: c\nCreated: 2021-01-01 00:00:00\nUpdated: 2021-01-01 00:00:00", 5},
	}
	for name, tc := range cases {
		_, err := Parse([]byte(tc.in))
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !errors.Is(err, ErrDecode) {
			t.Errorf("%s: error %v does not match ErrDecode", name, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("%s: error %T is not *DecodeError", name, err)
			continue
		}
		if de.Line != tc.line {
			t.Errorf("%s: line = %d, want %d", name, de.Line, tc.line)
		}
	}
}

func TestTemplate(t *testing.T) {
	now := time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC)
	want := "Title: \nTags: \nNotebook: /Misc\nCreated: 2023-03-04 05:06:07\nUpdated: 2023-03-04 05:06:07\n\n------\n\n"
	if got := string(Template("/Misc", now)); got != want {
		t.Errorf("template = %q, want %q", got, want)
	}
}
