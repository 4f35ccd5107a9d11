// Package models defines the domain types for donno.
package models

import "time"

// TimeLayout is the on-disk timestamp format. Timestamps carry no zone.
const TimeLayout = "2006-01-02 15:04:05"

// TagSeparator joins tags on the Tags header line.
const TagSeparator = "; "

// Note is a single note file decoded into its header fields and body.
type Note struct {
	Title    string    `json:"title"`
	Tags     []string  `json:"tags"`
	Notebook string    `json:"notebook"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	Body     string    `json:"body"`
	// Path is the absolute location of the backing file. It identifies the
	// note and is never written into the file itself.
	Path string `json:"path"`
}

// FileInfo is a lightweight representation returned by directory listings.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Wall converts t into a naive wall-clock timestamp: the local date and time
// of t at second precision, carried in a UTC-located time.Time so that values
// read back from note files compare equal to values produced by the clock.
func Wall(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
}

// Now returns the current naive wall-clock time.
func Now() time.Time {
	return Wall(time.Now())
}

// ParseTime parses a timestamp in TimeLayout as a naive wall-clock value.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
