// Package query compiles search strings into predicates and evaluates them
// against notes.
//
// A search string has the form [<prefix>:]<value>[:<flags>]:
//
//	powershell            all text, case-insensitive substring
//	ti:profile:w          title, whole word
//	ta:ps1:Iw             tag, respect case, whole word
//	cr:2021:B             created on or after 2021-01-01 00:00:00
//	up:2022-01-12 10:30:b updated before 2022-01-12 10:30:00
package query

import (
	"fmt"
	"time"

	"github.com/starford/donno/internal/models"
)

// TextField selects the note field a text term is matched against.
type TextField int

const (
	AllText TextField = iota
	Title
	Tag
	Notebook
)

func (f TextField) String() string {
	switch f {
	case AllText:
		return "all"
	case Title:
		return "ti"
	case Tag:
		return "ta"
	case Notebook:
		return "nb"
	}
	return fmt.Sprintf("TextField(%d)", int(f))
}

// TimeField selects the timestamp a time term is compared with.
type TimeField int

const (
	Created TimeField = iota
	Updated
)

func (f TimeField) String() string {
	switch f {
	case Created:
		return "cr"
	case Updated:
		return "up"
	}
	return fmt.Sprintf("TimeField(%d)", int(f))
}

// Term is a compiled search predicate. It is implemented only by TextTerm
// and TimeTerm, so a time comparison on a text field cannot be expressed.
type Term interface {
	fmt.Stringer
	term()
}

// TextTerm matches a text field by substring or whole word.
type TextTerm struct {
	Field      TextField
	Pattern    string
	IgnoreCase bool
	WholeWord  bool
}

func (TextTerm) term() {}

// String renders the term in its canonical query form.
func (t TextTerm) String() string {
	if t.Field == AllText {
		return t.Pattern
	}
	flags := "I"
	if t.IgnoreCase {
		flags = "i"
	}
	if t.WholeWord {
		flags += "w"
	} else {
		flags += "W"
	}
	return fmt.Sprintf("%s:%s:%s", t.Field, t.Pattern, flags)
}

// TimeTerm compares a timestamp field with At.
type TimeTerm struct {
	Field  TimeField
	At     time.Time
	Before bool
}

func (TimeTerm) term() {}

// String renders the term in its canonical query form.
func (t TimeTerm) String() string {
	flag := "B"
	if t.Before {
		flag = "b"
	}
	return fmt.Sprintf("%s:%s:%s", t.Field, models.FormatTime(t.At), flag)
}
