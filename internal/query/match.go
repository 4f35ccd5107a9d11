package query

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/starford/donno/internal/models"
)

// Matches reports whether n satisfies t.
func Matches(n models.Note, t Term) bool {
	switch t := t.(type) {
	case TextTerm:
		return matchText(n, t)
	case *TextTerm:
		return matchText(n, *t)
	case TimeTerm:
		return matchTime(n, t)
	case *TimeTerm:
		return matchTime(n, *t)
	default:
		panic(fmt.Sprintf("query: unsupported term %T", t))
	}
}

// MatchesAll reports whether n satisfies every term. No terms match all notes.
func MatchesAll(n models.Note, terms []Term) bool {
	for _, t := range terms {
		if !Matches(n, t) {
			return false
		}
	}
	return true
}

// Filter returns the notes matching every term, in their original order.
func Filter(notes []models.Note, terms []Term) []models.Note {
	return lo.Filter(notes, func(n models.Note, _ int) bool {
		return MatchesAll(n, terms)
	})
}

func matchText(n models.Note, t TextTerm) bool {
	target, pattern := textTarget(n, t.Field), t.Pattern
	if t.IgnoreCase {
		target, pattern = strings.ToLower(target), strings.ToLower(pattern)
	}
	if !t.WholeWord {
		return strings.Contains(target, pattern)
	}

	var tokens []string
	if t.Field == Tag {
		tokens = strings.Split(target, models.TagSeparator)
	} else {
		tokens = strings.Fields(target)
	}
	return lo.Contains(tokens, pattern)
}

func matchTime(n models.Note, t TimeTerm) bool {
	ts := n.Created
	if t.Field == Updated {
		ts = n.Updated
	}
	if t.Before {
		return ts.Before(t.At)
	}
	return !ts.Before(t.At)
}

func textTarget(n models.Note, f TextField) string {
	tags := strings.Join(n.Tags, models.TagSeparator)
	switch f {
	case Title:
		return n.Title
	case Tag:
		return tags
	case Notebook:
		return n.Notebook
	case AllText:
		return strings.Join([]string{
			n.Title,
			tags,
			n.Notebook,
			models.FormatTime(n.Created),
			models.FormatTime(n.Updated),
			n.Body,
		}, "\n")
	}
	panic(fmt.Sprintf("query: unsupported text field %v", f))
}
