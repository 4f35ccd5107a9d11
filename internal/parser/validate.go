package parser

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/donno/internal/models"
)

var (
	errMultiLine = errors.New("must be a single line")
	errTagSep    = errors.New("must not contain \"" + models.TagSeparator + "\"")
)

// Validate checks a draft before it is written as a new note: title and
// notebook are required, and every field must survive a Format/Parse round
// trip.
func Validate(n models.Note) error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Title, validation.Required, validation.By(singleLine)),
		validation.Field(&n.Notebook, validation.Required, validation.By(singleLine)),
		validation.Field(&n.Tags, validation.Each(validation.Required, validation.By(singleLine), validation.By(noTagSeparator))),
	)
}

// ValidateEncodable checks only the round-trip constraints. Notes read from
// disk may have an empty title; rewriting them must still work.
func ValidateEncodable(n models.Note) error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Title, validation.By(singleLine)),
		validation.Field(&n.Notebook, validation.By(singleLine)),
		validation.Field(&n.Tags, validation.Each(validation.Required, validation.By(singleLine), validation.By(noTagSeparator))),
	)
}

func singleLine(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "\r\n") {
		return errMultiLine
	}
	return nil
}

func noTagSeparator(value any) error {
	s, _ := value.(string)
	if strings.Contains(s, models.TagSeparator) {
		return errTagSep
	}
	return nil
}
