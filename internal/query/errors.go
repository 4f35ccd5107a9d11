package query

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax            = errors.New("invalid search pattern")
	ErrFieldFlagMismatch = errors.New("flag not valid for field")
	ErrTimestampFormat   = errors.New("invalid timestamp")
)

// Error reports a search string that could not be compiled. Token is the
// offending part of Query; Kind is one of the package sentinels.
type Error struct {
	Query string
	Token string
	Kind  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("query %q: %v: %q", e.Query, e.Kind, e.Token)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(query, token string, kind error) *Error {
	return &Error{Query: query, Token: token, Kind: kind}
}
