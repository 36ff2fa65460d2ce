package utils

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrQueryTooShort = errors.New("query too short")
	ErrQueryTooLong  = errors.New("query too long")
	ErrInvalidQuery  = errors.New("query is not valid UTF-8")
)

// QueryLength counts the code points of a query.
func QueryLength(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateQuery checks that a query has between minLen and maxLen code points.
// A maxLen of zero or less disables the upper bound.
func ValidateQuery(s string, minLen, maxLen int) error {
	if !utf8.ValidString(s) {
		return ErrInvalidQuery
	}
	n := QueryLength(s)
	if n < minLen {
		return fmt.Errorf("%w: %d < %d characters", ErrQueryTooShort, n, minLen)
	}
	if maxLen > 0 && n > maxLen {
		return fmt.Errorf("%w: %d > %d characters", ErrQueryTooLong, n, maxLen)
	}
	return nil
}
