// Package ints provides helpers for extracting integer values from dump
// fields. Dump files mark absent values with a sentinel, so parsing keeps
// "absent" and "malformed" apart: absent values are legitimate and filtered
// by predicates, malformed ones cause the whole row to be dropped.
package ints

import (
	"errors"
	"math"
	"strconv"
)

// Absent is the dump's "no value" sentinel.
const Absent = `\N`

// ErrMalformed reports a field that is present but not an integer.
var ErrMalformed = errors.New("malformed integer")

// Null is an integer that may be missing from the source.
type Null struct {
	Int   int
	Valid bool
}

// ParseNull parses s as a base-10 integer.
//
// Empty strings and the Absent sentinel yield a zero Null and no error. Any
// other non-numeric content (including overflow) yields ErrMalformed so the
// caller can drop the row.
func ParseNull(s string) (Null, error) {
	if s == "" || s == Absent {
		return Null{}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Null{}, ErrMalformed
	}
	return Null{Int: n, Valid: true}, nil
}

// ParseID splits an identifier like "tt0111161" into its alphabetic prefix
// and numeric tail.
//
// The digit count is part of the returned namespace ("tt/7") so that ids
// differing only in zero padding never collapse onto the same number. ok is
// false when s has no prefix/digits shape or the tail does not fit a uint32;
// such ids must be stored verbatim by the caller.
func ParseID(s string) (namespace string, n uint32, ok bool) {
	i := 0
	for i < len(s) && !isDigit(s[i]) {
		i++
	}
	if i == len(s) || len(s)-i > 10 {
		return "", 0, false
	}
	var v uint64
	for j := i; j < len(s); j++ {
		c := s[j]
		if !isDigit(c) {
			return "", 0, false
		}
		v = v*10 + uint64(c-'0')
	}
	if v > math.MaxUint32 {
		return "", 0, false
	}
	return s[:i] + "/" + strconv.Itoa(len(s)-i), uint32(v), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
