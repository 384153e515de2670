// Package intelliref resolves symbolic date tokens against the days of a project.
package intelliref

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mfenderov/chrono/internal/event"
)

// ErrInvalidReference is returned when a token cannot be resolved.
var ErrInvalidReference = errors.New("invalid reference")

// Tokens understood besides i<N> and literal dates.
const (
	TokenStart = "start"
	TokenStop  = "stop"
	TokenToday = "today"
	TokenRef   = "ref"
)

// Resolve turns token into a date. ref is the current, already concrete
// reference; days are the dates of the known days in any order; now supplies
// "today". Tokens are case-insensitive:
//
//	start   first day
//	stop    last day
//	today   the date of now
//	ref     the date in ref
//	i<N>    the N-th day in date order, negative N counts from the end
//	other   a YYYY-MM-DD date
func Resolve(token, ref string, days []time.Time, now time.Time) (time.Time, error) {
	tok := strings.ToLower(strings.TrimSpace(token))

	switch tok {
	case TokenToday:
		return event.Date(now), nil
	case TokenRef:
		d, err := event.ParseDate(ref)
		if err != nil {
			return time.Time{}, fmt.Errorf("reference %q is not a date: %w", ref, ErrInvalidReference)
		}
		return d, nil
	case TokenStart, TokenStop:
		sorted, err := sortedDays(days, tok)
		if err != nil {
			return time.Time{}, err
		}
		if tok == TokenStart {
			return sorted[0], nil
		}
		return sorted[len(sorted)-1], nil
	}

	if rest, ok := strings.CutPrefix(tok, "i"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			return index(days, n, tok)
		}
	}

	d, err := event.ParseDate(tok)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", token, ErrInvalidReference)
	}
	return d, nil
}

// ResolveKey is Resolve returning the ISO date string.
func ResolveKey(token, ref string, days []time.Time, now time.Time) (string, error) {
	d, err := Resolve(token, ref, days, now)
	if err != nil {
		return "", err
	}
	return event.DateKey(d), nil
}

func sortedDays(days []time.Time, tok string) ([]time.Time, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%s of an empty project: %w", tok, ErrInvalidReference)
	}
	sorted := make([]time.Time, len(days))
	for i, d := range days {
		sorted[i] = event.Date(d)
	}
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	return sorted, nil
}

func index(days []time.Time, n int, tok string) (time.Time, error) {
	sorted, err := sortedDays(days, tok)
	if err != nil {
		return time.Time{}, err
	}
	i := n
	if i < 0 {
		i += len(sorted)
	}
	if i < 0 || i >= len(sorted) {
		return time.Time{}, fmt.Errorf("%s out of range for %d days: %w", tok, len(sorted), ErrInvalidReference)
	}
	return sorted[i], nil
}
