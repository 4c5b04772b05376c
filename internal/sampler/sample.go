// Package sampler draws ordered, duplicate-free samples from a fixed source
// sequence and measures how uniform the resulting permutations are.
package sampler

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrInvalidArgument is returned when a requested count or option cannot be
// satisfied. Callers match it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// Strategy selects the shuffling mechanism used by Sample.
type Strategy string

const (
	// StrategyShuffle runs a partial Fisher-Yates shuffle over a copy of the source.
	StrategyShuffle Strategy = "shuffle"
	// StrategyKeyed assigns each element a random UUID key, sorts by key and
	// takes the head of the sorted sequence.
	StrategyKeyed Strategy = "keyed"
)

// ParseStrategy converts a config value into a Strategy. The empty string
// selects StrategyShuffle.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyShuffle:
		return StrategyShuffle, nil
	case StrategyKeyed:
		return StrategyKeyed, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, s)
	}
}

type options struct {
	strategy Strategy
	source   Source
}

// Option configures a single Sample call.
type Option func(*options)

// WithStrategy overrides the default StrategyShuffle.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithSource draws randomness from src instead of the package-level source.
// A nil src is ignored.
func WithSource(src Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// Sample returns n distinct elements of src in uniformly random order.
// src is never modified. n must be in [0, len(src)]; anything else fails with
// ErrInvalidArgument rather than being clamped.
func Sample[T any](src []T, n int, opts ...Option) ([]T, error) {
	if n < 0 || n > len(src) {
		return nil, fmt.Errorf("%w: count %d outside [0, %d]", ErrInvalidArgument, n, len(src))
	}

	o := options{strategy: StrategyShuffle, source: globalSource}
	for _, opt := range opts {
		opt(&o)
	}

	switch o.strategy {
	case StrategyShuffle:
		return partialShuffle(src, n, o.source), nil
	case StrategyKeyed:
		return keyedSort(src, n, o.source)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, o.strategy)
	}
}

// partialShuffle performs the first n steps of a Fisher-Yates shuffle on a
// copy of src. Each prefix position receives a uniformly chosen element from
// the not-yet-placed suffix.
func partialShuffle[T any](src []T, n int, rng Source) []T {
	out := make([]T, len(src))
	copy(out, src)

	last := uint64(len(out) - 1)
	for i := 0; i < n; i++ {
		j := i + int(uint64Inclusive(rng, last-uint64(i)))
		out[i], out[j] = out[j], out[i]
	}
	return out[:n:n]
}

type keyedItem[T any] struct {
	key  uuid.UUID
	item T
}

// keyedSort orders src by a fresh random UUID per element.
func keyedSort[T any](src []T, n int, rng Source) ([]T, error) {
	r := sourceReader{src: rng}

	keyed := make([]keyedItem[T], len(src))
	for i, item := range src {
		key, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, fmt.Errorf("generate sort key: %w", err)
		}
		keyed[i] = keyedItem[T]{key: key, item: item}
	}

	slices.SortFunc(keyed, func(a, b keyedItem[T]) int {
		return bytes.Compare(a.key[:], b.key[:])
	})

	out := make([]T, n)
	for i := range out {
		out[i] = keyed[i].item
	}
	return out, nil
}
