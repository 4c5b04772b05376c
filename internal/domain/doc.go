// Package domain models the forecast summary catalog and the events emitted
// when a sample is drawn from it.
//
// # Catalog
//
// The catalog is a fixed, ordered list of six weather summaries:
//
//	Sunny, Cloudy, Rainy, Windy, Stormy, Snowy
//
// It is built once at package initialization and never mutated afterwards.
// [Catalog.Items] hands out copies, so concurrent readers need no locking.
//
// # Samples
//
// A sample is an ordered, duplicate-free subset of the catalog. The default
// request draws every entry, which makes the response a full random
// permutation. Sampling itself lives in the sampler package; this package only
// describes what a drawn sample looks like downstream.
//
// # Sample Events
//
// Each served sample can be recorded as a [SampleEvent] and published to the
// sink topic. IDs are random UUIDs because two samples with identical content
// are still distinct draws. DrawnAt comes from the package clock so fixtures
// and tests can freeze it with [SetClock].
package domain
