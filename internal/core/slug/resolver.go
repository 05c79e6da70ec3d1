// Package slug allocates unique slugs within one entity collection.
//
// Resolve probes the store once per candidate and is not atomic: a concurrent
// writer can claim the returned slug before it is inserted. Exclusivity is
// owned by the store's UNIQUE(slug) constraint. Allocate wraps Resolve with a
// bounded insert-and-retry loop so that a lost race produces either the next
// free suffix or the store's conflict error, never two records with one slug.
package slug

import (
	"context"
	"errors"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Limits and Errors
// =============================================================================

const (
	// MaxAttempts bounds the suffix counter of a single resolution.
	MaxAttempts = 100

	// WriteAttempts bounds how often Allocate re-resolves after the store
	// rejected a write because the slug was taken.
	WriteAttempts = 3
)

var (
	// ErrExhausted is returned when no free suffix was found within MaxAttempts.
	// It indicates a store anomaly rather than a transient condition.
	ErrExhausted = errors.New("unable to allocate unique slug")
)

// =============================================================================
// Collaborators
// =============================================================================

// LookupFunc reports which record currently owns slug.
// found is false when no record uses it.
type LookupFunc func(ctx context.Context, slug string) (ownerID string, found bool, err error)

// WriteFunc persists the record using slug.
type WriteFunc func(ctx context.Context, slug string) error

// ConflictFunc reports whether a write error is a slug uniqueness violation.
type ConflictFunc func(err error) bool

// =============================================================================
// Resolution
// =============================================================================

// Resolve returns the first free slug derived from base: the plain slug, then
// slug-1, slug-2 and so on. A candidate owned by excludeID is treated as free
// so that an update does not collide with the record being updated.
//
// An empty derived slug is returned as domain.ErrEmptySlug without touching
// the store.
func Resolve(ctx context.Context, lookup LookupFunc, base, excludeID string) (string, error) {
	root := domain.Slugify(base)
	if root == "" {
		return "", domain.ErrEmptySlug
	}

	candidate := root
	for counter := 1; ; counter++ {
		ownerID, found, err := lookup(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !found || (excludeID != "" && ownerID == excludeID) {
			return candidate, nil
		}
		if counter > MaxAttempts {
			return "", ErrExhausted
		}
		candidate = domain.SuffixedSlug(root, counter)
	}
}

// Allocate resolves a slug and hands it to write. When write fails because
// the slug was claimed in the meantime, resolution runs again; after
// WriteAttempts conflicts the last conflict error is returned unchanged.
// Other write errors are returned immediately.
func Allocate(ctx context.Context, lookup LookupFunc, base, excludeID string, isConflict ConflictFunc, write WriteFunc) (string, error) {
	var lastErr error
	for attempt := 0; attempt < WriteAttempts; attempt++ {
		candidate, err := Resolve(ctx, lookup, base, excludeID)
		if err != nil {
			return "", err
		}

		err = write(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if !isConflict(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}
