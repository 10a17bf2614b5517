// Package cachestore persists the compiler cache directory under a key,
// either to the Actions cache service or to a local directory store on
// runners without one.
package cachestore

import (
	"context"
	"os"
	"time"
)

// Saver persists an ordered list of filesystem paths under a key for
// later retrieval by key-prefix matching.
type Saver interface {
	Save(ctx context.Context, key string, paths []string) error
}

// FromEnvironment selects the store for this runner: the cache service
// when ACTIONS_CACHE_URL is present, the local store otherwise.
func FromEnvironment() (Saver, error) {
	if url := os.Getenv("ACTIONS_CACHE_URL"); url != "" {
		return NewClient(url, os.Getenv("ACTIONS_RUNTIME_TOKEN")), nil
	}
	return NewLocalStore("")
}

// SaveKey derives the cache entry key from the primary key, appending a
// timestamp captured at save time when requested.
func SaveKey(primaryKey string, appendTimestamp bool, now time.Time) string {
	if !appendTimestamp {
		return primaryKey
	}
	return primaryKey + "-" + now.UTC().Format(time.RFC3339)
}
