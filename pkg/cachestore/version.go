package cachestore

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

const compressionMethod = "zstd"

// Version computes the cache entry version: a stable hash over the
// saved paths and the compression method, so entries produced with a
// different layout or codec never collide under the same key.
func Version(paths []string) string {
	h := xxhash.New()
	for _, p := range paths {
		_, _ = io.WriteString(h, p)
		_, _ = io.WriteString(h, "\x00")
	}
	_, _ = io.WriteString(h, compressionMethod)
	return fmt.Sprintf("%016x", h.Sum64())
}
