package cachetool

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
)

// The stats output formats are an unstructured external protocol; one
// pattern per tool/verbosity branch, each a named predicate. A pattern
// that fails to match means "not empty", erring toward saving.
var (
	ccacheVerboseEmptyPattern = regexp.MustCompile(`Files:.*\b0\b`)
	ccacheEmptyPattern        = regexp.MustCompile(`files in cache.*\b0\b`)
	sccacheEmptyPattern       = regexp.MustCompile(`Cache size\s+0 bytes`)
)

func ccacheVerboseStatsEmpty(out string) bool { return ccacheVerboseEmptyPattern.MatchString(out) }
func ccacheStatsEmpty(out string) bool        { return ccacheEmptyPattern.MatchString(out) }
func sccacheStatsEmpty(out string) bool       { return sccacheEmptyPattern.MatchString(out) }

// IsEmpty reports whether the cache directory holds zero cached
// artifacts, decided from the stats output of the appropriate branch.
func (t *Tool) IsEmpty(ctx context.Context, verboseSupported bool) (bool, error) {
	if t.Variant == Sccache {
		out, err := t.exec(ctx, "-s")
		if err != nil {
			return false, errors.Wrap(err, "read stats")
		}
		return sccacheStatsEmpty(out), nil
	}

	if verboseSupported {
		out, err := t.exec(ctx, "-s", "-v")
		if err != nil {
			return false, errors.Wrap(err, "read verbose stats")
		}
		return ccacheVerboseStatsEmpty(out), nil
	}

	out, err := t.exec(ctx, "-s")
	if err != nil {
		return false, errors.Wrap(err, "read stats")
	}
	return ccacheStatsEmpty(out), nil
}
