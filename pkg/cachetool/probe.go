package cachetool

import (
	"context"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"

	"github.com/nektos/cachepost/pkg/common"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ccache grew --evict-older-than in 4.4.0
var minEvictVersion = semver.MustParse("4.4.0")

// SupportsVerboseStats reports whether the binary understands a verbose
// flag on its stats command, probed from the --help output.
func (t *Tool) SupportsVerboseStats(ctx context.Context) (bool, error) {
	out, err := t.exec(ctx, "--help")
	if err != nil {
		return false, errors.Wrap(err, "probe --help")
	}
	return strings.Contains(out, "--verbose"), nil
}

// Version extracts the first semantic version from the --version output.
// Returns nil if none is found, which is not an error.
func (t *Tool) Version(ctx context.Context) (*semver.Version, error) {
	out, err := t.exec(ctx, "--version")
	if err != nil {
		return nil, errors.Wrap(err, "probe --version")
	}
	raw := versionPattern.FindString(out)
	if raw == "" {
		return nil, nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, nil
	}
	return v, nil
}

// SupportsEviction reports whether the binary is positively known to
// lack --evict-older-than. When the version cannot be determined the
// answer is true, leaving the command itself to complain.
func (t *Tool) SupportsEviction(ctx context.Context) bool {
	if t.Variant == Sccache {
		return false
	}
	v, err := t.Version(ctx)
	if err != nil || v == nil {
		common.Logger(ctx).Debugf("could not determine %s version, assuming eviction support", t.Variant)
		return true
	}
	return !v.LessThan(minEvictVersion)
}
