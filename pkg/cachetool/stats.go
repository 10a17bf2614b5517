package cachetool

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/nektos/cachepost/pkg/common"
)

// PrintStats runs the stats command and logs the cache size lines. The
// verbosity suffix comes from ResolveVerbosity and must be empty when
// the binary does not support verbose stats.
func (t *Tool) PrintStats(ctx context.Context, verbosity string) error {
	out, err := t.exec(ctx, statsArgs(verbosity)...)
	if err != nil {
		return errors.Wrap(err, "read stats")
	}

	logger := common.Logger(ctx)
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(strings.ToLower(line), "cache size") {
			logger.Info(line)
		}
	}
	return nil
}

func statsArgs(verbosity string) []string {
	return append([]string{"-s"}, strings.Fields(verbosity)...)
}
