package cachetool

import (
	"context"

	"github.com/nektos/cachepost/pkg/common"
)

// ResolveVerbosity maps the action's verbose input to the flag suffix
// appended to the stats command. Unrecognized values are ignored with a
// single warning.
func ResolveVerbosity(ctx context.Context, level string) string {
	switch level {
	case "0":
		return ""
	case "1":
		return " -v"
	case "2":
		return " -vv"
	}
	common.Logger(ctx).Warningf("invalid value %q of 'verbose' option ignored", level)
	return ""
}
