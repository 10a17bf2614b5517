package cachetool

import (
	"context"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nektos/cachepost/pkg/common"
)

// UptimeProbe returns the system uptime in whole seconds since boot.
type UptimeProbe interface {
	Uptime(ctx context.Context) (int64, error)
}

// NewUptimeProbe selects the probe strategy for the current platform.
func NewUptimeProbe() UptimeProbe {
	if runtime.GOOS == "darwin" || strings.HasSuffix(runtime.GOOS, "bsd") {
		return &sysctlUptimeProbe{run: runCommand, now: time.Now}
	}
	return &procUptimeProbe{path: "/proc/uptime"}
}

// procUptimeProbe reads the kernel's /proc/uptime pseudo-file.
type procUptimeProbe struct {
	path string
}

func (p *procUptimeProbe) Uptime(_ context.Context) (int64, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", p.path)
	}
	return parseProcUptime(string(data))
}

func parseProcUptime(out string) (int64, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, errors.Errorf("unexpected uptime content %q", out)
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected uptime content %q", out)
	}
	return int64(seconds), nil
}

// sysctlUptimeProbe derives uptime from `sysctl -n kern.boottime` on
// darwin and the BSDs.
type sysctlUptimeProbe struct {
	run runCommandFunc
	now func() time.Time
}

var boottimePattern = regexp.MustCompile(`sec = (\d+)`)

func (p *sysctlUptimeProbe) Uptime(ctx context.Context) (int64, error) {
	out, err := p.run(ctx, []string{"sysctl", "-n", "kern.boottime"})
	if err != nil {
		return 0, err
	}
	boot, err := parseSysctlBoottime(out)
	if err != nil {
		return 0, err
	}
	uptime := p.now().Unix() - boot
	common.Logger(ctx).Debugf("boot time epoch %d, uptime %ds", boot, uptime)
	return uptime, nil
}

func parseSysctlBoottime(out string) (int64, error) {
	m := boottimePattern.FindStringSubmatch(out)
	if m == nil {
		return 0, errors.Errorf("unexpected kern.boottime output %q", out)
	}
	boot, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected kern.boottime output %q", out)
	}
	return boot, nil
}
