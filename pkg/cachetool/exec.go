package cachetool

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/nektos/cachepost/pkg/common"
)

type runCommandFunc func(ctx context.Context, argv []string) (string, error)

// runCommand executes argv and returns its combined output, streaming
// it line by line into the debug log as it arrives. There is no timeout
// beyond context cancellation; a hanging tool hangs the hook.
func runCommand(ctx context.Context, argv []string) (string, error) {
	logger := common.Logger(ctx)
	logger.Debugf("exec %s", strings.Join(argv, " "))

	rawLogger := logger.WithField("raw_output", true)
	logWriter := common.NewLineWriter(func(s string) {
		rawLogger.Debugf("%s", s)
	})

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = io.MultiWriter(&out, logWriter)
	cmd.Stderr = io.MultiWriter(&out, logWriter)

	if err := cmd.Run(); err != nil {
		return out.String(), errors.Wrapf(err, "run %s", strings.Join(argv, " "))
	}
	return out.String(), nil
}
