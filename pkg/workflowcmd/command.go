// Package workflowcmd emits GitHub Actions workflow commands.
//
// When the hook runs inside a workflow (GITHUB_ACTIONS=true) messages are
// written to stdout in the `::command::` wire format so the runner picks
// up severities and log groups. Outside a workflow everything falls back
// to the context logger.
package workflowcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nektos/cachepost/pkg/common"
)

// Emitter writes workflow commands to out, or logs through the context
// logger when not running under Actions.
type Emitter struct {
	out      io.Writer
	onGitHub bool
}

// New returns an Emitter configured from the process environment.
func New() *Emitter {
	return &Emitter{
		out:      os.Stdout,
		onGitHub: os.Getenv("GITHUB_ACTIONS") == "true",
	}
}

// NewWithWriter returns an Emitter writing commands to out unconditionally.
func NewWithWriter(out io.Writer) *Emitter {
	return &Emitter{out: out, onGitHub: true}
}

func (e *Emitter) issue(command, msg string) {
	fmt.Fprintf(e.out, "::%s::%s\n", command, escapeCommandData(msg))
}

// Notice emits a notice annotation, or logs at info level off GitHub.
func (e *Emitter) Notice(ctx context.Context, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if e.onGitHub {
		e.issue("notice", msg)
		return
	}
	common.Logger(ctx).Info(msg)
}

// Warning emits a warning annotation, or logs at warning level off GitHub.
func (e *Emitter) Warning(ctx context.Context, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if e.onGitHub {
		e.issue("warning", msg)
		return
	}
	common.Logger(ctx).Warning(msg)
}

// Group opens a collapsible log group with the given title.
func (e *Emitter) Group(ctx context.Context, title string) {
	if e.onGitHub {
		e.issue("group", title)
		return
	}
	common.Logger(ctx).Infof("--- %s", title)
}

// EndGroup closes the current log group.
func (e *Emitter) EndGroup(_ context.Context) {
	if e.onGitHub {
		fmt.Fprintln(e.out, "::endgroup::")
	}
}

// InGroup wraps an executor in a Group/EndGroup pair.
func (e *Emitter) InGroup(title string, exec common.Executor) common.Executor {
	return func(ctx context.Context) error {
		e.Group(ctx, title)
		defer e.EndGroup(ctx)
		return exec(ctx)
	}
}

func escapeCommandData(arg string) string {
	escapeMap := []struct{ from, to string }{
		{"%", "%25"},
		{"\r", "%0D"},
		{"\n", "%0A"},
	}
	for _, e := range escapeMap {
		arg = strings.ReplaceAll(arg, e.from, e.to)
	}
	return arg
}
