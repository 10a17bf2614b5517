// Package cachetool drives the installed compiler cache binary (ccache
// or sccache) through its command line interface. All knowledge about
// the two variants' flags and stats output formats lives here.
package cachetool

import (
	"context"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

// Variant identifies which compiler cache binary is in use.
type Variant string

const (
	Ccache  Variant = "ccache"
	Sccache Variant = "sccache"
)

// Tool is a handle on the installed cache binary.
type Tool struct {
	Variant Variant

	argv []string
	run  runCommandFunc
}

// New resolves the tool for a variant. The invocation can be overridden
// with CACHEPOST_COMMAND, a shell-quoted command line, for wrappers or
// binaries outside PATH.
func New(variant string) (*Tool, error) {
	v := Variant(variant)
	switch v {
	case Ccache, Sccache:
	default:
		return nil, errors.Errorf("unknown cache tool variant %q", variant)
	}

	argv := []string{string(v)}
	if override := os.Getenv("CACHEPOST_COMMAND"); override != "" {
		split, err := shellquote.Split(override)
		if err != nil {
			return nil, errors.Wrap(err, "parse CACHEPOST_COMMAND")
		}
		if len(split) > 0 {
			argv = split
		}
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, errors.Wrapf(err, "locate %s binary", v)
	}
	argv[0] = path

	return &Tool{Variant: v, argv: argv, run: runCommand}, nil
}

// CacheDir returns the conventional on-disk cache directory for the
// variant, relative to the working directory.
func (t *Tool) CacheDir() string {
	return "." + string(t.Variant)
}

func (t *Tool) exec(ctx context.Context, args ...string) (string, error) {
	argv := append(append([]string{}, t.argv...), args...)
	return t.run(ctx, argv)
}
