package cmd

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nektos/cachepost/pkg/jobstate"
)

// Input contains the input for the root command
type Input struct {
	verbose string
	debug   bool
	exit    bool
}

// Verbose returns the effective stats verbosity: the flag when given,
// else the "verbose" action input, else "0".
func (i *Input) Verbose() string {
	if i.verbose != "" {
		return i.verbose
	}
	if v := jobstate.GetInput("verbose"); v != "" {
		return v
	}
	return "0"
}

func terminalOutput() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
