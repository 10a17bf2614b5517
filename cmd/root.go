package cmd

import (
	"context"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nektos/cachepost/pkg/common"
	"github.com/nektos/cachepost/pkg/jobstate"
	"github.com/nektos/cachepost/pkg/post"
)

// Execute is the entry point to running the post hook
func Execute(ctx context.Context, version string) {
	input := new(Input)
	rootCmd := &cobra.Command{
		Use:          "cachepost",
		Short:        "Report, trim and save the ccache/sccache directory of a finished CI job.",
		Args:         cobra.NoArgs,
		RunE:         newRunAction(ctx, input),
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.Flags().StringVar(&input.verbose, "stats-verbosity", "", `stats verbosity "0", "1" or "2", overriding the "verbose" action input`)
	rootCmd.Flags().BoolVar(&input.exit, "exit", true, "terminate the process as soon as the save flow is done")
	rootCmd.PersistentFlags().BoolVarP(&input.debug, "debug", "d", false, "debug output")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunAction(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		logger := setupLogging(input)
		ctx := common.WithLogger(ctx, logger)

		result := post.Run(ctx, post.Config{
			State:   jobstate.FromEnvironment(),
			Verbose: input.Verbose(),
		})
		logger.Debugf("save flow finished: %s", result.Outcome)

		// skip whatever runtime teardown remains, there is no work left
		if input.exit && result.Done {
			os.Exit(0)
		}
		return nil
	}
}

func setupLogging(input *Input) *log.Logger {
	logger := log.StandardLogger()
	logger.SetFormatter(&log.TextFormatter{
		DisableQuote:     true,
		DisableTimestamp: true,
		PadLevelText:     true,
		DisableColors:    !terminalOutput(),
	})
	if input.debug || os.Getenv("RUNNER_DEBUG") == "1" {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
