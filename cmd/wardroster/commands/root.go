package commands

import (
	"context"
	"fmt"
	"os"
	"wardroster/internal/config"
	"wardroster/lib/telemetry"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	cacheDir   string
	dumpHttp   string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "wardroster",
		Short: "wardroster fetches the member and calling reports of a unit and renders them as a static page.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.InitSlog(flags.verbose)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultFile, "The config file to read.")
	rootCmd.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", "", "Overrides the cache directory of the config.")
	rootCmd.PersistentFlags().StringVar(&flags.dumpHttp, "dump-http", "", "Writes every request and response to this directory.")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enables debug logging.")

	rootCmd.AddCommand(
		newRefreshCmd(flags),
		newPhotosCmd(flags),
		newReportCmd(flags),
		newStatusCmd(flags),
		newRunCmd(flags),
	)
	return rootCmd
}

// ExecuteContext runs the command line and returns the exit code.
func ExecuteContext(ctx context.Context, args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
