package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuranne/run/internal/config"
	"github.com/kuranne/run/internal/runner"
	"github.com/kuranne/run/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "run [files...]",
	Short:        "Compile and run source files",
	Long:         `Compile source files incrementally, link and run the result. Unchanged files are served from the object cache.`,
	RunE:         runRoot,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	rootCmd.Flags().Bool("keep", false, "Keep the produced executable(s)")
	rootCmd.Flags().BoolP("multi", "m", false, "Compile multiple files into one executable")
	rootCmd.Flags().BoolP("time", "t", false, "Print elapsed time for the executed binary")
	rootCmd.Flags().BoolP("dry-run", "d", false, "Print commands without running them")
	rootCmd.Flags().StringP("preset", "p", "", "Flag preset from the config file")
	rootCmd.Flags().StringP("flags", "f", "", "Extra compiler flags")
	rootCmd.Flags().StringP("argument", "a", "", "Arguments passed to the executed program")
	rootCmd.Flags().Bool("no-cache", false, "Disable the object cache for this run")
	rootCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.Flags().IntP("link-auto", "L", 0, "Auto-find and link C/C++ files, with optional depth limit")
	rootCmd.Flags().Lookup("link-auto").NoOptDefVal = "-1"

	rootCmd.AddCommand(cacheCmd)
}

// setupLogging configures the process logger: progress lines at Info when
// verbose, warnings only otherwise.
func setupLogging(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return logger
}

func runRoot(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.LoadForRun(cmd, args)
	if err != nil {
		return err
	}

	logger := setupLogging(cfg.Verbose)

	linkAuto := cmd.Flags().Changed("link-auto")

	files := args
	if len(files) == 0 && linkAuto {
		depth, _ := cmd.Flags().GetInt("link-auto")

		files, err = runner.FindSourceFiles(".", depth)
		if err != nil {
			return err
		}

		if len(files) == 0 {
			return fmt.Errorf("no supported source files found (depth %d)", depth)
		}

		fmt.Printf("Auto-found %d source files\n", len(files))
		cfg.Multi = true
	}

	if len(files) == 0 {
		return cmd.Help()
	}

	r, err := runner.New(cfg)
	if err != nil {
		return err
	}
	r.WithLogger(logger)
	defer r.Cleanup()

	return r.CompileAndRun(files)
}
