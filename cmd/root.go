package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gnolang/errfix/fix"
	"github.com/gnolang/errfix/internal"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootDir      string
	cfgFile      string
	dryRun       bool
	ignoreRules  string
	ignorePaths  string
	useCache     bool
	showProgress bool
	verbose      bool
	timeout      time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "errfix",
	Short: "errfix - rewrite unchecked error results so errcheck passes",
	Long: `errfix walks a tree of Go files and rewrites statements that drop an
error result, either binding the result to the blank identifier or wrapping
the call in an explicit check. Running it twice changes nothing the second time.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return err
		}
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		runner, err := newRunner(cmd)
		if err != nil {
			return err
		}

		// per-file failures are reported, not fatal
		_, err = runner.Run(ctx)
		return err
	},
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootDir, "root", "", "Directory to fix (default: config root, else the current directory)")
	flags.StringVar(&cfgFile, "config", fix.DefaultConfigPath, "Configuration file (.yaml or .toml)")
	flags.BoolVar(&dryRun, "dry-run", false, "Report the files that would change without writing them")
	flags.StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to skip")
	flags.StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of globs to skip")
	flags.BoolVar(&useCache, "cache", false, "Skip files a previous run found clean")
	flags.BoolVar(&showProgress, "progress", false, "Show a progress bar on a terminal")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every file")
	flags.DurationVar(&timeout, "timeout", 0, "Stop between files after this long (0 means no limit)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return config.Build()
}

// commandContext is cancelled on interrupt and, if set, after the timeout.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// loadConfig reads --config. Only an explicitly named file must exist.
func loadConfig(cmd *cobra.Command) (fix.Config, error) {
	return fix.LoadConfig(cfgFile, cmd.Flags().Changed("config"))
}

// newRunner builds a runner from the configuration file and the flags.
func newRunner(cmd *cobra.Command) (*fix.Runner, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	root, err := cfg.ResolveRoot(rootDir)
	if err != nil {
		return nil, err
	}

	reporter := internal.NewConsoleReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), dryRun)
	runner, err := fix.New(root, cfg, reporter, logger)
	if err != nil {
		return nil, err
	}
	runner.Engine.SetDryRun(dryRun)

	fix.IgnoreRules(runner.Engine, ignoreRules)
	for _, pattern := range strings.Split(ignorePaths, ",") {
		if pattern = strings.TrimSpace(pattern); pattern == "" {
			continue
		}
		if err := runner.IgnorePath(pattern); err != nil {
			return nil, err
		}
	}

	// the cache is keyed on the final catalog, so it comes after the ignores
	if useCache || cfg.Cache {
		dir, err := fix.DefaultCacheDir(root)
		if err != nil {
			return nil, err
		}
		if err := runner.EnableCache(dir); err != nil {
			logger.Warn("cache disabled", zap.Error(err))
		}
	}

	if showProgress && isatty.IsTerminal(os.Stderr.Fd()) {
		runner.EnableProgress(cmd.ErrOrStderr())
	}

	logger.Debug("runner ready",
		zap.String("root", root),
		zap.Int("rules", len(runner.Engine.Catalog())),
		zap.Bool("dry_run", dryRun))
	return runner, nil
}
