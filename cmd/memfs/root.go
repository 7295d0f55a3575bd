package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/internal/shell"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/requests"
	"github.com/brettbedarf/memfs/server"
)

type rootFlags struct {
	configPath  string
	seedPath    string
	demo        bool
	verbose     int
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "memfs",
		Short: "In-memory virtual file system",
		Long: `memfs keeps a tree of directories and files entirely in memory and serves
it through a URI based provider (scheme:/a/b), reporting every change to watchers.

Without a subcommand it starts the interactive shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML or JSON config file")
	pf.StringVarP(&flags.seedPath, "seed", "s", "", "Path to a YAML or JSON seed file (overrides seed_file from config)")
	pf.BoolVar(&flags.demo, "demo", false, "Seed the demo tree")
	pf.IntVarP(&flags.verbose, "verbose", "v", config.InfoVerbose,
		"Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Run commands against the file system read from stdin",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runShell(cmd, flags)
			},
		},
		&cobra.Command{
			Use:   "tree [uri]",
			Short: "Print the seeded tree",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTree(cmd, flags, args)
			},
		},
	)
	return root
}

// loadConfig builds the config from defaults, the optional file and explicit flags
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if flags.configPath != "" {
		var err error
		if cfg, err = config.NewConfigFromFile(flags.configPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	override := &config.ConfigOverride{}
	if cmd.Flags().Changed("verbose") || flags.configPath == "" {
		override.LogLvl = &flags.verbose
	}
	if flags.seedPath != "" {
		override.SeedFile = &flags.seedPath
	}
	cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup creates and seeds the file system and starts the metrics server if asked
func setup(cmd *cobra.Command, flags *rootFlags) (*server.MemFS, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	util.InitializeLogger(cfg.LogLvl, cmd.ErrOrStderr())
	logger := util.GetLogger("main")
	logger.Info().Str("scheme", cfg.Scheme).Str("seed", cfg.SeedFile).Bool("demo", flags.demo).Msg("memfs initializing")

	m := server.New(cfg)
	if flags.demo {
		if _, err := m.Seed(requests.DemoSeed()); err != nil {
			logger.Warn().Err(err).Msg("Demo seed partially applied")
		}
	}
	if cfg.SeedFile != "" {
		if _, err := m.SeedFile(cfg.SeedFile); err != nil {
			if errors.Is(err, server.ErrSeedFile) {
				_ = m.Shutdown()
				return nil, err
			}
			logger.Warn().Err(err).Str("seed", cfg.SeedFile).Msg("Seed file partially applied")
		}
	}
	if flags.metricsAddr != "" {
		done, err := m.ServeMetricsAsync(flags.metricsAddr)
		if err != nil {
			_ = m.Shutdown()
			return nil, err
		}
		go func() {
			if err := <-done; err != nil {
				logger.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}
	return m, nil
}

func runShell(cmd *cobra.Command, flags *rootFlags) error {
	m, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Shutdown(); err != nil {
			logger := util.GetLogger("main")
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File system provider initialized for %s:/. Type 'help' for commands.\n", m.Config().Scheme)
	sh := shell.New(m.Registry, m.Provider, out)
	if err := sh.Run(ctx, cmd.InOrStdin()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runTree(cmd *cobra.Command, flags *rootFlags, args []string) error {
	m, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer m.Shutdown() //nolint:errcheck

	target := m.Provider.Root()
	if len(args) == 1 {
		_, uri, err := m.Registry.Resolve(args[0])
		if err != nil {
			return err
		}
		target = uri
	}
	rendered, err := shell.RenderTree(m.Provider, target)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return nil
}
