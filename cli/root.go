// server/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ViniZap4/carnet-server/config"
	"github.com/ViniZap4/carnet-server/logging"
	"github.com/ViniZap4/carnet-server/settings"
)

// Version is set at build time.
var Version = "dev"

type options struct {
	configFile string
	root       string
}

func RootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "carnet-server",
		Short:         "Serve a folder of markdown notes",
		Long:          "carnet-server exposes a folder of markdown notes over a local HTTP API or as MCP tools.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, "")
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default is ./"+config.DefaultFile+" when present)")
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "notes root, overrides CARNET_ROOT")

	cmd.AddCommand(ServeCmd(opts))
	cmd.AddCommand(MCPCmd(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger shared by all
// commands.
func setup(opts *options) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if opts.root != "" {
		cfg.Root = opts.root
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// openRootStore picks the PostgreSQL store when a database is configured,
// the state file otherwise. The returned func releases it.
func openRootStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (settings.RootStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Debug().Str("dir", cfg.StateDir).Msg("using file root store")
		return settings.NewFileRootStore(afero.NewOsFs(), cfg.StateDir), func() {}, nil
	}

	if err := settings.Migrate(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}
	store, err := settings.NewPostgresRootStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Msg("using postgres root store")
	return store, store.Close, nil
}

// defaultRoot falls back to the last root used when none is configured.
func defaultRoot(ctx context.Context, cfg *config.Config, roots settings.RootStore, log zerolog.Logger) string {
	if cfg.Root != "" {
		return cfg.Root
	}
	last, err := roots.LastRoot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read last root")
		return ""
	}
	if last == nil {
		return ""
	}
	return *last
}
