// server/cli/serve.go
package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ViniZap4/carnet-server/diff"
	carnethttp "github.com/ViniZap4/carnet-server/http"
	"github.com/ViniZap4/carnet-server/metrics"
	"github.com/ViniZap4/carnet-server/settings"
)

const shutdownTimeout = 5 * time.Second

func ServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides CARNET_ADDR")
	return cmd
}

func runServe(ctx context.Context, opts *options, addr string) error {
	cfg, log, err := setup(opts)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	roots, closeRoots, err := openRootStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRoots()

	srv, err := carnethttp.NewServer(carnethttp.Options{
		Root:     defaultRoot(ctx, cfg, roots, log),
		Token:    cfg.Token,
		Logger:   log,
		Settings: settings.NewStore(afero.NewOsFs()),
		Roots:    roots,
		Diff:     diff.NewService(),
		Metrics:  metrics.New(),
	})
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
