package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaminalder/morabaraba/internal/app"
	"github.com/jaminalder/morabaraba/internal/config"
	"github.com/jaminalder/morabaraba/internal/web"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
	Addr       string
	LogLevel   string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Long: `Serve hot-seat games in the browser. Both players click on the same board.

Settings come from the built-in defaults, then the --config file, then flags.

Examples:
  morabaraba serve
  morabaraba serve --addr 127.0.0.1:9000 --log-level debug
  morabaraba serve --config morabaraba.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "log level (overrides config)")

	return cmd
}

func loadServeConfig(opts *ServeOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return cfg, err
		}
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, cfg.Validate()
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadServeConfig(opts)
	if err != nil {
		return commandError(err, "invalid configuration")
	}
	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return commandError(err, "invalid configuration")
	}

	svc := app.NewServiceWithOptions(app.Options{
		Logger:           &logger,
		MaxGames:         cfg.MaxGames,
		SubscriberBuffer: cfg.SubscriberBuffer,
	}, nil)
	srv := &http.Server{
		Handler:           web.NewServerWithOptions(svc, web.Options{Logger: logger, Heartbeat: cfg.Heartbeat}),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end with ctx so open event streams let Shutdown finish
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return commandError(err, "failed to listen")
	}
	logger.Info().Str("addr", ln.Addr().String()).Msg("listening")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return commandError(err, "server failed")
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return commandError(err, "shutdown failed")
	}
	return nil
}
