package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type startOptions struct {
	configPath    string
	graphql       string
	port          int
	src           string
	enableHydrate bool
}

func newStartCommand() *cobra.Command {
	opts := &startOptions{}
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the page server",
		Long: `Start serving pages from the source directory.

Flags override the matching values in the config file, which is created with
defaults if it does not exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(cmd.Context(), cmd.Flags(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "./config.json", "Path to the config file")
	cmd.Flags().StringVarP(&opts.graphql, "graphql", "g", "", "URL of the GraphQL server")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 5000, "Port to serve pages on")
	cmd.Flags().StringVarP(&opts.src, "src", "s", "./src", "Path to the source files")
	cmd.Flags().BoolVarP(&opts.enableHydrate, "enable-hydrate", "e", true, "Render pages with Handlebars")

	return cmd
}

// apply copies every flag the user set onto cfg.
func (o *startOptions) apply(flags *pflag.FlagSet, cfg *ServerConfig) error {
	if flags.Changed("graphql") {
		cfg.GraphQLURL = o.graphql
	}
	if flags.Changed("src") {
		cfg.SrcDir = o.src
	}
	if flags.Changed("enable-hydrate") {
		cfg.EnableHydrate = o.enableHydrate
	}
	if flags.Changed("port") {
		if err := cfg.SetPort(o.port); err != nil {
			return err
		}
	}
	return nil
}

// runStart hosts both servers until ctx is canceled or a signal arrives.
func runStart(ctx context.Context, flags *pflag.FlagSet, opts *startOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	config, err := LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err = opts.apply(flags, config.Server); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)}))
	logger.Info("Starting hxql", "version", Version, "src", config.Server.SrcDir, "graphql", config.Server.GraphQLURL, "hydrate", config.Server.EnableHydrate)

	if info, statErr := os.Stat(config.Server.SrcDir); statErr != nil || !info.IsDir() {
		logger.Warn("Source directory is missing, every page will 404 until it exists", "src", config.Server.SrcDir)
	}

	var db *sql.DB
	if config.Server.EnableStats {
		db, err = initDB(config.Server.StatsDatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer func() {
			logger.Info("Closing database connection.")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}()
	}

	server, err := NewServer(config, logger, db)
	if err != nil {
		return fmt.Errorf("failed to create server object: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	servers := []*namedServer{{
		name: "site",
		srv:  &http.Server{Addr: config.Server.ServerAddr, Handler: server.SiteHandler(), ReadHeaderTimeout: 10 * time.Second},
	}}
	if config.Server.ApiAddr != "" {
		servers = append(servers, &namedServer{
			name: "api",
			srv:  &http.Server{Addr: config.Server.ApiAddr, Handler: server.APIHandler(), ReadHeaderTimeout: 10 * time.Second},
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, ns := range servers {
		g.Go(func() error {
			logger.Info("Starting "+ns.name+" server", "address", ns.srv.Addr)
			if err := ns.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server failed: %w", ns.name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Stopping servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, ns := range servers {
			if err := ns.srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown failed", "server", ns.name, "error", err)
			}
		}
		logger.Info("HTTP servers stopped.")
		return nil
	})

	return g.Wait()
}

type namedServer struct {
	name string
	srv  *http.Server
}
