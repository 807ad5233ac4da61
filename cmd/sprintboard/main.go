package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sprintboard/internal/config"
	"sprintboard/internal/events"
	"sprintboard/internal/planner"
	"sprintboard/internal/server"
	"sprintboard/internal/storage/sqlite"
	"sprintboard/internal/workspace"
)

const version = "1.0.0"

var (
	configPath string
	envFile    string
	addrFlag   string
	dbFlag     string
	staticFlag string
	levelFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "sprintboard",
	Short:         "Sprint and capacity planning board",
	Long:          `Sprintboard serves the planning API, the live board stream and the built frontend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and print the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := sqlite.Open(cfg.DBPath, logger, nil)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		status, err := store.MigrationStatus()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d of %d (dirty: %v)\n",
			status.CurrentVersion, status.LatestVersion, status.Dirty)
		return nil
	},
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the default workspace when none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := sqlite.Open(cfg.DBPath, logger, nil)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		created, err := workspace.New(store, logger).EnsureDefault(cmd.Context(), cfg.Owner)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "default workspace created")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "a workspace already exists; nothing to do")
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a TOML config file")
	flags.StringVar(&envFile, "env-file", ".env", "Path to a .env file, ignored when missing")
	flags.StringVar(&addrFlag, "addr", "", "HTTP listen address")
	flags.StringVar(&dbFlag, "db", "", "Path to sqlite database file")
	flags.StringVar(&staticFlag, "static", "", "Directory with built frontend")
	flags.StringVar(&levelFlag, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd, migrateCmd, provisionCmd)
}

// setup loads the configuration, applies explicit flags and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = addrFlag
	}
	if flags.Changed("db") {
		cfg.DBPath = dbFlag
	}
	if flags.Changed("static") {
		cfg.StaticDir = staticFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = levelFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	logger.Info("sprintboard", slog.String("version", version))

	store, err := sqlite.Open(cfg.DBPath, logger, events.NewHub())
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}
	defer store.Close()

	scope := workspace.New(store, logger)
	if _, err := scope.EnsureDefault(cmd.Context(), cfg.Owner); err != nil {
		return err
	}

	srv := server.New(planner.New(store, scope, logger), logger, cfg.StaticDir)

	// Streams follow the base context so shutdown does not wait on them.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	httpServer.RegisterOnShutdown(stopStreams)

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
