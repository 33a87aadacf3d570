package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"robot_dashboard/internal/client"
	"robot_dashboard/internal/config"
	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/repository"
	"robot_dashboard/internal/repository/db"
	"robot_dashboard/internal/service"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	bridgeURL  string
	dbPath     string

	cfg *config.Config
	log *logger.Logger
}

func (r *rootOptions) prepare() error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return err
	}
	if r.bridgeURL != "" {
		cfg.Bridge.URL = r.bridgeURL
	}
	if r.dbPath != "" {
		cfg.DB.Path = r.dbPath
	}
	r.cfg = cfg
	r.log = logger.Get(cfg.LogLevel, cfg.LogFormat)
	return nil
}

func (r *rootOptions) client() *client.Client {
	return client.NewWithClient(r.cfg.Bridge.URL, r.cfg.Bridge.Path, &http.Client{}, r.log.Named("client"))
}

// app is the service graph robotctl shares with the dashboard server: same
// sqlite file, same bridge.
type app struct {
	services *service.Service
	db       *sql.DB
}

func (r *rootOptions) open(ctx context.Context) (*app, error) {
	sqlDB, err := db.InitDB(r.cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.cfg.DB.Path, err)
	}
	services, err := service.NewService(ctx, service.Deps{
		Repos:   repository.NewRepository(sqlDB),
		Runner:  r.client(),
		Options: service.OptionsFromConfig(r.cfg),
		Log:     r.log,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &app{services: services, db: sqlDB}, nil
}

func (a *app) Close() {
	a.services.Close()
	_ = a.db.Close()
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "robotctl",
		Short:         "Drive the robot bridge from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yml (default configs/config.yml)")
	rootCmd.PersistentFlags().StringVar(&opts.bridgeURL, "bridge-url", "", "base URL of the /api/ros2 bridge (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite database path (overrides config)")
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return opts.prepare()
	}

	rootCmd.AddCommand(newExecCmd(opts))
	rootCmd.AddCommand(newProbeCmd(opts))
	rootCmd.AddCommand(newPairCmd(opts))
	rootCmd.AddCommand(newStateCmd(opts))
	rootCmd.AddCommand(newTopicsCmd(opts))
	rootCmd.AddCommand(newLogsCmd(opts))
	rootCmd.AddCommand(newTeleopCmd(opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
