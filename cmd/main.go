package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "robot_dashboard/docs"
	"robot_dashboard/internal/client"
	"robot_dashboard/internal/config"
	"robot_dashboard/internal/executor"
	"robot_dashboard/internal/handlers"
	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/repository"
	"robot_dashboard/internal/repository/db"
	"robot_dashboard/internal/server"
	"robot_dashboard/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title                       Robot Dashboard API
// @version                     1.0
// @description                 Command bridge, pairing wizard and teleoperation for a TurtleBot3.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "", "path to config.yml (default configs/config.yml)")
	flag.Parse()

	// load config.yml
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services, err := service.NewService(ctx, service.Deps{
		Repos:    repos,
		Runner:   client.NewWithClient(cfg.Bridge.URL, cfg.Bridge.Path, &http.Client{}, log.Named("client")),
		Executor: executor.NewShellExecutor(cfg.Executor.Shell, cfg.Executor.WaitDelay, log.Named("executor")),
		Options:  service.OptionsFromConfig(cfg),
		Log:      log,
	})
	if err != nil {
		log.Fatalw("failed to init services", "err", err)
	}
	apiHandler := handlers.NewHandler(services, log.Named("http"), handlers.WithAllowedOrigins(cfg.CORS.AllowOrigins))

	// bind before the poller starts: the monitor probes /api/ros2 on this
	// server, and a refused first probe would mark a paired robot lost
	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	if err := srv.Listen(cfg.Port, apiHandler.InitRoutes()); err != nil {
		log.Fatalw("error binding server", "port", cfg.Port, "err", err)
	}
	runHTTPServer(srv, log)

	// start connection poller
	go services.Monitor.Run(ctx, cfg.Monitor.Interval)

	// graceful shutdown
	waitForShutdown(cancel, srv, services, log)
}

// runHTTPServer serves the bound listener in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	log.Infow("listening", "addr", srv.Addr().String())
	go func() {
		if err := srv.Serve(); err != nil {
			log.Fatalw("error serving http", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the poller, then any pairing attempt still running
	cancel()
	services.Close()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
