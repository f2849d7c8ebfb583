package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/krakosik/pollbot/internal/bot"
	"github.com/krakosik/pollbot/internal/client"
	"github.com/krakosik/pollbot/internal/controller"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/repository"
	"github.com/krakosik/pollbot/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	var httpAddress string
	var databaseURL string
	var debug bool

	cmd := &cobra.Command{
		Use:          "pollbot",
		Short:        "Slack bot for meeting scheduling and polls",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				logrus.Warnf("Error loading .env file: %v", err)
			}

			cfg := dto.LoadConfig()
			if err := cfg.ReadConfigFile(configPath); err != nil {
				return err
			}
			if httpAddress != "" {
				cfg.HTTPAddress = httpAddress
			}
			if databaseURL != "" {
				cfg.DatabaseURL = databaseURL
			}
			if debug {
				cfg.SlackDebug = true
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			configureLogging(cfg)
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "yaml configuration file")
	cmd.Flags().StringVar(&httpAddress, "http", "", "address of the http server")
	cmd.Flags().StringVar(&databaseURL, "database", "", "database url or sqlite file")
	cmd.Flags().BoolVarP(&debug, "verbose", "v", false, "verbose logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configureLogging(cfg dto.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func run(cfg dto.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg)
	if err != nil {
		return err
	}
	repositories := repository.NewRepositories(db)

	clients := client.NewClients(cfg)
	defer func() {
		if err := clients.Close(); err != nil {
			logrus.Errorf("Error closing clients: %v", err)
		}
	}()

	services := service.NewServices(repositories, cfg, clients)

	e := echo.New()
	e.HideBanner = true
	controller.NewControllers(services, clients.Broker()).Route(e)
	go func() {
		logrus.Infof("HTTP server listening on %s", cfg.HTTPAddress)
		if err := e.Start(cfg.HTTPAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("HTTP server failed: %v", err)
			stop()
		}
	}()

	botErr := bot.New(clients, services).Run(ctx)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Error shutting down HTTP server: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logrus.Info("Pollbot stopped")

	return botErr
}
