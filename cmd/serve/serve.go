// Package serve implements the HTTP API server command.
package serve

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	api "github.com/tmattila/artstore-go/internal/api/v2"
	"github.com/tmattila/artstore-go/internal/conf"
	"github.com/tmattila/artstore-go/internal/datastore"
	"github.com/tmattila/artstore-go/internal/logging"
)

// Command creates a new command to start the API server.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the artstore API server",
		Long:  "Open the database and serve the artifact management API over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the API server")
	cmd.Flags().StringVar(&settings.Database.SQLite.Path, "dbpath", viper.GetString("database.sqlite.path"), "Path to the SQLite database file")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}

// runServer opens the datastore, starts the echo server and blocks until a
// shutdown signal arrives.
func runServer(settings *conf.Settings) error {
	logger := log.New(os.Stdout, "artstore: ", log.LstdFlags)
	slogger := logging.ForService("server")

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database backend enabled")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			slogger.Error("Failed to close datastore", "error", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	controller := api.New(e, ds, settings, logger)
	defer controller.Shutdown()

	errChan := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		slogger.Info("Starting API server", "addr", addr, "version", settings.Version)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slogger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
