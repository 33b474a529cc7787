package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/barfet/wellbeing-check-in-agent/internal/adapters/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reflection HTTP server",
	Long:  `Starts the check-in agent in server mode, exposing the stateless turn endpoint and the session API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp(cmd.Context(), cmd, true)
		if err != nil {
			fmt.Printf("Error initializing checkin: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		server := httpapi.NewServer(app.orc, app.sessions, httpapi.WithLogger(app.logger))
		app.onGeneratorFailure = func(node string) {
			server.Metrics().GeneratorFailures.WithLabelValues(node).Inc()
		}

		addr := app.cfg.HTTP.Addr
		if flagAddr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			addr = flagAddr
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: server.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			app.logger.Info("starting checkin server", "addr", srv.Addr, "store", app.cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			app.logger.Error("server error", "err", err)
			os.Exit(1)

		case sig := <-shutdown:
			app.logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					app.logger.Error("error killing server", "err", err)
				}
			}
			app.logger.Info("checkin server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides config)")
}
