package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/cli"
	httpAdapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the Espalier engine in server mode, exposing session-based flow playback as a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optsFromFlags(cmd, args)
		port, _ := cmd.Flags().GetString("port")

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		// One engine up front validates the graph and serves /graph;
		// every session gets its own instance since players are stateful.
		first, err := cli.NewEngine(opts, espalier.WithPlayerHooks(metrics.Hooks()))
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}
		factory := func() (*httpAdapter.Session, error) {
			eng, err := cli.NewEngine(opts, espalier.WithPlayerHooks(metrics.Hooks()))
			if err != nil {
				return nil, err
			}
			return &httpAdapter.Session{Player: eng.Player(), Store: eng.Store()}, nil
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", httpAdapter.NewHandler(first.Graph(), factory, nil))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Espalier Server on %s\n", srv.Addr)
			fmt.Printf("Serving flow from: %s\n", opts.RepoPath)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "8080", "Port to listen on")
}
