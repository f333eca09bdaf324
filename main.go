package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toyshop/api"
	"toyshop/cli"
	"toyshop/config"
	"toyshop/logger"
	"toyshop/openapi"
	"toyshop/toy"

	"github.com/spf13/cobra"
)

func main() {
	var configFile string
	var port int
	var publicDir string

	var rootCmd = &cobra.Command{
		Use:   "toyshop",
		Short: "Toyshop: toy catalogue REST API and single-page app host",
		Long: `Toyshop serves a small REST API for toys under /api/toy and the
built front-end from a public directory, falling back to index.html for
client-side routes.

Toys are kept in a JSON file by default. Set store.driver (or TOY_STORE)
to postgres or mongo to use a database instead.`,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "toyshop.yaml", "Path to the configuration file")

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if cmd.Flags().Changed("public") {
			cfg.PublicDir = publicDir
		}
		return runServer(cfg)
	}

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  serve,
	}
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on (overrides PORT)")
		c.Flags().StringVar(&publicDir, "public", config.DefaultPublicDir, "Directory with the built front-end")
	}
	rootCmd.RunE = serve
	rootCmd.AddCommand(serveCmd)

	open := func(ctx context.Context) (toy.Store, error) {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return toy.Open(ctx, cfg.Store, cfg.PageSize)
	}
	rootCmd.AddCommand(cli.CreateCLICommands(open)...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// runServer opens the store and serves the API and front-end until SIGINT or SIGTERM.
func runServer(cfg *config.Config) error {
	appLog, err := logger.New(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer appLog.Close()
	for _, w := range cfg.Warnings() {
		appLog.Warn(w)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := toy.Open(ctx, cfg.Store, cfg.PageSize)
	cancel()
	if err != nil {
		appLog.Error("Cannot open toy store", err)
		return err
	}
	defer store.Close()
	appLog.Infof("Using %s toy store", cfg.Store.Driver)

	doc, err := openapi.MarshalDocument(fmt.Sprintf("localhost:%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("build API document: %w", err)
	}

	handler := api.NewHandler(store, appLog, api.Options{
		PublicDir:   cfg.PublicDir,
		CORSOrigins: cfg.CORSOrigins,
		OpenAPI:     doc,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	// --- Graceful Shutdown Setup ---
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		cli.PrintBanner(cfg.Port)
		appLog.Infof("Server listening on port http://127.0.0.1:%d/", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		appLog.Error("Server failed", err)
		return err
	case <-stopChan:
	}
	appLog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server shutdown error", err)
	}
	appLog.Info("Server gracefully stopped.")
	return nil
}
