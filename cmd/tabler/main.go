// Package main is the entry point of the Tabler demo host. It builds the
// generated asset tree, serves the demo pages with graceful shutdown, and
// can publish the generated tree to an S3-compatible bucket.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tablerkit/internal/config"
	"tablerkit/internal/storage"
	"tablerkit/internal/tabler"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tabler",
		Short:         "Tabler asset and preference host",
		Long:          "Builds the Tabler bundles, serves the demo pages and publishes the generated assets.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSyncCmd(),
		newPublishCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs the default logger: JSON
// in production, text at debug level in development.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"static_dir", cfg.StaticDir,
		"session_backend", cfg.SessionBackend,
	)
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the generated tree and serve the demo pages",
		RunE:  runServe,
	}
	cmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Time allowed for active requests to finish")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	timeout, err := cmd.Flags().GetDuration("shutdown-timeout")
	if err != nil {
		return fmt.Errorf("invalid shutdown-timeout flag: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := build(cmd.Context(), cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Build the bundles and copy fonts and images, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := build(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.close()

			stats := a.ext.Copied()
			fmt.Fprintf(cmd.OutOrStdout(), "generated %s (%d copied, %d unchanged)\n",
				a.ext.OutputDir(), stats.Copied, stats.Skipped)
			return nil
		},
	}
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the generated tree to the configured S3 bucket",
		RunE:  runPublish,
	}
	cmd.Flags().String("prefix", tabler.GenDir, "Key prefix inside the bucket")
	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return fmt.Errorf("invalid prefix flag: %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.HasS3() {
		return errors.New("S3 storage not configured (S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY)")
	}

	client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("s3 storage: %w", err)
	}

	a, err := build(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	stats, err := client.Publish(cmd.Context(), a.ext.OutputDir(), prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published to %s (%d uploaded, %d unchanged)\n",
		client.FileURL(prefix), stats.Uploaded, stats.Skipped)
	return nil
}
