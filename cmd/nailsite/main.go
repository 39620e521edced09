// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point of nailsite. It builds the site from a
// content directory and either exports it as static HTML or serves it
// over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nailsite/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flags holds command-line overrides for the environment configuration.
type flags struct {
	contentDir string
	outputDir  string
	watch      bool
}

func newRootCmd() *cobra.Command {
	var f flags
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "nailsite",
		Short:         "Builds and serves the marketing site and blog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if f.contentDir != "" {
				cfg.ContentDir = f.contentDir
			}
			if f.outputDir != "" {
				cfg.OutputDir = f.outputDir
			}
			setupLogger(cfg)
			slog.Info("configuration loaded",
				"env", cfg.Env,
				"content", cfg.ContentDir,
				"trusted", cfg.ContentTrusted,
			)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&f.contentDir, "content", "", "content directory (overrides CONTENT_DIR)")

	build := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cfg)
		},
	}
	build.Flags().StringVarP(&f.outputDir, "out", "o", "", "output directory (overrides OUTPUT_DIR)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg, f.watch)
		},
	}
	serve.Flags().BoolVarP(&f.watch, "watch", "w", false, "rebuild when content changes")

	root.AddCommand(build, serve)
	return root
}

// setupLogger outputs text at debug level in development and JSON
// otherwise.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}
