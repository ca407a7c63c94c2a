// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

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

	"github.com/AleutianAI/sfcdiff/pkg/ux"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/telemetry"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the comparison whenever either revision changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, debounce)
		},
	}
	addRevisionFlags(cmd, a)
	cmd.Flags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultOptions().Debounce, "quiet period before re-running")
	return cmd
}

func (a *app) runWatch(ctx context.Context, debounce time.Duration) error {
	svc := sfcdiff.NewService(a.cfg)

	if a.metricsAddr != "" {
		srv, err := a.serveMetrics()
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	run := func() {
		report, err := svc.CompareFiles(ctx, a.oldPath, a.newPath)
		if err != nil {
			ux.NewPrinter(a.stderr).Error(err.Error())
			return
		}
		if err := a.writeReport(report); err != nil {
			slog.Error("Writing report failed", slog.String("error", err.Error()))
		}
	}

	w, err := watch.New([]string{a.oldPath, a.newPath}, func(changes []watch.Change) {
		for _, c := range changes {
			slog.Info("Revision changed", slog.String("path", c.Path), slog.String("op", c.Op.String()))
		}
		run()
	}, &watch.Options{Debounce: debounce})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	run()
	slog.Info("Watching for changes",
		slog.String("old", a.oldPath),
		slog.String("new", a.newPath))

	<-ctx.Done()
	slog.Info("Stopping watcher")
	return nil
}

func (a *app) serveMetrics() (*http.Server, error) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return nil, errors.New("metrics exporter is not initialized")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              a.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()
	slog.Info("Serving metrics", slog.String("address", a.metricsAddr))
	return srv, nil
}
