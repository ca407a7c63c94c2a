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
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/sfcdiff/pkg/logging"
	"github.com/AleutianAI/sfcdiff/pkg/ux"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/config"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/telemetry"
)

// app holds flag values and the state built in PersistentPreRunE.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// global flags
	configPath    string
	logLevel      string
	logJSON       bool
	outputLevel   string
	traceExporter string

	// compare and watch flags
	oldPath     string
	newPath     string
	outPath     string
	jsonOutput  bool
	metricsAddr string

	cfg      *config.Config
	logger   *logging.Logger
	shutdown func(context.Context) error
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "sfcdiff",
		Short: "Decide keep/drop/left for tracked regions of a changed component",
		Long: `sfcdiff compares two revisions of a single-file component and, for the
acknowledgements block and the contributor roster, reports whether a merge
can keep the old region, should take the new one, or needs a human.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (default: embedded, or $"+config.EnvConfigPath+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.BoolVar(&a.logJSON, "log-json", false, "write logs as JSON")
	flags.StringVar(&a.outputLevel, "output", "", "output level: full, minimal, machine (default: detect from terminal)")
	flags.StringVar(&a.traceExporter, "trace", "", "trace exporter: stdout or none (default: $OTEL_TRACES_EXPORTER)")

	root.AddCommand(newCompareCmd(a), newWatchCmd(a), newConfigCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, a.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	a.cfg = cfg

	levelName := cfg.Logging.Level
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	level := logging.LevelInfo
	if levelName != "" {
		if level, err = logging.ParseLevel(levelName); err != nil {
			return err
		}
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.LogDir,
		Service: "sfcdiff",
		JSON:    a.logJSON || cfg.Logging.JSON,
		Output:  a.stderr,
	})
	slog.SetDefault(a.logger.Slog())

	if a.outputLevel != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(a.outputLevel))
	} else {
		ux.InitPersonality(a.stdout)
	}

	tcfg := telemetry.DefaultConfig()
	if a.traceExporter != "" {
		tcfg.TraceExporter = a.traceExporter
	}
	if a.metricsAddr != "" {
		tcfg.MetricExporter = "prometheus"
	}
	tcfg.TraceOutput = a.stderr
	a.shutdown, err = telemetry.Init(ctx, tcfg)
	if err != nil {
		return err
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	var err error
	if a.shutdown != nil {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if serr := a.shutdown(ctx); serr != nil {
			slog.Warn("Telemetry shutdown failed", slog.String("error", serr.Error()))
		}
	}
	if a.logger != nil {
		err = a.logger.Close()
	}
	return err
}
