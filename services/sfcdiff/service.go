// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sfcdiff compares two revisions of a single-file component and
// classifies how a merge should treat each tracked region.
package sfcdiff

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/sfcdiff/pkg/logging"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/classify"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/config"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
)

var tracer = otel.Tracer("sfcdiff.service")

// Service reads, parses and classifies component revisions.
//
// Thread Safety:
//
//	Service is safe for concurrent use. It holds no per-run state.
type Service struct {
	config     *config.Config
	parser     *markup.Parser
	classifier *classify.Classifier
}

// NewService creates a Service from a loaded configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		config:     cfg,
		parser:     markup.NewParser(markup.WithMaxFileSize(cfg.Limits.MaxFileSize)),
		classifier: classify.NewClassifier(cfg),
	}
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.config
}

// CompareFiles classifies the regions of two revisions of a component file.
//
// Description:
//
//	Both files are read and parsed concurrently. A run ID is generated and
//	attached to every log line of the run.
//
// Inputs:
//
//	ctx     - Context for cancellation and tracing.
//	oldPath - The file before the change (the merge base side).
//	newPath - The file after the change.
//
// Outputs:
//
//	*classify.Report - Decisions for both tracked regions.
//	error            - ErrEmptyPath, ErrIsDirectory, read or parse errors,
//	                   or a classification failure.
//
// Example:
//
//	svc := sfcdiff.NewService(cfg)
//	report, err := svc.CompareFiles(ctx, "old/about-misskey.vue", "new/about-misskey.vue")
func (s *Service) CompareFiles(ctx context.Context, oldPath, newPath string) (*classify.Report, error) {
	runID := uuid.NewString()
	logger := slog.Default().With(slog.String("run_id", runID))

	ctx, span := tracer.Start(ctx, "Service.CompareFiles")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.String("old_path", oldPath),
		attribute.String("new_path", newPath),
	)
	ctx = logging.NewContext(ctx, logger)

	start := time.Now()
	logger.Info("Comparing revisions",
		slog.String("old", oldPath),
		slog.String("new", newPath))

	var oldRoot, newRoot *markup.Root
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		root, err := s.readDocument(gctx, oldPath)
		if err != nil {
			return fmt.Errorf("old revision: %w", err)
		}
		oldRoot = root
		return nil
	})
	g.Go(func() error {
		root, err := s.readDocument(gctx, newPath)
		if err != nil {
			return fmt.Errorf("new revision: %w", err)
		}
		newRoot = root
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		logger.Error("Reading revisions failed", slog.String("error", err.Error()))
		return nil, err
	}

	report, err := s.classifier.Classify(ctx, oldRoot, newRoot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")
		logger.Error("Classification failed", slog.String("error", err.Error()))
		return nil, err
	}

	for _, res := range report.Results() {
		logger.Info("Region decided",
			slog.String("region", res.Name),
			slog.String("action", string(res.Status.DiffAction)),
			slog.String("reason", res.Status.Reason))
	}
	logger.Debug("Comparison finished", slog.Duration("duration", time.Since(start)))
	return report, nil
}

// CompareSources classifies two in-memory revisions.
func (s *Service) CompareSources(ctx context.Context, oldSrc, newSrc []byte) (*classify.Report, error) {
	oldRoot, err := s.parser.Parse(ctx, oldSrc)
	if err != nil {
		return nil, fmt.Errorf("old revision: %w", err)
	}
	newRoot, err := s.parser.Parse(ctx, newSrc)
	if err != nil {
		return nil, fmt.Errorf("new revision: %w", err)
	}
	return s.classifier.Classify(ctx, oldRoot, newRoot)
}

func (s *Service) readDocument(ctx context.Context, path string) (*markup.Root, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if limit := s.config.Limits.MaxFileSize; limit > 0 && info.Size() > int64(limit) {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", markup.ErrFileTooLarge, path, info.Size(), limit)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	root, err := s.parser.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(root.Errors) > 0 {
		logging.FromContext(ctx).Debug("Markup parsed with recoverable errors",
			slog.String("path", path),
			slog.Int("errors", len(root.Errors)))
	}
	return root, nil
}
