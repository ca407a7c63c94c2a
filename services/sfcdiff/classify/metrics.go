// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package classify

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/compare"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/extract"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/script"
)

var tracer = otel.Tracer("sfcdiff.classify")

var (
	regionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfcdiff_region_decisions_total",
		Help: "Region classifications by region and action",
	}, []string{"region", "action"})

	classifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfcdiff_classify_failures_total",
		Help: "Aborted classifications by failure class",
	}, []string{"class"})

	classifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sfcdiff_classify_duration_seconds",
		Help:    "Duration of a full two-region classification",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
)

// failureClass buckets an error for the failures counter.
func failureClass(err error) string {
	switch {
	case errors.Is(err, extract.ErrPatternNotFound):
		return "pattern_not_found"
	case errors.Is(err, extract.ErrWrongNodeKind):
		return "wrong_node_kind"
	case errors.Is(err, compare.ErrUnsupportedExpression):
		return "unsupported_expression"
	case errors.Is(err, markup.ErrNoTemplate):
		return "no_template"
	case errors.Is(err, script.ErrSyntax):
		return "script_syntax"
	case errors.Is(err, script.ErrNoDeclaration), errors.Is(err, script.ErrNoInitializer),
		errors.Is(err, script.ErrNotArray), errors.Is(err, script.ErrSparseOrSpread),
		errors.Is(err, script.ErrNoProgram):
		return "script_shape"
	case errors.Is(err, ErrIncompleteStatus):
		return "incomplete_status"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

func recordFailure(span trace.Span, err error) {
	class := failureClass(err)
	classifyFailures.WithLabelValues(class).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, class)
}

func recordDecision(span trace.Span, region string, s Status) {
	regionDecisions.WithLabelValues(region, string(s.DiffAction)).Inc()
	span.SetAttributes(
		attribute.String("region", region),
		attribute.String("action", string(s.DiffAction)),
	)
}
