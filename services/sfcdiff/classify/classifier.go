// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classify decides, per tracked region, whether a merge should keep
// the old content, take the new content, or leave the region for review.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/sfcdiff/pkg/logging"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/compare"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/config"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/extract"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/locate"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/script"
)

// Option configures a Classifier.
type Option func(*Classifier)

// WithScriptParser sets the parser used for setup scripts.
func WithScriptParser(p *script.Parser) Option {
	return func(c *Classifier) {
		if p != nil {
			c.parser = p
		}
	}
}

// Classifier classifies the acknowledgements and roster regions of two
// revisions of a component.
//
// Description:
//
//	The acknowledgements region is compared as raw source text. The roster
//	region is resolved to the two script arrays its v-for loops iterate
//	and those arrays are compared element by element with the
//	conservative comparator.
//
//	Decisions per region:
//
//	  | old | new | different | action |
//	  |-----|-----|-----------|--------|
//	  | yes | yes | no        | keep   |
//	  | yes | yes | yes       | drop   |
//	  | no  | no  |           | left   |
//	  | one side only   |     | left   |
//
// Thread Safety:
//
//	Classifier holds no per-call state and is safe for concurrent use.
//
// Example:
//
//	c := classify.NewClassifier(cfg)
//	report, err := c.Classify(ctx, oldRoot, newRoot)
//	if err != nil {
//	    return fmt.Errorf("classify: %w", err)
//	}
//	fmt.Println(report.Roster.Status.DiffAction)
type Classifier struct {
	ackName     string
	ackPath     []locate.PathStep
	rosterName  string
	rosterPath  []locate.PathStep
	rosterShape extract.RosterShape
	parser      *script.Parser
}

// NewClassifier creates a Classifier for the regions described in cfg.
func NewClassifier(cfg *config.Config, opts ...Option) *Classifier {
	ack := cfg.Regions.Acknowledgements
	roster := cfg.Regions.Roster
	c := &Classifier{
		ackName:    ack.Name,
		ackPath:    ack.Path,
		rosterName: roster.Name,
		rosterPath: roster.Path,
		rosterShape: extract.RosterShape{
			SectionTag: roster.SectionTag,
			LabelSlot:  roster.LabelSlot,
			Caption:    roster.CaptionExpression,
			ItemTag:    roster.ItemTag,
			ImageTag:   roster.ImageTag,
		},
		parser: script.NewParser(script.WithMaxFileSize(cfg.Limits.MaxFileSize)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify classifies both regions of oldRoot against newRoot.
//
// Inputs:
//
//	ctx     - Context for cancellation and tracing.
//	oldRoot - Parsed old revision.
//	newRoot - Parsed new revision.
//
// Outputs:
//
//	*Report - Both regions with complete statuses. Never nil on success.
//	error   - markup.ErrNoTemplate when either document has no template,
//	          or a structural error from the roster extraction or the
//	          comparator. Absent regions are not errors.
func (c *Classifier) Classify(ctx context.Context, oldRoot, newRoot *markup.Root) (*Report, error) {
	ctx, span := tracer.Start(ctx, "classify.Classify")
	defer span.End()
	start := time.Now()
	defer func() {
		classifyDuration.Observe(time.Since(start).Seconds())
	}()

	report, err := c.classify(ctx, oldRoot, newRoot)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}
	return report, nil
}

func (c *Classifier) classify(ctx context.Context, oldRoot, newRoot *markup.Root) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	oldTmpl, err := markup.FindComponentTemplate(oldRoot)
	if err != nil {
		return nil, fmt.Errorf("old revision: %w", err)
	}
	newTmpl, err := markup.FindComponentTemplate(newRoot)
	if err != nil {
		return nil, fmt.Errorf("new revision: %w", err)
	}

	ack, err := c.classifyAcknowledgements(ctx, oldTmpl, newTmpl)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", c.ackName, err)
	}
	roster, err := c.classifyRoster(ctx, oldRoot, newRoot, oldTmpl, newTmpl)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", c.rosterName, err)
	}

	report := &Report{
		Acknowledgements: RegionResult{Name: c.ackName, Status: ack},
		Roster:           RegionResult{Name: c.rosterName, Status: roster},
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return report, nil
}

func (c *Classifier) classifyAcknowledgements(ctx context.Context, oldTmpl, newTmpl *markup.Element) (Status, error) {
	_, span := tracer.Start(ctx, "classify.Acknowledgements")
	defer span.End()

	older, oldOK := locate.LocateElement(oldTmpl, c.ackPath)
	newer, newOK := locate.LocateElement(newTmpl, c.ackPath)
	span.SetAttributes(attribute.Bool("old_present", oldOK), attribute.Bool("new_present", newOK))

	status, err := decide(oldOK, newOK, func() (bool, error) {
		return compare.DefinitelyDifferentContent(older, newer), nil
	}, acknowledgementsReasons)
	if err != nil {
		return Status{}, err
	}

	if status.DiffAction == ActionDrop {
		d, err := compare.DiffContent(older, newer, "a/"+c.ackName, "b/"+c.ackName)
		if err != nil {
			logging.FromContext(ctx).Warn("Could not build acknowledgements diff", slog.String("error", err.Error()))
		}
		status.Diff = d
	}

	recordDecision(span, c.ackName, status)
	logging.FromContext(ctx).Debug("Region classified",
		slog.String("region", c.ackName),
		slog.String("path", locate.FormatPath(c.ackPath)),
		slog.String("action", string(status.DiffAction)),
		slog.String("reason", status.Reason))
	return status, nil
}

func (c *Classifier) classifyRoster(ctx context.Context, oldRoot, newRoot *markup.Root, oldTmpl, newTmpl *markup.Element) (Status, error) {
	ctx, span := tracer.Start(ctx, "classify.Roster")
	defer span.End()

	older, oldOK, err := c.extractRoster(ctx, oldRoot, oldTmpl)
	if err != nil {
		return Status{}, fmt.Errorf("old revision: %w", err)
	}
	newer, newOK, err := c.extractRoster(ctx, newRoot, newTmpl)
	if err != nil {
		return Status{}, fmt.Errorf("new revision: %w", err)
	}
	span.SetAttributes(attribute.Bool("old_present", oldOK), attribute.Bool("new_present", newOK))

	status, err := decide(oldOK, newOK, func() (bool, error) {
		return rosterDifferent(older, newer)
	}, rosterReasons)
	if err != nil {
		return Status{}, err
	}

	recordDecision(span, c.rosterName, status)
	logging.FromContext(ctx).Debug("Region classified",
		slog.String("region", c.rosterName),
		slog.String("action", string(status.DiffAction)),
		slog.String("reason", status.Reason))
	return status, nil
}
