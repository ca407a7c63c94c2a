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
	"errors"
	"fmt"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/compare"
)

// ErrIncompleteStatus is returned when a status without a decided action
// or reason would be handed to a caller.
var ErrIncompleteStatus = errors.New("status has not been computed")

// Action is the merge decision for a region. The zero value means the
// decision has not been made and is never valid in a Report.
type Action string

const (
	// ActionKeep keeps the old region; the new one differs only in ways the
	// comparator cannot see.
	ActionKeep Action = "keep"

	// ActionDrop discards the old region in favour of the new one.
	ActionDrop Action = "drop"

	// ActionLeft leaves the region for manual review.
	ActionLeft Action = "left"
)

// Valid reports whether a is one of the three decided actions.
func (a Action) Valid() bool {
	switch a {
	case ActionKeep, ActionDrop, ActionLeft:
		return true
	}
	return false
}

// Status is the classification of one region.
type Status struct {
	DiffAction Action `json:"diffAction"`
	Reason     string `json:"reason"`

	// Diff is set for dropped regions compared as raw text.
	Diff *compare.ContentDiff `json:"diff,omitempty"`
}

// Validate returns ErrIncompleteStatus unless the status has a decided
// action and a non-empty reason.
func (s Status) Validate() error {
	if !s.DiffAction.Valid() {
		return fmt.Errorf("%w: action %q", ErrIncompleteStatus, s.DiffAction)
	}
	if s.Reason == "" {
		return fmt.Errorf("%w: empty reason for %s", ErrIncompleteStatus, s.DiffAction)
	}
	return nil
}

const (
	reasonSame     = "inner contents are same"
	reasonDiverged = "could not compute difference: left container status and right container status are different. Is the branch diverged?"
)

// reasons holds the region-specific wording of a decision.
type reasons struct {
	// changed explains a drop.
	changed string

	// absent explains a region missing from both revisions.
	absent string
}

var (
	acknowledgementsReasons = reasons{
		changed: "special thanks update",
		absent:  "both container do not contain special thanks section",
	}
	rosterReasons = reasons{
		changed: "patreon update",
		absent:  "both container do not contain patreon section",
	}
)

// decide maps region presence and the comparator's answer to a Status.
//
// different is only called when the region exists in both revisions. Its
// error aborts the decision. Every returned Status without an error is
// complete.
func decide(oldPresent, newPresent bool, different func() (bool, error), r reasons) (Status, error) {
	switch {
	case oldPresent && newPresent:
		diff, err := different()
		if err != nil {
			return Status{}, err
		}
		if diff {
			return Status{DiffAction: ActionDrop, Reason: r.changed}, nil
		}
		return Status{DiffAction: ActionKeep, Reason: reasonSame}, nil
	case !oldPresent && !newPresent:
		return Status{DiffAction: ActionLeft, Reason: r.absent}, nil
	default:
		return Status{DiffAction: ActionLeft, Reason: reasonDiverged}, nil
	}
}
