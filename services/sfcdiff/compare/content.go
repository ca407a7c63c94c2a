// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compare

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
)

// DefinitelyDifferentContent reports whether two markup regions differ in
// their original source text. No structural comparison is made.
func DefinitelyDifferentContent(left, right *markup.Element) bool {
	return left.Loc.Source != right.Loc.Source
}

// ContentDiff is a line diff between two revisions of a region.
type ContentDiff struct {
	// Unified is the diff in unified format with three lines of context.
	Unified string `json:"unified"`

	Added   int `json:"added"`
	Changed int `json:"changed"`
	Deleted int `json:"deleted"`
}

// DiffContent builds a unified diff from left's source to right's source.
// It returns nil when the sources are identical.
func DiffContent(left, right *markup.Element, fromName, toName string) (*ContentDiff, error) {
	if !DefinitelyDifferentContent(left, right) {
		return nil, nil
	}

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(left.Loc.Source),
		B:        difflib.SplitLines(right.Loc.Source),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
	if err != nil {
		return nil, fmt.Errorf("building unified diff: %w", err)
	}
	if unified == "" {
		return nil, nil
	}

	fd, err := diff.ParseFileDiff([]byte(unified))
	if err != nil {
		return nil, fmt.Errorf("parsing unified diff: %w", err)
	}
	stat := fd.Stat()
	return &ContentDiff{
		Unified: unified,
		Added:   int(stat.Added),
		Changed: int(stat.Changed),
		Deleted: int(stat.Deleted),
	}, nil
}
