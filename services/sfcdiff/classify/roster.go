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
	"fmt"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/compare"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/extract"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/locate"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/script"
)

// rosterData is the pair of contributor arrays backing a roster region.
type rosterData struct {
	withImage *script.ArrayInitializer
	nameOnly  *script.ArrayInitializer
}

// extractRoster resolves the roster region of one revision.
//
// The region is absent when the locator path does not hold or when the
// document has no single setup script. Once the section is found, any
// shape violation is an error.
func (c *Classifier) extractRoster(ctx context.Context, root *markup.Root, tmpl *markup.Element) (*rosterData, bool, error) {
	body, ok := locate.LocateElement(tmpl, c.rosterPath)
	if !ok {
		return nil, false, nil
	}

	ids, err := extract.ExtractRosterIdentifiers(body, c.rosterShape)
	if err != nil {
		return nil, false, err
	}

	scriptEl, src, ok := script.FindSetupScript(root)
	if !ok {
		return nil, false, nil
	}

	prog, err := c.parser.Parse(ctx, []byte(src), script.LanguageOf(scriptEl))
	if err != nil {
		return nil, false, fmt.Errorf("parsing setup script: %w", err)
	}

	withImage, err := script.ExtractArrayInitializer(prog, ids.WithImage)
	if err != nil {
		return nil, false, err
	}
	nameOnly, err := script.ExtractArrayInitializer(prog, ids.NameOnly)
	if err != nil {
		return nil, false, err
	}
	return &rosterData{withImage: withImage, nameOnly: nameOnly}, true, nil
}

// rosterDifferent compares both contributor lists. The name-only list is
// not compared once the image list differs.
func rosterDifferent(older, newer *rosterData) (bool, error) {
	diff, err := compare.DefinitelyDifferentSequence(older.withImage.Elements, newer.withImage.Elements)
	if err != nil {
		return false, fmt.Errorf("image contributors: %w", err)
	}
	if diff {
		return true, nil
	}
	diff, err = compare.DefinitelyDifferentSequence(older.nameOnly.Elements, newer.nameOnly.Elements)
	if err != nil {
		return false, fmt.Errorf("name-only contributors: %w", err)
	}
	return diff, nil
}
