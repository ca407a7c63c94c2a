// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"fmt"
	"regexp"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
)

var identifierRE = regexp.MustCompile(`^[\p{L}\p{Nl}$_][\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}$_\x{200C}\x{200D}]*$`)

// RosterShape describes how a contributor roster is laid out in markup.
type RosterShape struct {
	// SectionTag is the tag of the sections to search, e.g. "FormSection".
	SectionTag string

	// LabelSlot is the raw name of the slot directive on the section's
	// label template, e.g. "#label".
	LabelSlot string

	// Caption is the interpolation expression inside the label template
	// that identifies the roster section.
	Caption string

	// ItemTag is the tag of elements carrying the iteration directives.
	ItemTag string

	// ImageTag marks an item as an image-bearing contributor.
	ImageTag string
}

// Partition splits roster items into image-bearing and name-only groups.
type Partition struct {
	WithImage []Item
	NameOnly  []Item
}

// PartitionByImage assigns each item to WithImage when its tied element has
// a descendant with imageTag, and to NameOnly otherwise. Order is kept.
func PartitionByImage(items []Item, imageTag string) Partition {
	var p Partition
	for _, it := range items {
		if it.TiedElement != nil && HasDescendant(it.TiedElement, imageTag) {
			p.WithImage = append(p.WithImage, it)
		} else {
			p.NameOnly = append(p.NameOnly, it)
		}
	}
	return p
}

// RosterIdentifiers names the script bindings iterated by the roster.
type RosterIdentifiers struct {
	WithImage string
	NameOnly  string
}

// Identifiers returns the representative iteration source of each group.
//
// The first item of a group supplies its first expression. An empty group
// fails with ErrPatternNotFound; a source that is not a plain identifier
// fails with ErrWrongNodeKind.
func (p Partition) Identifiers() (RosterIdentifiers, error) {
	withImage, err := representative("withImage", p.WithImage)
	if err != nil {
		return RosterIdentifiers{}, err
	}
	nameOnly, err := representative("onlyName", p.NameOnly)
	if err != nil {
		return RosterIdentifiers{}, err
	}
	return RosterIdentifiers{WithImage: withImage, NameOnly: nameOnly}, nil
}

func representative(group string, items []Item) (string, error) {
	if len(items) == 0 || len(items[0].Expressions) == 0 {
		return "", fmt.Errorf("%w: %s group is empty", ErrPatternNotFound, group)
	}
	expr, ok := items[0].Expressions[0].(*markup.SimpleExpression)
	if !ok {
		return "", fmt.Errorf("%w: %s: not a simple expression (%s)", ErrWrongNodeKind, group, items[0].Expressions[0].Kind())
	}
	if !identifierRE.MatchString(expr.Content) {
		return "", fmt.Errorf("%w: %s: %q is not an identifier", ErrWrongNodeKind, group, expr.Content)
	}
	return expr.Content, nil
}

// FindLabelledSection returns the single section under body whose label
// slot template shows the caption interpolation.
//
// Description:
//
//	Only direct element children of body with shape.SectionTag are
//	considered. A section matches when one of its <template> children
//	carries the shape.LabelSlot directive and has an interpolation child
//	whose expression equals shape.Caption.
//
// Outputs:
//
//	*markup.Element - The matching section.
//	error - ErrPatternNotFound when there are no sections, or when zero or
//	        several sections match.
func FindLabelledSection(body *markup.Element, shape RosterShape) (*markup.Element, error) {
	var sections []*markup.Element
	for _, c := range body.ElementChildren() {
		if c.Tag == shape.SectionTag {
			sections = append(sections, c)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: %s could not be found", ErrPatternNotFound, shape.SectionTag)
	}

	var matches []*markup.Element
	for _, s := range sections {
		if hasCaptionedLabel(s, shape) {
			matches = append(matches, s)
		}
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("%w: suitable template element could not be found (%d candidates)",
			ErrPatternNotFound, len(matches))
	}
	return matches[0], nil
}

func hasCaptionedLabel(section *markup.Element, shape RosterShape) bool {
	for _, tmpl := range section.ElementChildren() {
		if tmpl.TagType != markup.ElementTypeTemplate || !hasDirective(tmpl, shape.LabelSlot) {
			continue
		}
		for _, c := range tmpl.Nodes {
			interp, ok := c.(*markup.Interpolation)
			if ok && interp.Content != nil && interp.Content.Content == shape.Caption {
				return true
			}
		}
	}
	return false
}

func hasDirective(el *markup.Element, rawName string) bool {
	for _, d := range el.Directives() {
		if d.RawName == rawName {
			return true
		}
	}
	return false
}

// ExtractRosterIdentifiers finds the roster section under body and returns
// the identifiers its two contributor lists iterate over.
func ExtractRosterIdentifiers(body *markup.Element, shape RosterShape) (RosterIdentifiers, error) {
	section, err := FindLabelledSection(body, shape)
	if err != nil {
		return RosterIdentifiers{}, err
	}

	var items []Item
	for _, it := range ExtractAll(section, Tag(shape.ItemTag)) {
		if len(it.Expressions) > 0 {
			items = append(items, it)
		}
	}
	return PartitionByImage(items, shape.ImageTag).Identifiers()
}
