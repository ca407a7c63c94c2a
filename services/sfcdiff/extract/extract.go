// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extract collects repeated-template iteration sources from a
// located markup region.
package extract

import "github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"

// Predicate selects elements during extraction.
type Predicate func(*markup.Element) bool

// Tag returns a Predicate matching elements with the given tag.
func Tag(tag string) Predicate {
	return func(el *markup.Element) bool {
		return el.Tag == tag
	}
}

// Item is one matched element and the iteration sources bound on it.
type Item struct {
	// Expressions holds the v-for source of each directive on the element,
	// in prop order. Directives without a source are skipped.
	Expressions []markup.Node

	// TiedElement is the matched element without its location.
	TiedElement *markup.Element
}

// ExtractAll collects every element below container that satisfies pred.
//
// Description:
//
//	Only elements are traversed; any other node ends its branch. For each
//	element, its matching children are emitted first in document order, and
//	then the traversal descends into each child in turn. The container
//	itself is never tested. The order is stable and callers may rely on it
//	to pair items positionally.
//
// Outputs:
//
//	[]Item - Matches in traversal order. Empty when nothing matches or the
//	         container has no children.
//
// Thread Safety:
//
//	ExtractAll does not mutate the tree. Returned TiedElements are detached
//	copies.
func ExtractAll(container markup.Node, pred Predicate) []Item {
	var items []Item
	walk(container, pred, &items)
	return items
}

func walk(n markup.Node, pred Predicate, items *[]Item) {
	el, ok := n.(*markup.Element)
	if !ok {
		return
	}
	for _, c := range el.Nodes {
		if child, ok := c.(*markup.Element); ok && pred(child) {
			*items = append(*items, Item{
				Expressions: iterationSources(child),
				TiedElement: markup.StripLoc(child),
			})
		}
	}
	for _, c := range el.Nodes {
		walk(c, pred, items)
	}
}

func iterationSources(el *markup.Element) []markup.Node {
	var out []markup.Node
	for _, d := range el.Directives() {
		if d.ForParseResult != nil && d.ForParseResult.Source != nil {
			out = append(out, d.ForParseResult.Source)
		}
	}
	return out
}

// HasDescendant reports whether any element below el has the given tag.
func HasDescendant(el *markup.Element, tag string) bool {
	for _, c := range el.ElementChildren() {
		if c.Tag == tag || HasDescendant(c, tag) {
			return true
		}
	}
	return false
}
