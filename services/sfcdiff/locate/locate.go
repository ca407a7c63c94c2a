// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package locate finds regions of a markup tree by structural path.
//
// A path is a list of steps. Each step describes the next node to descend
// into (kind and tag) and how it must sit among its siblings. When any step
// does not hold, the region is absent; absence is an expected outcome and is
// never reported as an error.
package locate

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
)

// Shape is the sibling expectation for a path step.
type Shape int

const (
	// ShapeOnlyChild requires the parent to have exactly one child, which
	// must match the step.
	ShapeOnlyChild Shape = iota

	// ShapeFirstMatch takes the first child matching the step, in document
	// order. Other children are ignored.
	ShapeFirstMatch
)

func (s Shape) String() string {
	switch s {
	case ShapeOnlyChild:
		return "only-child"
	case ShapeFirstMatch:
		return "first-match"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "only-child":
		*s = ShapeOnlyChild
	case "first-match":
		*s = ShapeFirstMatch
	default:
		return fmt.Errorf("unknown path shape %q", string(text))
	}
	return nil
}

// PathStep matches one level of a path.
type PathStep struct {
	// Kind is the required node kind.
	Kind markup.NodeKind `yaml:"kind" json:"kind"`

	// Tag is the required element tag. Empty matches any tag.
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`

	Shape Shape `yaml:"shape" json:"shape"`
}

// Element is a step matching an only-child element with the given tag.
func Element(tag string) PathStep {
	return PathStep{Kind: markup.KindElement, Tag: tag, Shape: ShapeOnlyChild}
}

// FirstElement is a step matching the first child element with the given tag.
func FirstElement(tag string) PathStep {
	return PathStep{Kind: markup.KindElement, Tag: tag, Shape: ShapeFirstMatch}
}

// Matches reports whether n satisfies the step's kind and tag.
func (s PathStep) Matches(n markup.Node) bool {
	if n == nil || n.Kind() != s.Kind {
		return false
	}
	if s.Tag == "" {
		return true
	}
	el, ok := n.(*markup.Element)
	return ok && el.Tag == s.Tag
}

func (s PathStep) String() string {
	if s.Tag == "" {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Shape)
	}
	return fmt.Sprintf("%s<%s>(%s)", s.Kind, s.Tag, s.Shape)
}

// Locate walks pattern from root, descending one level per step.
//
// Description:
//
//	For each step the children of the current node are inspected. An
//	only-child step needs exactly one child and that child must match; a
//	first-match step takes the first matching child. The node reached by
//	the last step is returned. An empty pattern returns root.
//
// Outputs:
//
//	markup.Node - The located node, nil when absent.
//	bool        - False when any step does not hold.
//
// Thread Safety:
//
//	Locate does not mutate the tree and is safe for concurrent use.
func Locate(root markup.Node, pattern []PathStep) (markup.Node, bool) {
	if root == nil {
		return nil, false
	}

	current := root
	for _, step := range pattern {
		next, ok := step.descend(current)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// LocateElement is Locate for paths that end at an element.
func LocateElement(root markup.Node, pattern []PathStep) (*markup.Element, bool) {
	n, ok := Locate(root, pattern)
	if !ok {
		return nil, false
	}
	el, ok := n.(*markup.Element)
	return el, ok
}

func (s PathStep) descend(parent markup.Node) (markup.Node, bool) {
	children := parent.Children()
	switch s.Shape {
	case ShapeOnlyChild:
		if len(children) != 1 || !s.Matches(children[0]) {
			return nil, false
		}
		return children[0], true
	case ShapeFirstMatch:
		for _, c := range children {
			if s.Matches(c) {
				return c, true
			}
		}
	}
	return nil, false
}

// FormatPath renders a path for logs.
func FormatPath(pattern []PathStep) string {
	parts := make([]string, len(pattern))
	for i, s := range pattern {
		parts[i] = s.String()
	}
	return strings.Join(parts, " > ")
}
