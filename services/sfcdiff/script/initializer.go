// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package script

import (
	"fmt"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
)

// ArrayInitializer is the array literal bound to a top-level declaration.
type ArrayInitializer struct {
	// Node is the literal itself.
	Node *ArrayExpression

	// Elements are the literal's elements. None is a hole or a spread.
	Elements []Node
}

// ExtractArrayInitializer finds the top-level declarator named name and
// returns its array initializer.
//
// Description:
//
//	Declarators are searched in source order. The first one bound to name
//	that has an initializer wins; a bare `let name;` is skipped. The
//	initializer must be an array literal without elided slots or spread
//	elements.
//
// Outputs:
//
//	*ArrayInitializer - Never nil on success.
//	error - ErrNoDeclaration, ErrNoInitializer, ErrNotArray or
//	        ErrSparseOrSpread, wrapped with the identifier.
func ExtractArrayInitializer(prog *Program, name string) (*ArrayInitializer, error) {
	if prog == nil {
		return nil, ErrNoProgram
	}

	var found *Declarator
	declared := false
	for _, decl := range prog.Declarations {
		for _, d := range decl.Declarators {
			if d.Name != name {
				continue
			}
			declared = true
			if d.Init != nil {
				found = d
				break
			}
		}
		if found != nil {
			break
		}
	}

	switch {
	case !declared:
		return nil, fmt.Errorf("%q: %w", name, ErrNoDeclaration)
	case found == nil:
		return nil, fmt.Errorf("%q: %w", name, ErrNoInitializer)
	}

	arr, ok := found.Init.(*ArrayExpression)
	if !ok {
		return nil, fmt.Errorf("%q is %s: %w", name, found.Init.Kind(), ErrNotArray)
	}
	for i, el := range arr.Elements {
		if k := el.Kind(); k == KindHole || k == KindSpreadElement {
			return nil, fmt.Errorf("%q element %d is %s: %w", name, i, k, ErrSparseOrSpread)
		}
	}

	return &ArrayInitializer{Node: arr, Elements: arr.Elements}, nil
}

// FindSetupScript returns the component's <script> element and its source.
//
// The document must have exactly one top-level <script> element holding a
// single text child; anything else reports false.
func FindSetupScript(root *markup.Root) (*markup.Element, string, bool) {
	if root == nil {
		return nil, "", false
	}
	var scripts []*markup.Element
	for _, el := range root.ElementChildren() {
		if el.Tag == "script" {
			scripts = append(scripts, el)
		}
	}
	if len(scripts) != 1 {
		return nil, "", false
	}

	el := scripts[0]
	if len(el.Nodes) != 1 {
		return nil, "", false
	}
	text, ok := el.Nodes[0].(*markup.Text)
	if !ok {
		return nil, "", false
	}
	return el, text.Content, true
}
