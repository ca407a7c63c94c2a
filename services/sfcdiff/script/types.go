// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package script parses the script block of a single-file component and
// exposes the subset of its expression tree that the region comparator
// understands.
//
// Node kinds are named after the ESTree/Babel vocabulary (ArrayExpression,
// ObjectProperty, StringLiteral, ...). Anything outside the handled subset is
// kept as an opaque node that records only its kind and source span.
package script

import "fmt"

// Kind identifies an expression node variant.
type Kind int

const (
	KindOther Kind = iota
	KindArrayExpression
	KindObjectExpression
	KindObjectProperty
	KindObjectMethod
	KindSpreadElement
	KindStringLiteral
	KindTemplateLiteral
	KindNumericLiteral
	KindBooleanLiteral
	KindNullLiteral
	KindIdentifier
	KindArrayPattern
	KindAssignmentPattern
	KindObjectPattern
	KindRestElement
	KindRegExpLiteral
	KindBigIntLiteral
	KindThisExpression
	KindSuper
	KindMemberExpression
	KindOptionalMemberExpression
	KindCallExpression
	KindOptionalCallExpression
	KindNewExpression
	KindTaggedTemplateExpression
	KindUnaryExpression
	KindUpdateExpression
	KindBinaryExpression
	KindLogicalExpression
	KindConditionalExpression
	KindAssignmentExpression
	KindSequenceExpression
	KindArrowFunctionExpression
	KindFunctionExpression
	KindClassExpression
	KindAwaitExpression
	KindYieldExpression
	KindMetaProperty
	KindJSXElement

	// KindHole is an elided array slot, as in `[a, , b]`.
	KindHole
)

var kindNames = [...]string{
	KindOther:             "Other",
	KindArrayExpression:   "ArrayExpression",
	KindObjectExpression:  "ObjectExpression",
	KindObjectProperty:    "ObjectProperty",
	KindObjectMethod:      "ObjectMethod",
	KindSpreadElement:     "SpreadElement",
	KindStringLiteral:     "StringLiteral",
	KindTemplateLiteral:   "TemplateLiteral",
	KindNumericLiteral:    "NumericLiteral",
	KindBooleanLiteral:    "BooleanLiteral",
	KindNullLiteral:       "NullLiteral",
	KindIdentifier:        "Identifier",
	KindArrayPattern:      "ArrayPattern",
	KindAssignmentPattern: "AssignmentPattern",
	KindObjectPattern:     "ObjectPattern",
	KindRestElement:       "RestElement",

	KindRegExpLiteral:            "RegExpLiteral",
	KindBigIntLiteral:            "BigIntLiteral",
	KindThisExpression:           "ThisExpression",
	KindSuper:                    "Super",
	KindMemberExpression:         "MemberExpression",
	KindOptionalMemberExpression: "OptionalMemberExpression",
	KindCallExpression:           "CallExpression",
	KindOptionalCallExpression:   "OptionalCallExpression",
	KindNewExpression:            "NewExpression",
	KindTaggedTemplateExpression: "TaggedTemplateExpression",
	KindUnaryExpression:          "UnaryExpression",
	KindUpdateExpression:         "UpdateExpression",
	KindBinaryExpression:         "BinaryExpression",
	KindLogicalExpression:        "LogicalExpression",
	KindConditionalExpression:    "ConditionalExpression",
	KindAssignmentExpression:     "AssignmentExpression",
	KindSequenceExpression:       "SequenceExpression",
	KindArrowFunctionExpression:  "ArrowFunctionExpression",
	KindFunctionExpression:       "FunctionExpression",
	KindClassExpression:          "ClassExpression",
	KindAwaitExpression:          "AwaitExpression",
	KindYieldExpression:          "YieldExpression",
	KindMetaProperty:             "MetaProperty",
	KindJSXElement:               "JSXElement",

	KindHole: "Hole",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsPatternRelated reports whether the kind only arises from destructuring
// syntax. Such values are never compared as plain values.
func (k Kind) IsPatternRelated() bool {
	switch k {
	case KindArrayPattern, KindAssignmentPattern, KindObjectPattern, KindRestElement:
		return true
	}
	return false
}

// Span is a byte range in the script source.
type Span struct {
	Start  int
	End    int
	Source string
}

// Node is an expression tree node.
type Node interface {
	Kind() Kind
	Loc() Span
}

// ArrayExpression is an array literal.
type ArrayExpression struct {
	// Elements holds one entry per slot. Elided slots are *Opaque nodes of
	// KindHole and spreads are *Opaque nodes of KindSpreadElement.
	Elements []Node
	Span     Span
}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	// Properties holds *ObjectProperty values and opaque spread or method
	// members in source order.
	Properties []Node
	Span       Span
}

// ObjectProperty is a `key: value` member or a shorthand `key` member.
type ObjectProperty struct {
	Key       Node
	Value     Node
	Shorthand bool
	Computed  bool
	Span      Span
}

// StringLiteral is a quoted string with escapes decoded.
type StringLiteral struct {
	Value string
	Span  Span
}

// Opaque is any node outside the structured subset. Type is the grammar node
// type; it separates KindOther nodes that have no named kind of their own.
type Opaque struct {
	NodeKind Kind
	Type     string
	Span     Span
}

func (n *ArrayExpression) Kind() Kind  { return KindArrayExpression }
func (n *ObjectExpression) Kind() Kind { return KindObjectExpression }
func (n *ObjectProperty) Kind() Kind   { return KindObjectProperty }
func (n *StringLiteral) Kind() Kind    { return KindStringLiteral }
func (n *Opaque) Kind() Kind           { return n.NodeKind }

func (n *ArrayExpression) Loc() Span  { return n.Span }
func (n *ObjectExpression) Loc() Span { return n.Span }
func (n *ObjectProperty) Loc() Span   { return n.Span }
func (n *StringLiteral) Loc() Span    { return n.Span }
func (n *Opaque) Loc() Span           { return n.Span }

// IsDirectlyInitialized reports whether p is an ObjectProperty whose value
// is a plain expression rather than a destructuring pattern.
func IsDirectlyInitialized(p Node) bool {
	prop, ok := p.(*ObjectProperty)
	if !ok || prop.Value == nil {
		return false
	}
	return !prop.Value.Kind().IsPatternRelated()
}

// Program is the top level of a parsed script.
type Program struct {
	// Declarations lists top-level var/let/const statements in source
	// order. Exported declarations are not included.
	Declarations []*VariableDeclaration
	Span         Span
}

// VariableDeclaration is one `var`, `let` or `const` statement.
type VariableDeclaration struct {
	// DeclKind is "var", "let" or "const".
	DeclKind    string
	Declarators []*Declarator
	Span        Span
}

// Declarator binds a name to an optional initializer.
type Declarator struct {
	// Name is empty for destructuring declarators.
	Name string

	// Init is nil when the declarator has no initializer.
	Init Node
	Span Span
}
