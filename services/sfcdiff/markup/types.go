// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package markup parses component templates into a typed syntax tree.
//
// The tree mirrors the shape produced by Vue's template compiler closely
// enough for structural lookups: a Root holds Elements, Elements hold
// props (Attributes and Directives) and children (Elements, Text,
// Interpolations and Comments). Every node records the byte span it was
// parsed from. Comments are kept, as the compiler does in development builds.
//
// Design principles:
//   - Nodes are read-only after Parse returns. Callers that need a node
//     without location identity use StripLoc, which copies.
//   - A node's Loc always contains the Loc of each descendant.
package markup

import (
	"fmt"
	"strings"
)

// NodeKind identifies the variant of a Node.
type NodeKind int

const (
	// KindRoot is the document node returned by Parse.
	KindRoot NodeKind = iota

	// KindElement is a tag with props and children.
	KindElement

	// KindText is literal text between tags.
	KindText

	// KindInterpolation is a `{{ expr }}` mustache.
	KindInterpolation

	// KindDirective is a `v-*`, `:*`, `@*` or `#*` prop.
	KindDirective

	// KindAttribute is a plain prop.
	KindAttribute

	// KindSimpleExpression is an unparsed expression string.
	KindSimpleExpression

	// KindComment is an `<!-- ... -->` comment.
	KindComment
)

var nodeKindNames = map[NodeKind]string{
	KindRoot:             "root",
	KindElement:          "element",
	KindText:             "text",
	KindInterpolation:    "interpolation",
	KindDirective:        "directive",
	KindAttribute:        "attribute",
	KindSimpleExpression: "simple_expression",
	KindComment:          "comment",
}

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ParseNodeKind converts a name produced by String back to a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for k, name := range nodeKindNames {
		if name == needle {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so kinds can be
// written by name in configuration files.
func (k *NodeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ElementType refines KindElement the way the template compiler does.
type ElementType int

const (
	// ElementTypeElement is a plain HTML element.
	ElementTypeElement ElementType = iota

	// ElementTypeComponent is a component reference (uppercase or hyphenated tag).
	ElementTypeComponent

	// ElementTypeSlot is a <slot> outlet.
	ElementTypeSlot

	// ElementTypeTemplate is a <template> carrying a structural directive
	// (v-if, v-else, v-else-if, v-for or v-slot).
	ElementTypeTemplate
)

// Loc is the source span a node was parsed from.
//
// Start and End are byte offsets into the parsed content; Source is the
// exact text between them.
type Loc struct {
	Start  int
	End    int
	Source string
}

// IsZero reports whether the span has been stripped or never set.
func (l Loc) IsZero() bool {
	return l == Loc{}
}

// Contains reports whether other lies within l.
func (l Loc) Contains(other Loc) bool {
	return l.Start <= other.Start && other.End <= l.End
}

// Node is implemented by every markup syntax node.
//
// The interface is sealed; use a type switch on the concrete pointer types
// or switch on Kind.
type Node interface {
	// Kind returns the variant tag.
	Kind() NodeKind

	// Span returns the node's source location.
	Span() Loc

	// Children returns the ordered child nodes. Props are not children.
	Children() []Node

	node()
}

// Root is the top of a parsed document.
type Root struct {
	Nodes []Node
	Loc   Loc

	// Errors lists regions the grammar could not parse. They are kept in
	// the tree as text.
	Errors []string
}

// Element is a tag with its props and children.
type Element struct {
	Tag     string
	TagType ElementType

	// Props holds *Attribute and *Directive values in source order.
	// Duplicates are kept.
	Props []Node

	Nodes []Node
	Loc   Loc
}

// Text is literal text. Content is whitespace-condensed.
type Text struct {
	Content string
	Loc     Loc
}

// Comment is an HTML comment. Content excludes the delimiters.
//
// Comments are children like any other node, so a comment next to an
// element defeats an only-child match.
type Comment struct {
	Content string
	Loc     Loc
}

// Interpolation is a `{{ ... }}` mustache.
type Interpolation struct {
	Content *SimpleExpression
	Loc     Loc
}

// Attribute is a static prop such as class="x".
type Attribute struct {
	Name string

	// Value is nil for valueless attributes like `disabled`.
	Value *Text
	Loc   Loc
}

// Directive is a bound prop such as v-for="a in b" or :src="x".
type Directive struct {
	// Name is the normalized directive name: "for", "bind", "on", "slot", ...
	Name string

	// RawName is the attribute name as written, e.g. "#label" or "v-for".
	RawName string

	// Arg is the directive argument (`label` in `#label`), nil if absent.
	Arg *SimpleExpression

	// Exp is the bound expression, nil if the directive has no value.
	Exp *SimpleExpression

	Modifiers []string

	// ForParseResult is set for well-formed v-for directives only.
	ForParseResult *ForParseResult
	Loc            Loc
}

// ForParseResult is the destructured form of `value, key, index in source`.
type ForParseResult struct {
	// Source is the iterated expression. Never nil.
	Source Node

	Value *SimpleExpression
	Key   *SimpleExpression
	Index *SimpleExpression
}

// SimpleExpression is an expression kept as its source text.
type SimpleExpression struct {
	Content  string
	IsStatic bool
	Loc      Loc
}

func (*Root) Kind() NodeKind             { return KindRoot }
func (*Element) Kind() NodeKind          { return KindElement }
func (*Text) Kind() NodeKind             { return KindText }
func (*Interpolation) Kind() NodeKind    { return KindInterpolation }
func (*Attribute) Kind() NodeKind        { return KindAttribute }
func (*Directive) Kind() NodeKind        { return KindDirective }
func (*SimpleExpression) Kind() NodeKind { return KindSimpleExpression }
func (*Comment) Kind() NodeKind          { return KindComment }

func (n *Root) Span() Loc             { return n.Loc }
func (n *Element) Span() Loc          { return n.Loc }
func (n *Text) Span() Loc             { return n.Loc }
func (n *Interpolation) Span() Loc    { return n.Loc }
func (n *Attribute) Span() Loc        { return n.Loc }
func (n *Directive) Span() Loc        { return n.Loc }
func (n *SimpleExpression) Span() Loc { return n.Loc }
func (n *Comment) Span() Loc          { return n.Loc }

func (n *Root) Children() []Node    { return n.Nodes }
func (n *Element) Children() []Node { return n.Nodes }
func (*Text) Children() []Node      { return nil }
func (*Attribute) Children() []Node { return nil }
func (*Directive) Children() []Node { return nil }

func (n *Interpolation) Children() []Node {
	if n.Content == nil {
		return nil
	}
	return []Node{n.Content}
}

func (*SimpleExpression) Children() []Node { return nil }
func (*Comment) Children() []Node          { return nil }

func (*Root) node()             {}
func (*Element) node()          {}
func (*Text) node()             {}
func (*Interpolation) node()    {}
func (*Attribute) node()        {}
func (*Directive) node()        {}
func (*SimpleExpression) node() {}
func (*Comment) node()          {}

// Directives returns the element's directive props in source order.
func (n *Element) Directives() []*Directive {
	var out []*Directive
	for _, p := range n.Props {
		if d, ok := p.(*Directive); ok {
			out = append(out, d)
		}
	}
	return out
}

// Attr returns the value of the first static attribute called name.
func (n *Element) Attr(name string) (string, bool) {
	for _, p := range n.Props {
		a, ok := p.(*Attribute)
		if !ok || a.Name != name {
			continue
		}
		if a.Value == nil {
			return "", true
		}
		return a.Value.Content, true
	}
	return "", false
}

// ElementChildren returns only the *Element children, in order.
func (n *Element) ElementChildren() []*Element {
	return elementsOf(n.Nodes)
}

// ElementChildren returns only the *Element children of the root, in order.
func (n *Root) ElementChildren() []*Element {
	return elementsOf(n.Nodes)
}

func elementsOf(nodes []Node) []*Element {
	var out []*Element
	for _, c := range nodes {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// StripLoc returns a copy of el without its location span.
//
// The copy is shallow: props and children are shared with el and must be
// treated as read-only. el itself is not modified.
func StripLoc(el *Element) *Element {
	if el == nil {
		return nil
	}
	cp := *el
	cp.Loc = Loc{}
	cp.Props = append([]Node(nil), el.Props...)
	cp.Nodes = append([]Node(nil), el.Nodes...)
	return &cp
}
