// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package markup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"

	"github.com/AleutianAI/sfcdiff/pkg/logging"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/telemetry"
)

// DefaultMaxFileSize is the default content size limit (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxFileSize sets the maximum content size accepted by Parse.
// Non-positive values are ignored.
func WithMaxFileSize(bytes int) ParserOption {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// Parser turns component source into a markup syntax tree.
//
// Description:
//
//	Parser runs the tree-sitter HTML grammar over the whole component file
//	and lowers the result into Root/Element/Text/Interpolation nodes with
//	template-compiler semantics: directive props are recognized, mustache
//	interpolations are split out of text, and insignificant whitespace is
//	condensed away so that child counts reflect the visible structure.
//
// Thread Safety:
//
//	Parser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance.
//
// Example:
//
//	p := markup.NewParser()
//	root, err := p.Parse(ctx, content)
//	if err != nil {
//	    return fmt.Errorf("parse: %w", err)
//	}
//	tmpl, err := markup.FindComponentTemplate(root)
type Parser struct {
	maxFileSize int
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a component file.
//
// Description:
//
//	The grammar is error tolerant: unparseable regions are kept as text and
//	reported in Root.Errors instead of failing the parse.
//
// Inputs:
//
//	ctx     - Context for cancellation. Checked before and after tree-sitter.
//	content - Raw source bytes. Must be valid UTF-8.
//
// Outputs:
//
//	*Root - The lowered document. Never nil on success.
//	error - ErrFileTooLarge, ErrInvalidContent, or a context error.
func (p *Parser) Parse(ctx context.Context, content []byte) (root *Root, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("markup parse canceled before start: %w", err)
	}

	ctx, span := telemetry.StartParseSpan(ctx, "markup", len(content))
	defer span.End()
	start := time.Now()
	defer func() {
		count := 0
		if root != nil {
			count = countNodes(root)
			telemetry.SetParseSpanResult(span, count, len(root.Errors))
		}
		telemetry.RecordParse(ctx, "markup", time.Since(start), count, err == nil)
	}()

	if len(content) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(html.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("markup parse canceled after tree-sitter: %w", err)
	}

	l := &lowerer{src: content}
	doc := tree.RootNode()
	root = &Root{
		Nodes: l.children(doc, 0, len(content)),
		Loc:   l.loc(0, len(content)),
	}
	root.Errors = l.errors

	if len(root.Errors) > 0 {
		logging.FromContext(ctx).Warn("markup contains unparseable regions",
			slog.Int("error_count", len(root.Errors)))
	}
	return root, nil
}

// FindComponentTemplate returns the first element at the top of the document.
//
// In a single-file component this is the <template> block.
func FindComponentTemplate(root *Root) (*Element, error) {
	if root == nil {
		return nil, ErrNoTemplate
	}
	elements := root.ElementChildren()
	if len(elements) == 0 {
		return nil, ErrNoTemplate
	}
	return elements[0], nil
}

// lowerer converts tree-sitter HTML nodes into markup nodes.
type lowerer struct {
	src    []byte
	errors []string
}

// pending is a child slot awaiting whitespace condensation. A nil node
// marks where a doctype was.
type pending struct {
	node Node
}

func (l *lowerer) text(n *sitter.Node) string {
	return string(l.src[n.StartByte():n.EndByte()])
}

func (l *lowerer) loc(start, end int) Loc {
	return Loc{Start: start, End: end, Source: string(l.src[start:end])}
}

func (l *lowerer) nodeLoc(n *sitter.Node) Loc {
	return l.loc(int(n.StartByte()), int(n.EndByte()))
}

// children lowers the content of parent between byte offsets from and to.
func (l *lowerer) children(parent *sitter.Node, from, to int) []Node {
	var slots []pending
	cursor := from

	flush := func(end int) {
		if end > cursor {
			for _, n := range l.splitText(cursor, end) {
				slots = append(slots, pending{node: n})
			}
		}
	}

	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		switch child.Type() {
		case htmlNodeStartTag, htmlNodeSelfClosing:
			cursor = int(child.EndByte())

		case htmlNodeEndTag:
			flush(int(child.StartByte()))
			cursor = int(child.EndByte())
			to = cursor

		case htmlNodeElement, htmlNodeScriptElement, htmlNodeStyleElement:
			flush(int(child.StartByte()))
			slots = append(slots, pending{node: l.element(child)})
			cursor = int(child.EndByte())

		case htmlNodeComment:
			flush(int(child.StartByte()))
			slots = append(slots, pending{node: l.comment(child)})
			cursor = int(child.EndByte())

		case htmlNodeDoctype:
			flush(int(child.StartByte()))
			slots = append(slots, pending{})
			cursor = int(child.EndByte())

		case htmlNodeERROR:
			l.errors = append(l.errors, fmt.Sprintf("%d:%d: unparseable markup %q",
				child.StartPoint().Row+1, child.StartPoint().Column, truncate(l.text(child), 40)))
		}
	}
	flush(to)

	return condense(slots)
}

// element lowers element, script_element and style_element nodes.
func (l *lowerer) element(n *sitter.Node) *Element {
	el := &Element{Loc: l.nodeLoc(n)}

	var raw *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case htmlNodeStartTag, htmlNodeSelfClosing:
			l.tag(child, el)
		case htmlNodeRawText:
			raw = child
		}
	}

	if n.Type() == htmlNodeElement {
		el.Nodes = l.children(n, int(n.StartByte()), int(n.EndByte()))
	} else if raw != nil && raw.EndByte() > raw.StartByte() {
		el.Nodes = []Node{&Text{Content: l.text(raw), Loc: l.nodeLoc(raw)}}
	}

	el.TagType = elementTypeOf(el)
	return el
}

func (l *lowerer) comment(n *sitter.Node) *Comment {
	content := l.text(n)
	content = strings.TrimPrefix(content, "<!--")
	content = strings.TrimSuffix(content, "-->")
	return &Comment{Content: content, Loc: l.nodeLoc(n)}
}

// tag reads the tag name and props of a start or self-closing tag.
func (l *lowerer) tag(n *sitter.Node, el *Element) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case htmlNodeTagName:
			el.Tag = l.text(child)
		case htmlNodeAttribute:
			el.Props = append(el.Props, l.prop(child))
		}
	}
}

// prop lowers an attribute node into an *Attribute or a *Directive.
func (l *lowerer) prop(n *sitter.Node) Node {
	var name string
	var value *Text

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case htmlNodeAttributeName:
			name = l.text(child)
		case htmlNodeQuotedAttributeValue:
			// Empty quotes have no attribute_value child.
			inner := Loc{Start: int(child.StartByte()) + 1, End: int(child.StartByte()) + 1}
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == htmlNodeAttributeValue {
					inner = l.nodeLoc(gc)
				}
			}
			value = &Text{Content: inner.Source, Loc: inner}
		case htmlNodeAttributeValue:
			value = &Text{Content: l.text(child), Loc: l.nodeLoc(child)}
		}
	}

	loc := l.nodeLoc(n)
	if isDirectiveName(name) {
		return newDirective(name, value, loc)
	}
	return &Attribute{Name: name, Value: value, Loc: loc}
}

// splitText lowers raw text between start and end into Text and
// Interpolation nodes.
func (l *lowerer) splitText(start, end int) []Node {
	var out []Node
	pos := start

	for pos < end {
		segment := string(l.src[pos:end])
		open := strings.Index(segment, delimiterOpen)
		if open < 0 {
			break
		}
		closeIdx := strings.Index(segment[open+len(delimiterOpen):], delimiterClose)
		if closeIdx < 0 {
			break
		}

		if open > 0 {
			out = append(out, &Text{Content: segment[:open], Loc: l.loc(pos, pos+open)})
		}

		innerStart := pos + open + len(delimiterOpen)
		innerEnd := innerStart + closeIdx
		inner := string(l.src[innerStart:innerEnd])
		trimmedStart := innerStart + (len(inner) - len(strings.TrimLeft(inner, " \t\r\n\f")))
		trimmedEnd := innerEnd - (len(inner) - len(strings.TrimRight(inner, " \t\r\n\f")))
		if trimmedEnd < trimmedStart {
			trimmedEnd = trimmedStart
		}

		stop := innerEnd + len(delimiterClose)
		out = append(out, &Interpolation{
			Content: &SimpleExpression{
				Content: string(l.src[trimmedStart:trimmedEnd]),
				Loc:     l.loc(trimmedStart, trimmedEnd),
			},
			Loc: l.loc(pos+open, stop),
		})
		pos = stop
	}

	if pos < end {
		out = append(out, &Text{Content: string(l.src[pos:end]), Loc: l.loc(pos, end)})
	}
	return out
}

// condense applies template whitespace rules and drops doctype markers.
//
// Whitespace-only text is removed at either end of the child list, next to
// a doctype, between a comment and an element or another comment, or
// between two elements when it spans a newline; elsewhere it becomes a
// single space. Other text has each whitespace run collapsed to one space.
func condense(slots []pending) []Node {
	out := make([]Node, 0, len(slots))
	for i, s := range slots {
		t, ok := s.node.(*Text)
		if !ok {
			if s.node != nil {
				out = append(out, s.node)
			}
			continue
		}

		if strings.TrimSpace(t.Content) != "" {
			out = append(out, &Text{Content: collapseWhitespace(t.Content), Loc: t.Loc})
			continue
		}

		if i == 0 || i == len(slots)-1 {
			continue
		}
		prev, next := slots[i-1].node, slots[i+1].node
		if prev == nil || next == nil {
			continue
		}
		_, prevEl := prev.(*Element)
		_, nextEl := next.(*Element)
		_, prevComment := prev.(*Comment)
		_, nextComment := next.(*Comment)
		if (prevComment && (nextComment || nextEl)) || (prevEl && nextComment) {
			continue
		}
		if prevEl && nextEl && strings.ContainsAny(t.Content, "\r\n") {
			continue
		}
		out = append(out, &Text{Content: " ", Loc: t.Loc})
	}
	return out
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n', '\f':
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
		default:
			b.WriteRune(r)
			inSpace = false
		}
	}
	return b.String()
}

func elementTypeOf(el *Element) ElementType {
	switch {
	case el.Tag == "template":
		for _, d := range el.Directives() {
			switch d.Name {
			case "if", "else", "else-if", "for", "slot":
				return ElementTypeTemplate
			}
		}
		return ElementTypeElement
	case el.Tag == "slot":
		return ElementTypeSlot
	case strings.Contains(el.Tag, "-"):
		return ElementTypeComponent
	case el.Tag != "" && el.Tag[0] >= 'A' && el.Tag[0] <= 'Z':
		return ElementTypeComponent
	default:
		return ElementTypeElement
	}
}

func countNodes(n Node) int {
	count := 1
	if el, ok := n.(*Element); ok {
		count += len(el.Props)
	}
	for _, c := range n.Children() {
		count += countNodes(c)
	}
	return count
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
