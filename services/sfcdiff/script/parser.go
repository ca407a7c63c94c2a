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
	"context"
	"fmt"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/telemetry"
)

// DefaultMaxFileSize is the default script size limit (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// Language selects the grammar used for a script block.
type Language string

const (
	LanguageJS  Language = "js"
	LanguageTS  Language = "ts"
	LanguageTSX Language = "tsx"
)

// LanguageOf returns the language declared by a <script> element's lang
// attribute. A missing or empty attribute means plain JavaScript.
func LanguageOf(el *markup.Element) Language {
	if el == nil {
		return LanguageJS
	}
	lang, ok := el.Attr("lang")
	if !ok || strings.TrimSpace(lang) == "" {
		return LanguageJS
	}
	return Language(strings.ToLower(strings.TrimSpace(lang)))
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case LanguageTS:
		return typescript.GetLanguage()
	case LanguageTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxFileSize sets the maximum script size accepted by Parse.
func WithMaxFileSize(bytes int) ParserOption {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// Parser parses script blocks into Programs.
//
// Description:
//
//	TypeScript is parsed with the typescript grammar directly; type-only
//	syntax around expressions (`as`, `satisfies`, `!`, `<T>x`) is dropped
//	during lowering, so a typed and an untyped script with the same values
//	produce the same expression trees.
//
// Thread Safety:
//
//	Parser is safe for concurrent use.
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

// Parse parses src as lang and returns its top-level declarations.
//
// Inputs:
//
//	ctx  - Context for cancellation.
//	src  - Script source, without the surrounding <script> tags.
//	lang - Grammar selector. Unknown values parse as JavaScript.
//
// Outputs:
//
//	*Program - Never nil on success.
//	error    - *ParseError (wrapping ErrSyntax), ErrFileTooLarge,
//	           ErrNoProgram, or a context error.
func (p *Parser) Parse(ctx context.Context, src []byte, lang Language) (prog *Program, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("script parse canceled before start: %w", err)
	}

	language := "script:" + string(lang)
	ctx, span := telemetry.StartParseSpan(ctx, language, len(src))
	defer span.End()
	start := time.Now()
	defer func() {
		count := 0
		if prog != nil {
			count = len(prog.Declarations)
			telemetry.SetParseSpanResult(span, count, 0)
		} else if err != nil {
			span.RecordError(err)
		}
		telemetry.RecordParse(ctx, language, time.Since(start), count, err == nil)
	}()

	if len(src) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(src), p.maxFileSize)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	if tree == nil {
		return nil, ErrNoProgram
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Type() != jsNodeProgram {
		return nil, ErrNoProgram
	}
	if root.HasError() {
		return nil, syntaxError(root, src)
	}

	l := &lowerer{src: src}
	prog = l.program(root)
	if l.err != nil {
		return nil, l.err
	}
	return prog, nil
}

// syntaxError locates the first ERROR or missing node under n.
func syntaxError(n *sitter.Node, src []byte) *ParseError {
	bad := firstError(n)
	if bad == nil {
		bad = n
	}
	return parseErrorAt(bad, src)
}

func parseErrorAt(bad *sitter.Node, src []byte) *ParseError {
	snippet := string(src[bad.StartByte():bad.EndByte()])
	if len(snippet) > 40 {
		snippet = snippet[:40] + "..."
	}
	return &ParseError{
		Line:    int(bad.StartPoint().Row) + 1,
		Column:  int(bad.StartPoint().Column),
		Snippet: snippet,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == jsNodeERROR || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
