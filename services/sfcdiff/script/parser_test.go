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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
)

func mustParse(t *testing.T, src string, lang Language) *Program {
	t.Helper()
	prog, err := NewParser().Parse(context.Background(), []byte(src), lang)
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func TestParser_Parse_TopLevelDeclarations(t *testing.T) {
	prog := mustParse(t, `
import { ref } from 'vue';
const a = ['x', "y"];
let b = [{ name: 'n', icon: 'i' }];
var c;
export const hidden = [];
function f() { const inner = []; }
`, LanguageJS)

	require.Len(t, prog.Declarations, 3)
	assert.Equal(t, "const", prog.Declarations[0].DeclKind)
	assert.Equal(t, "let", prog.Declarations[1].DeclKind)
	assert.Equal(t, "var", prog.Declarations[2].DeclKind)

	assert.Equal(t, "a", prog.Declarations[0].Declarators[0].Name)
	assert.Nil(t, prog.Declarations[2].Declarators[0].Init)

	arr, ok := prog.Declarations[0].Declarators[0].Init.(*ArrayExpression)
	require.True(t, ok)
	require.Len(t, arr.Elements, 2)
	assert.Equal(t, "x", arr.Elements[0].(*StringLiteral).Value)
	assert.Equal(t, "y", arr.Elements[1].(*StringLiteral).Value)
	assert.Equal(t, `['x', "y"]`, arr.Span.Source)
}

func TestParser_Parse_TypeScriptWrappersStripped(t *testing.T) {
	prog := mustParse(t, `
type Patron = { name: string };
const typed: Patron[] = [{ name: 'a' }] as Patron[];
const asserted = (['b'])!;
`, LanguageTS)

	require.Len(t, prog.Declarations, 2)

	typed, ok := prog.Declarations[0].Declarators[0].Init.(*ArrayExpression)
	require.True(t, ok, "got %T", prog.Declarations[0].Declarators[0].Init)
	require.Len(t, typed.Elements, 1)
	assert.Equal(t, KindObjectExpression, typed.Elements[0].Kind())

	asserted, ok := prog.Declarations[1].Declarators[0].Init.(*ArrayExpression)
	require.True(t, ok, "got %T", prog.Declarations[1].Declarators[0].Init)
	assert.Len(t, asserted.Elements, 1)
}

func TestParser_Parse_ObjectMembers(t *testing.T) {
	prog := mustParse(t, `const o = { name: 'a', icon, ...rest, greet() {}, ['k']: 'v', n: 1 };`, LanguageJS)

	obj, ok := prog.Declarations[0].Declarators[0].Init.(*ObjectExpression)
	require.True(t, ok)
	require.Len(t, obj.Properties, 6)

	name := obj.Properties[0].(*ObjectProperty)
	assert.Equal(t, "name", name.Key.Loc().Source)
	assert.Equal(t, "a", name.Value.(*StringLiteral).Value)
	assert.True(t, IsDirectlyInitialized(name))

	icon := obj.Properties[1].(*ObjectProperty)
	assert.True(t, icon.Shorthand)
	assert.Equal(t, KindIdentifier, icon.Value.Kind())

	assert.Equal(t, KindSpreadElement, obj.Properties[2].Kind())
	assert.False(t, IsDirectlyInitialized(obj.Properties[2]))
	assert.Equal(t, KindObjectMethod, obj.Properties[3].Kind())

	computed := obj.Properties[4].(*ObjectProperty)
	assert.True(t, computed.Computed)
	assert.Equal(t, "k", computed.Key.(*StringLiteral).Value)

	assert.Equal(t, KindNumericLiteral, obj.Properties[5].(*ObjectProperty).Value.Kind())
}

func TestParser_Parse_ArrayHoles(t *testing.T) {
	prog := mustParse(t, `
const sparse = ['a', , 'b'];
const trailing = ['a', 'b',];
const leading = [, 'a'];
`, LanguageJS)

	sparse := prog.Declarations[0].Declarators[0].Init.(*ArrayExpression)
	require.Len(t, sparse.Elements, 3)
	assert.Equal(t, KindHole, sparse.Elements[1].Kind())

	trailing := prog.Declarations[1].Declarators[0].Init.(*ArrayExpression)
	assert.Len(t, trailing.Elements, 2)

	leading := prog.Declarations[2].Declarators[0].Init.(*ArrayExpression)
	require.Len(t, leading.Elements, 2)
	assert.Equal(t, KindHole, leading.Elements[0].Kind())
}

func TestParser_Parse_SyntaxError(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("const a = 1;\nconst b = [;"), LanguageJS)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.GreaterOrEqual(t, perr.Line, 1)
}

func TestParser_Parse_LegacyOctalEscape(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("const ok = ['a'];\nconst bad = ['\\01'];"), LanguageJS)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, `'\01'`, perr.Snippet)
}

func TestParser_Parse_ExpressionKinds(t *testing.T) {
	tests := []struct {
		expr string
		want Kind
	}{
		{expr: "m.a", want: KindMemberExpression},
		{expr: "m['a']", want: KindMemberExpression},
		{expr: "m?.a", want: KindOptionalMemberExpression},
		{expr: "m?.a.b", want: KindOptionalMemberExpression},
		{expr: "(m?.a).b", want: KindMemberExpression},
		{expr: "f()", want: KindCallExpression},
		{expr: "f?.()", want: KindOptionalCallExpression},
		{expr: "m?.f()", want: KindOptionalCallExpression},
		{expr: "tag`x`", want: KindTaggedTemplateExpression},
		{expr: "new F()", want: KindNewExpression},
		{expr: "-1", want: KindUnaryExpression},
		{expr: "typeof x", want: KindUnaryExpression},
		{expr: "i++", want: KindUpdateExpression},
		{expr: "a + b", want: KindBinaryExpression},
		{expr: "a && b", want: KindLogicalExpression},
		{expr: "a ?? b", want: KindLogicalExpression},
		{expr: "a ? b : c", want: KindConditionalExpression},
		{expr: "a += 1", want: KindAssignmentExpression},
		{expr: "(a, b)", want: KindSequenceExpression},
		{expr: "() => 1", want: KindArrowFunctionExpression},
		{expr: "function () {}", want: KindFunctionExpression},
		{expr: "class {}", want: KindClassExpression},
		{expr: "/x/g", want: KindRegExpLiteral},
		{expr: "10n", want: KindBigIntLiteral},
		{expr: "0x1F", want: KindNumericLiteral},
		{expr: "this", want: KindThisExpression},
		{expr: "`t`", want: KindTemplateLiteral},
		{expr: "undefined", want: KindIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prog := mustParse(t, "const v = ["+tt.expr+"];", LanguageJS)
			arr, ok := prog.Declarations[0].Declarators[0].Init.(*ArrayExpression)
			require.True(t, ok)
			require.Len(t, arr.Elements, 1)
			assert.Equal(t, tt.want.String(), arr.Elements[0].Kind().String())
		})
	}
}

func TestParser_Parse_TooLarge(t *testing.T) {
	_, err := NewParser(WithMaxFileSize(4)).Parse(context.Background(), []byte("const a = [];"), LanguageJS)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestParser_Parse_Empty(t *testing.T) {
	prog := mustParse(t, "", LanguageTS)
	assert.Empty(t, prog.Declarations)
}

func TestExtractArrayInitializer(t *testing.T) {
	prog := mustParse(t, `
const patrons = ['a', 'b'];
const first = 1, second = ['x'];
var late;
var late = ['y'];
let bare;
const str = 'nope';
const holes = ['a', , 'b'];
const spread = [...patrons];
`, LanguageJS)

	t.Run("found", func(t *testing.T) {
		init, err := ExtractArrayInitializer(prog, "patrons")
		require.NoError(t, err)
		assert.Len(t, init.Elements, 2)
		assert.Same(t, init.Node, prog.Declarations[0].Declarators[0].Init)
	})

	t.Run("picks the named declarator", func(t *testing.T) {
		init, err := ExtractArrayInitializer(prog, "second")
		require.NoError(t, err)
		assert.Equal(t, "x", init.Elements[0].(*StringLiteral).Value)
	})

	t.Run("skips declarator without init", func(t *testing.T) {
		init, err := ExtractArrayInitializer(prog, "late")
		require.NoError(t, err)
		assert.Equal(t, "y", init.Elements[0].(*StringLiteral).Value)
	})

	tests := []struct {
		name string
		want error
	}{
		{"missing", ErrNoDeclaration},
		{"bare", ErrNoInitializer},
		{"str", ErrNotArray},
		{"first", ErrNotArray},
		{"holes", ErrSparseOrSpread},
		{"spread", ErrSparseOrSpread},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractArrayInitializer(prog, tt.name)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := ExtractArrayInitializer(nil, "patrons")
	assert.True(t, errors.Is(err, ErrNoProgram))
}

func TestFindSetupScriptAndLanguage(t *testing.T) {
	parse := func(src string) *markup.Root {
		root, err := markup.NewParser().Parse(context.Background(), []byte(src))
		require.NoError(t, err)
		return root
	}

	el, src, ok := FindSetupScript(parse("<template><div/></template>\n<script lang=\"ts\" setup>\nconst a = [];\n</script>"))
	require.True(t, ok)
	assert.Equal(t, "\nconst a = [];\n", src)
	assert.Equal(t, LanguageTS, LanguageOf(el))

	el, _, ok = FindSetupScript(parse("<template><div/></template>\n<script>\nconst a = [];\n</script>"))
	require.True(t, ok)
	assert.Equal(t, LanguageJS, LanguageOf(el))

	_, _, ok = FindSetupScript(parse("<template><div/></template>"))
	assert.False(t, ok)

	_, _, ok = FindSetupScript(parse("<template/>\n<script>const a = 1;</script>\n<script setup>const b = 2;</script>"))
	assert.False(t, ok, "two script blocks")

	_, _, ok = FindSetupScript(parse("<template/>\n<script></script>"))
	assert.False(t, ok, "empty script block")

	assert.Equal(t, LanguageJS, LanguageOf(nil))
}
