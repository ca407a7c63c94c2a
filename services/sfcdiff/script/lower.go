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
	sitter "github.com/smacker/go-tree-sitter"
)

// lowerer converts tree-sitter nodes into script nodes.
type lowerer struct {
	src []byte

	// err is the first literal that the grammar accepted but that is not
	// valid in strict mode, such as a legacy octal escape.
	err *ParseError
}

func (l *lowerer) span(n *sitter.Node) Span {
	return Span{
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Source: string(l.src[n.StartByte():n.EndByte()]),
	}
}

func (l *lowerer) program(root *sitter.Node) *Program {
	prog := &Program{Span: l.span(root)}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case jsNodeLexicalDeclaration, jsNodeVariableDeclaration:
			prog.Declarations = append(prog.Declarations, l.declaration(stmt))
		}
	}
	return prog
}

func (l *lowerer) declaration(n *sitter.Node) *VariableDeclaration {
	decl := &VariableDeclaration{Span: l.span(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "var", "let", "const":
			decl.DeclKind = child.Type()
		case jsNodeVariableDeclarator:
			decl.Declarators = append(decl.Declarators, l.declarator(child))
		}
	}
	return decl
}

func (l *lowerer) declarator(n *sitter.Node) *Declarator {
	d := &Declarator{Span: l.span(n)}
	if name := n.ChildByFieldName(jsFieldName); name != nil && name.Type() == jsNodeIdentifier {
		d.Name = l.span(name).Source
	}
	if value := n.ChildByFieldName(jsFieldValue); value != nil {
		d.Init = l.expression(value)
	}
	return d
}

// expression lowers an expression node. Parentheses and type-only wrappers
// are transparent.
func (l *lowerer) expression(n *sitter.Node) Node {
	switch n.Type() {
	case jsNodeParenthesized, tsNodeAsExpression, tsNodeSatisfiesExpression,
		tsNodeNonNullExpression, tsNodeTypeAssertion:
		if inner := operand(n); inner != nil {
			return l.expression(inner)
		}
	case jsNodeArray:
		return l.array(n)
	case jsNodeObject:
		return l.object(n)
	case jsNodeString:
		return l.stringLiteral(n)
	}
	return l.opaque(n)
}

func (l *lowerer) opaque(n *sitter.Node) *Opaque {
	return &Opaque{NodeKind: l.opaqueKind(n), Type: n.Type(), Span: l.span(n)}
}

// operand returns the first named child that is not a comment or a type
// argument list.
func operand(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case jsNodeComment, tsNodeTypeArguments:
			continue
		}
		return c
	}
	return nil
}

// opaqueKind names a node outside the structured subset. Each grammar type
// maps to the single Babel kind it parses as; a few need a look at their
// operator or children to pick between two.
func (l *lowerer) opaqueKind(n *sitter.Node) Kind {
	switch n.Type() {
	case jsNodeNumber:
		if src := l.src[n.StartByte():n.EndByte()]; len(src) > 0 && src[len(src)-1] == 'n' {
			return KindBigIntLiteral
		}
		return KindNumericLiteral
	case jsNodeTrue, jsNodeFalse:
		return KindBooleanLiteral
	case jsNodeNull:
		return KindNullLiteral
	case jsNodeIdentifier, jsNodeUndefined, jsNodePropertyIdentifier,
		jsNodePrivateIdentifier, jsNodeShorthandProperty:
		return KindIdentifier
	case jsNodeTemplateString:
		return KindTemplateLiteral
	case jsNodeRegex:
		return KindRegExpLiteral
	case jsNodeThis:
		return KindThisExpression
	case jsNodeSuper:
		return KindSuper
	case jsNodeMemberExpression, jsNodeSubscriptExpression:
		if inOptionalChain(n) {
			return KindOptionalMemberExpression
		}
		return KindMemberExpression
	case jsNodeCallExpression:
		if args := n.ChildByFieldName(jsFieldArguments); args != nil && args.Type() == jsNodeTemplateString {
			return KindTaggedTemplateExpression
		}
		if inOptionalChain(n) {
			return KindOptionalCallExpression
		}
		return KindCallExpression
	case jsNodeNewExpression:
		return KindNewExpression
	case jsNodeUnaryExpression:
		return KindUnaryExpression
	case jsNodeUpdateExpression:
		return KindUpdateExpression
	case jsNodeBinaryExpression:
		if op := n.ChildByFieldName(jsFieldOperator); op != nil {
			switch op.Type() {
			case "&&", "||", "??":
				return KindLogicalExpression
			}
		}
		return KindBinaryExpression
	case jsNodeTernaryExpression:
		return KindConditionalExpression
	case jsNodeAssignmentExpression, jsNodeAugmentedAssignment:
		return KindAssignmentExpression
	case jsNodeSequenceExpression:
		return KindSequenceExpression
	case jsNodeArrowFunction:
		return KindArrowFunctionExpression
	case jsNodeFunctionExpression, jsNodeFunction, jsNodeGeneratorFunction:
		return KindFunctionExpression
	case jsNodeClass:
		return KindClassExpression
	case jsNodeAwaitExpression:
		return KindAwaitExpression
	case jsNodeYieldExpression:
		return KindYieldExpression
	case jsNodeMetaProperty:
		return KindMetaProperty
	case jsNodeJSXElement, jsNodeJSXSelfClosingElement:
		return KindJSXElement
	case jsNodeSpreadElement:
		return KindSpreadElement
	case jsNodeMethodDefinition:
		return KindObjectMethod
	case jsNodeObjectPattern:
		return KindObjectPattern
	case jsNodeArrayPattern:
		return KindArrayPattern
	case jsNodeAssignmentPattern:
		return KindAssignmentPattern
	case jsNodeRestPattern:
		return KindRestElement
	}
	return KindOther
}

// inOptionalChain reports whether a member or call node belongs to a chain
// containing `?.`. Parentheses end a chain.
func inOptionalChain(n *sitter.Node) bool {
	for n != nil {
		switch n.Type() {
		case jsNodeMemberExpression, jsNodeSubscriptExpression, jsNodeCallExpression:
		default:
			return false
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			switch n.Child(i).Type() {
			case jsNodeOptionalChain, "?.":
				return true
			}
		}
		if next := n.ChildByFieldName(jsFieldObject); next != nil {
			n = next
		} else {
			n = n.ChildByFieldName(jsFieldFunction)
		}
	}
	return false
}

// array lowers an array literal, recording elided slots as holes. A trailing
// comma does not add a slot.
func (l *lowerer) array(n *sitter.Node) *ArrayExpression {
	arr := &ArrayExpression{Span: l.span(n)}
	filled := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch {
		case child.Type() == ",":
			if !filled {
				arr.Elements = append(arr.Elements, &Opaque{
					NodeKind: KindHole,
					Span:     Span{Start: int(child.StartByte()), End: int(child.StartByte())},
				})
			}
			filled = false
		case child.IsNamed() && child.Type() != jsNodeComment:
			arr.Elements = append(arr.Elements, l.expression(child))
			filled = true
		}
	}
	return arr
}

func (l *lowerer) object(n *sitter.Node) *ObjectExpression {
	obj := &ObjectExpression{Span: l.span(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		member := n.NamedChild(i)
		switch member.Type() {
		case jsNodeComment:
			continue
		case jsNodePair:
			obj.Properties = append(obj.Properties, l.pair(member))
		case jsNodeShorthandProperty:
			ident := &Opaque{NodeKind: KindIdentifier, Type: member.Type(), Span: l.span(member)}
			obj.Properties = append(obj.Properties, &ObjectProperty{
				Key:       ident,
				Value:     ident,
				Shorthand: true,
				Span:      ident.Span,
			})
		default:
			obj.Properties = append(obj.Properties, l.opaque(member))
		}
	}
	return obj
}

func (l *lowerer) pair(n *sitter.Node) *ObjectProperty {
	prop := &ObjectProperty{Span: l.span(n)}
	if key := n.ChildByFieldName(jsFieldKey); key != nil {
		if key.Type() == jsNodeComputedPropertyName {
			prop.Computed = true
			if inner := operand(key); inner != nil {
				prop.Key = l.expression(inner)
			}
		} else {
			prop.Key = l.expression(key)
		}
	}
	if value := n.ChildByFieldName(jsFieldValue); value != nil {
		prop.Value = l.expression(value)
	}
	return prop
}

func (l *lowerer) stringLiteral(n *sitter.Node) Node {
	sp := l.span(n)
	value, ok := decodeStringLiteral(sp.Source)
	if !ok {
		if l.err == nil {
			l.err = parseErrorAt(n, l.src)
		}
		return &Opaque{NodeKind: KindOther, Type: n.Type(), Span: sp}
	}
	return &StringLiteral{Value: value, Span: sp}
}
