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

// JavaScript/TypeScript tree-sitter node types used by the lowering pass.
//
// The typescript and tsx grammars extend the javascript grammar, so the same
// names apply to all three. Type-only wrappers are listed separately; they are
// unwrapped to their operand.
//
// Reference: https://github.com/tree-sitter/tree-sitter-javascript
const (
	jsNodeProgram             = "program"
	jsNodeLexicalDeclaration  = "lexical_declaration"
	jsNodeVariableDeclaration = "variable_declaration"
	jsNodeVariableDeclarator  = "variable_declarator"
	jsNodeComment             = "comment"
	jsNodeERROR               = "ERROR"

	jsNodeArray                = "array"
	jsNodeObject               = "object"
	jsNodePair                 = "pair"
	jsNodeShorthandProperty    = "shorthand_property_identifier"
	jsNodeSpreadElement        = "spread_element"
	jsNodeMethodDefinition     = "method_definition"
	jsNodeString               = "string"
	jsNodeTemplateString       = "template_string"
	jsNodeNumber               = "number"
	jsNodeTrue                 = "true"
	jsNodeFalse                = "false"
	jsNodeNull                 = "null"
	jsNodeUndefined            = "undefined"
	jsNodeIdentifier           = "identifier"
	jsNodePropertyIdentifier   = "property_identifier"
	jsNodePrivateIdentifier    = "private_property_identifier"
	jsNodeComputedPropertyName = "computed_property_name"
	jsNodeParenthesized        = "parenthesized_expression"
	jsNodeRegex                = "regex"
	jsNodeThis                 = "this"
	jsNodeSuper                = "super"

	jsNodeMemberExpression      = "member_expression"
	jsNodeSubscriptExpression   = "subscript_expression"
	jsNodeCallExpression        = "call_expression"
	jsNodeOptionalChain         = "optional_chain"
	jsNodeNewExpression         = "new_expression"
	jsNodeUnaryExpression       = "unary_expression"
	jsNodeUpdateExpression      = "update_expression"
	jsNodeBinaryExpression      = "binary_expression"
	jsNodeTernaryExpression     = "ternary_expression"
	jsNodeAssignmentExpression  = "assignment_expression"
	jsNodeAugmentedAssignment   = "augmented_assignment_expression"
	jsNodeSequenceExpression    = "sequence_expression"
	jsNodeArrowFunction         = "arrow_function"
	jsNodeFunctionExpression    = "function_expression"
	jsNodeFunction              = "function"
	jsNodeGeneratorFunction     = "generator_function"
	jsNodeClass                 = "class"
	jsNodeAwaitExpression       = "await_expression"
	jsNodeYieldExpression       = "yield_expression"
	jsNodeMetaProperty          = "meta_property"
	jsNodeJSXElement            = "jsx_element"
	jsNodeJSXSelfClosingElement = "jsx_self_closing_element"

	jsNodeObjectPattern     = "object_pattern"
	jsNodeArrayPattern      = "array_pattern"
	jsNodeAssignmentPattern = "assignment_pattern"
	jsNodeRestPattern       = "rest_pattern"

	// TypeScript
	tsNodeAsExpression        = "as_expression"
	tsNodeSatisfiesExpression = "satisfies_expression"
	tsNodeNonNullExpression   = "non_null_expression"
	tsNodeTypeAssertion       = "type_assertion"
	tsNodeTypeArguments       = "type_arguments"
)

// Field names.
const (
	jsFieldName      = "name"
	jsFieldValue     = "value"
	jsFieldKey       = "key"
	jsFieldObject    = "object"
	jsFieldFunction  = "function"
	jsFieldArguments = "arguments"
	jsFieldOperator  = "operator"
)
