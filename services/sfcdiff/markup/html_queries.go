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

// HTML tree-sitter node types consumed by the lowering pass.
//
// Reference: https://github.com/tree-sitter/tree-sitter-html
//
//	document
//	├── element
//	│   ├── start_tag | self_closing_tag
//	│   │   ├── tag_name
//	│   │   └── attribute*
//	│   │       ├── attribute_name
//	│   │       └── quoted_attribute_value > attribute_value | attribute_value
//	│   ├── text | entity | comment | element*
//	│   └── end_tag
//	├── script_element
//	│   ├── start_tag
//	│   ├── raw_text
//	│   └── end_tag
//	└── style_element (same shape as script_element)
const (
	htmlNodeDocument = "document"
	htmlNodeDoctype  = "doctype"

	htmlNodeElement     = "element"
	htmlNodeStartTag    = "start_tag"
	htmlNodeEndTag      = "end_tag"
	htmlNodeSelfClosing = "self_closing_tag"
	htmlNodeTagName     = "tag_name"

	htmlNodeScriptElement = "script_element"
	htmlNodeStyleElement  = "style_element"
	htmlNodeRawText       = "raw_text"

	htmlNodeAttribute            = "attribute"
	htmlNodeAttributeName        = "attribute_name"
	htmlNodeAttributeValue       = "attribute_value"
	htmlNodeQuotedAttributeValue = "quoted_attribute_value"

	htmlNodeComment = "comment"
	htmlNodeERROR   = "ERROR"
)

// Interpolation delimiters.
const (
	delimiterOpen  = "{{"
	delimiterClose = "}}"
)
