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
	"regexp"
	"strings"
)

var (
	// forAliasRE splits `lhs in|of source`.
	forAliasRE = regexp.MustCompile(`(?s)^(.*?)\s+(?:in|of)\s+(\S.*)$`)

	// forIteratorRE matches the `, key` / `, key, index` tail of a v-for alias.
	forIteratorRE = regexp.MustCompile(`,([^,\}\]]*)(?:,([^,\}\]]*))?$`)

	stripParensRE = regexp.MustCompile(`^\(|\)$`)
)

func isDirectiveName(name string) bool {
	if name == "" {
		return false
	}
	switch name[0] {
	case ':', '@', '#':
		return true
	}
	return strings.HasPrefix(name, "v-") && len(name) > 2
}

// newDirective splits a directive attribute into name, argument and
// modifiers, e.g. `v-on:click.stop` -> on / click / [stop] and
// `#label` -> slot / label.
func newDirective(rawName string, value *Text, loc Loc) *Directive {
	d := &Directive{RawName: rawName, Loc: loc}

	var rest string
	switch rawName[0] {
	case ':':
		d.Name, rest = "bind", rawName[1:]
	case '@':
		d.Name, rest = "on", rawName[1:]
	case '#':
		d.Name, rest = "slot", rawName[1:]
	default:
		body := rawName[2:]
		end := strings.IndexAny(body, ":.")
		if end < 0 {
			d.Name = body
		} else {
			d.Name = body[:end]
			if body[end] == ':' {
				rest = body[end+1:]
			} else {
				rest = body[end:]
			}
		}
	}

	arg, modifiers := splitModifiers(rest)
	if arg != "" {
		static := true
		if strings.HasPrefix(arg, "[") && strings.HasSuffix(arg, "]") {
			arg = arg[1 : len(arg)-1]
			static = false
		}
		d.Arg = &SimpleExpression{Content: arg, IsStatic: static}
	}
	d.Modifiers = modifiers

	if value != nil {
		d.Exp = &SimpleExpression{Content: value.Content, Loc: value.Loc}
		if d.Name == "for" {
			d.ForParseResult = parseForExpression(d.Exp)
		}
	}
	return d
}

// splitModifiers separates `arg.mod1.mod2`. A dynamic `[arg]` may contain dots.
func splitModifiers(s string) (string, []string) {
	if s == "" {
		return "", nil
	}
	argEnd := len(s)
	if strings.HasPrefix(s, "[") {
		if closing := strings.Index(s, "]"); closing >= 0 {
			argEnd = closing + 1
			if argEnd < len(s) && s[argEnd] != '.' {
				argEnd = len(s)
			}
		}
	} else if dot := strings.Index(s, "."); dot >= 0 {
		argEnd = dot
	}

	arg := s[:argEnd]
	var modifiers []string
	if argEnd < len(s) {
		for _, m := range strings.Split(s[argEnd+1:], ".") {
			if m != "" {
				modifiers = append(modifiers, m)
			}
		}
	}
	return arg, modifiers
}

// parseForExpression destructures a v-for value. It returns nil for a
// malformed expression.
func parseForExpression(exp *SimpleExpression) *ForParseResult {
	m := forAliasRE.FindStringSubmatchIndex(exp.Content)
	if m == nil {
		return nil
	}

	sub := func(start, end int) *SimpleExpression {
		raw := exp.Content[start:end]
		lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n\f"))
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		s := exp.Loc.Start + start + lead
		return &SimpleExpression{
			Content: trimmed,
			Loc:     Loc{Start: s, End: s + len(trimmed), Source: trimmed},
		}
	}

	source := sub(m[4], m[5])
	if source == nil {
		return nil
	}
	result := &ForParseResult{Source: source}

	lhs := strings.TrimSpace(exp.Content[m[2]:m[3]])
	lhs = strings.TrimSpace(stripParensRE.ReplaceAllString(lhs, ""))
	value := lhs
	if it := forIteratorRE.FindStringSubmatch(lhs); it != nil {
		value = strings.TrimSpace(lhs[:len(lhs)-len(it[0])])
		if key := strings.TrimSpace(it[1]); key != "" {
			result.Key = &SimpleExpression{Content: key}
		}
		if index := strings.TrimSpace(it[2]); index != "" {
			result.Index = &SimpleExpression{Content: index}
		}
	}
	if value != "" {
		result.Value = &SimpleExpression{Content: value}
	}
	return result
}
