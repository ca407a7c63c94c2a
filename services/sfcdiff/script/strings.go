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
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeStringLiteral returns the value of a quoted JavaScript string
// literal, including its quotes. It reports false for malformed input.
func decodeStringLiteral(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	quote := raw[0]
	if (quote != '\'' && quote != '"') || raw[len(raw)-1] != quote {
		return "", false
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, true
	}

	var b strings.Builder
	b.Grow(len(body))
	var pendingHigh rune = -1

	flushHigh := func() {
		if pendingHigh >= 0 {
			b.WriteRune(utf8.RuneError)
			pendingHigh = -1
		}
	}
	writeUnit := func(r rune) {
		switch {
		case utf16.IsSurrogate(r) && r < 0xDC00:
			flushHigh()
			pendingHigh = r
		case utf16.IsSurrogate(r):
			if pendingHigh >= 0 {
				b.WriteRune(utf16.DecodeRune(pendingHigh, r))
				pendingHigh = -1
			} else {
				b.WriteRune(utf8.RuneError)
			}
		default:
			flushHigh()
			b.WriteRune(r)
		}
	}

	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			flushHigh()
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}

		next := body[i+1]
		switch next {
		case '\n':
			i += 2
			continue
		case '\r':
			i += 2
			if i < len(body) && body[i] == '\n' {
				i++
			}
			continue
		case 'n':
			writeUnit('\n')
		case 't':
			writeUnit('\t')
		case 'r':
			writeUnit('\r')
		case 'b':
			writeUnit('\b')
		case 'f':
			writeUnit('\f')
		case 'v':
			writeUnit('\v')
		case '0':
			if i+2 < len(body) && body[i+2] >= '0' && body[i+2] <= '9' {
				return "", false
			}
			writeUnit(0)
		case 'x':
			if i+4 > len(body) {
				return "", false
			}
			v, err := strconv.ParseUint(body[i+2:i+4], 16, 8)
			if err != nil {
				return "", false
			}
			writeUnit(rune(v))
			i += 4
			continue
		case 'u':
			r, width, ok := unicodeEscape(body[i+2:])
			if !ok {
				return "", false
			}
			writeUnit(r)
			i += 2 + width
			continue
		default:
			r, size := utf8.DecodeRuneInString(body[i+1:])
			if r == '\u2028' || r == '\u2029' {
				i += 1 + size
				continue
			}
			flushHigh()
			b.WriteRune(r)
			i += 1 + size
			continue
		}
		i += 2
	}
	flushHigh()
	return b.String(), true
}

// unicodeEscape decodes the part of a \u escape after the `u`: either four
// hex digits or a braced code point. It returns the code unit or point and
// the number of bytes consumed.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 4, true
}
