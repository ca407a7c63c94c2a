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
	"errors"
	"fmt"
)

// Sentinel errors for the script package.
var (
	// ErrNoProgram is returned when the parser produced no program tree.
	ErrNoProgram = errors.New("script parser returned no program")

	// ErrSyntax is returned when the script does not parse cleanly.
	ErrSyntax = errors.New("script syntax error")

	// ErrFileTooLarge is returned when the script exceeds the size limit.
	ErrFileTooLarge = errors.New("script too large")

	// ErrNoDeclaration is returned when no top-level declarator binds the name.
	ErrNoDeclaration = errors.New("no such declaration could be found")

	// ErrNoInitializer is returned when the declarator has no init expression.
	ErrNoInitializer = errors.New("the declaration does not have init expression")

	// ErrNotArray is returned when the initializer is not an array literal.
	ErrNotArray = errors.New("init expression is not an array")

	// ErrSparseOrSpread is returned when an array initializer has holes or
	// spread elements.
	ErrSparseOrSpread = errors.New("init expression contains empty slots and/or spread operators")
)

// ParseError locates a syntax error in the script source.
type ParseError struct {
	// Line is 1-based.
	Line int

	// Column is 0-based, in bytes.
	Column int

	// Snippet is the offending source, truncated.
	Snippet string
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at %d:%d near %q", ErrSyntax, e.Line, e.Column, e.Snippet)
}

// Unwrap returns ErrSyntax for errors.Is support.
func (e *ParseError) Unwrap() error {
	return ErrSyntax
}
