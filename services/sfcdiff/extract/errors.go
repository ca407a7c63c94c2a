// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import "errors"

var (
	// ErrPatternNotFound is returned when a region that was located does not
	// have the inner structure the roster extraction relies on.
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrWrongNodeKind is returned when a node has an unexpected kind, such
	// as an iteration source that is not a plain identifier.
	ErrWrongNodeKind = errors.New("wrong node kind")
)
