// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package compare decides whether two revisions of a region are definitely
// different.
//
// The comparison is conservative: a "different" answer is always backed by a
// concrete difference, while "not proven different" may hide one the rules
// cannot see. Node kinds without a rule are refused with
// ErrUnsupportedExpression instead of being guessed at.
package compare

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/script"
)

// ErrUnsupportedExpression is returned for expression kinds the comparator
// has no rule for.
var ErrUnsupportedExpression = errors.New("unsupported expression kind")

// Verdict is the outcome of a conservative comparison.
type Verdict int

const (
	// NotProvenDifferent means no difference was found. It is not a proof
	// of equality.
	NotProvenDifferent Verdict = iota

	// Different means a difference was found.
	Different
)

func (v Verdict) String() string {
	if v == Different {
		return "different"
	}
	return "not-proven-different"
}

// Compare returns the verdict for two expressions.
//
// Description:
//
//	Rules, in order:
//	  - the same node on both sides is NotProvenDifferent;
//	  - nodes of different kinds are Different. Nodes with no named kind
//	    are told apart by their grammar node type;
//	  - object literals are Different when their property counts differ, or
//	    when some positional pair of directly initialized properties has
//	    Different values; pairs involving spreads, methods or destructuring
//	    patterns are skipped. Keys are not compared;
//	  - string literals are Different exactly when their values differ.
//
//	Any other kind fails with ErrUnsupportedExpression.
//
// Outputs:
//
//	Verdict - Different or NotProvenDifferent.
//	error   - ErrUnsupportedExpression, wrapped with the offending kind.
func Compare(left, right script.Node) (Verdict, error) {
	if left == right {
		return NotProvenDifferent, nil
	}
	if left == nil || right == nil {
		return NotProvenDifferent, fmt.Errorf("%w: missing expression", ErrUnsupportedExpression)
	}
	if left.Kind() != right.Kind() || otherTypesDiffer(left, right) {
		return Different, nil
	}

	switch l := left.(type) {
	case *script.ObjectExpression:
		return compareObjects(l, right.(*script.ObjectExpression))
	case *script.StringLiteral:
		if l.Value != right.(*script.StringLiteral).Value {
			return Different, nil
		}
		return NotProvenDifferent, nil
	default:
		return NotProvenDifferent, fmt.Errorf("%w: %s", ErrUnsupportedExpression, left.Kind())
	}
}

func compareObjects(l, r *script.ObjectExpression) (Verdict, error) {
	if sameSlice(l.Properties, r.Properties) {
		return NotProvenDifferent, nil
	}
	if len(l.Properties) != len(r.Properties) {
		return Different, nil
	}

	for i, lp := range l.Properties {
		rp := r.Properties[i]
		if !script.IsDirectlyInitialized(lp) || !script.IsDirectlyInitialized(rp) {
			continue
		}
		v, err := Compare(lp.(*script.ObjectProperty).Value, rp.(*script.ObjectProperty).Value)
		if err != nil {
			return NotProvenDifferent, fmt.Errorf("property %d: %w", i, err)
		}
		if v == Different {
			return Different, nil
		}
	}
	return NotProvenDifferent, nil
}

// otherTypesDiffer separates unnamed kinds by their grammar node type.
func otherTypesDiffer(left, right script.Node) bool {
	l, lok := left.(*script.Opaque)
	r, rok := right.(*script.Opaque)
	return lok && rok && l.NodeKind == script.KindOther && l.Type != r.Type
}

func sameSlice(a, b []script.Node) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}

// DefinitelyDifferent reports whether Compare finds a difference.
func DefinitelyDifferent(left, right script.Node) (bool, error) {
	v, err := Compare(left, right)
	return v == Different, err
}

// DefinitelyDifferentSequence compares two expression lists positionally.
//
// Lists of different lengths are different. Otherwise the result is true as
// soon as one pair is definitely different; two empty lists are never
// different.
func DefinitelyDifferentSequence(left, right []script.Node) (bool, error) {
	if len(left) != len(right) {
		return true, nil
	}
	for i := range left {
		diff, err := DefinitelyDifferent(left[i], right[i])
		if err != nil {
			return false, fmt.Errorf("element %d: %w", i, err)
		}
		if diff {
			return true, nil
		}
	}
	return false, nil
}
