// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RegionResult is the named Status of one region.
type RegionResult struct {
	Name   string
	Status Status
}

// Report holds the classification of both tracked regions.
//
// It marshals to a JSON object keyed by region name, acknowledgements
// first:
//
//	{"specialThanks":{"diffAction":"keep","reason":"..."},"patreon":{...}}
type Report struct {
	Acknowledgements RegionResult
	Roster           RegionResult
}

// Results returns both regions in report order.
func (r *Report) Results() []RegionResult {
	return []RegionResult{r.Acknowledgements, r.Roster}
}

// Validate checks that both statuses are complete.
func (r *Report) Validate() error {
	for _, res := range r.Results() {
		if err := res.Status.Validate(); err != nil {
			return fmt.Errorf("region %s: %w", res.Name, err)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, res := range r.Results() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(res.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(res.Status)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
