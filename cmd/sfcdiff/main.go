// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sfcdiff classifies how a merge should treat the tracked regions
// of a single-file component that changed between two revisions.
//
// Usage:
//
//	sfcdiff compare --old base/about-misskey.vue --new theirs/about-misskey.vue
//	sfcdiff compare --old a.vue --new b.vue --out result.json
//	sfcdiff watch --old a.vue --new b.vue --metrics-addr :9090
//	sfcdiff config
package main

import (
	"os"

	"github.com/AleutianAI/sfcdiff/pkg/ux"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		ux.NewPrinter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}
