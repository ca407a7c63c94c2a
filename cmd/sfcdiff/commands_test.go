// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/sfcdiff/pkg/ux"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/classify"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/compare"
)

const component = `<template>
<MkStickyContainer>
	<div>
		<MkSpacer>
			<div>
				<FormSection>
					<template #label>{{ i18n.ts._aboutMisskey.patrons }}</template>
					<div v-for="p in patronsWithIcon"><img :src="p.icon"></div>
					<div v-for="p in patrons">{{ p }}</div>
				</FormSection>
			</div>
		</MkSpacer>
	</div>
</MkStickyContainer>
</template>
<script setup>
const patronsWithIcon = [{ name: 'Alice', icon: 'a.png' }];
const patrons = ['Bob'];
</script>
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SFCDIFF_CONFIG", "")
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")

	saved := ux.GetPersonality()
	t.Cleanup(func() { ux.SetPersonality(saved) })

	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeRevisions(t *testing.T, older, newer string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.vue")
	newPath := filepath.Join(dir, "new.vue")
	require.NoError(t, os.WriteFile(oldPath, []byte(older), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte(newer), 0o644))
	return oldPath, newPath
}

func TestCompare_JSONOnNonTerminal(t *testing.T) {
	oldPath, newPath := writeRevisions(t, component, strings.Replace(component, "'Bob'", "'Bob', 'Carol'", 1))

	stdout, _, err := execute(t, "compare", "--old", oldPath, "--new", newPath)
	require.NoError(t, err)

	var got map[string]classify.Status
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, classify.ActionKeep, got["specialThanks"].DiffAction)
	assert.Equal(t, classify.ActionDrop, got["patreon"].DiffAction)
	assert.Equal(t, "patreon update", got["patreon"].Reason)

	assert.Less(t, strings.Index(stdout, `"specialThanks"`), strings.Index(stdout, `"patreon"`))
}

func TestCompare_OutFile(t *testing.T) {
	oldPath, newPath := writeRevisions(t, component, component)
	out := filepath.Join(t.TempDir(), "report.json")

	stdout, _, err := execute(t, "compare", "--old", oldPath, "--new", newPath, "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"diffAction": "keep"`)
}

func TestCompare_Errors(t *testing.T) {
	oldPath, _ := writeRevisions(t, component, component)

	_, _, err := execute(t, "compare", "--old", oldPath)
	assert.Error(t, err, "missing --new")

	_, _, err = execute(t, "compare", "--old", oldPath, "--new", filepath.Dir(oldPath))
	assert.ErrorIs(t, err, sfcdiff.ErrIsDirectory)
}

func TestCompare_UnsupportedExpression(t *testing.T) {
	src := strings.Replace(component, "'Bob'", "bob", 1)
	oldPath, newPath := writeRevisions(t, src, src)

	_, _, err := execute(t, "compare", "--old", oldPath, "--new", newPath)
	assert.ErrorIs(t, err, compare.ErrUnsupportedExpression)
}

func TestCompare_InvalidLogLevel(t *testing.T) {
	oldPath, newPath := writeRevisions(t, component, component)
	_, _, err := execute(t, "compare", "--old", oldPath, "--new", newPath, "--log-level", "loud")
	assert.Error(t, err)
}

func TestPrintReport_Machine(t *testing.T) {
	saved := ux.GetPersonality()
	t.Cleanup(func() { ux.SetPersonality(saved) })
	ux.SetPersonality(ux.Personality{Level: ux.PersonalityMachine})

	report := &classify.Report{
		Acknowledgements: classify.RegionResult{
			Name:   "specialThanks",
			Status: classify.Status{DiffAction: classify.ActionDrop, Reason: "special thanks update", Diff: &compare.ContentDiff{Added: 1}},
		},
		Roster: classify.RegionResult{
			Name:   "patreon",
			Status: classify.Status{DiffAction: classify.ActionLeft, Reason: "both container do not contain patreon section"},
		},
	}

	var buf bytes.Buffer
	printReport(ux.NewPrinter(&buf), report)
	assert.Equal(t,
		"specialThanks\tdrop\tspecial thanks update\n"+
			"DIFF: added=1 changed=0 deleted=0\n"+
			"patreon\tleft\tboth container do not contain patreon section\n"+
			"SUMMARY: keep=0 drop=1 left=1\n",
		buf.String())
}

func TestConfig_PrintsEffectiveYAML(t *testing.T) {
	stdout, _, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "specialThanks")
	assert.Contains(t, stdout, "FormSection")
	assert.Contains(t, stdout, "only-child")
}

func TestConfig_ExplicitOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sfcdiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regions:\n  roster:\n    name: contributors\n"), 0o644))

	stdout, _, err := execute(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "contributors")
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "config")
	assert.Error(t, err)
}
