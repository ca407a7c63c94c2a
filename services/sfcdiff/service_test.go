// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sfcdiff

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/sfcdiff/services/sfcdiff/classify"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/config"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/markup"
)

const aboutPage = `<template>
<MkStickyContainer>
	<div>
		<MkSpacer :contentMax="600">
			<div class="_gaps_m">
				<FormSection>
					<template #label>Special thanks</template>
					<a href="https://example.com">Example</a>
				</FormSection>
				<FormSection>
					<template #label>{{ i18n.ts._aboutMisskey.patrons }}</template>
					<div v-for="patron in patronsWithIcon" :key="patron.name">
						<img :src="patron.icon">
						<span>{{ patron.name }}</span>
					</div>
					<div v-for="patron in patrons" :key="patron">{{ patron }}</div>
				</FormSection>
			</div>
		</MkSpacer>
	</div>
</MkStickyContainer>
</template>

<script lang="ts" setup>
const patronsWithIcon = [{ name: 'Alice', icon: 'https://example.com/alice.png' }];
const patrons = ['Carol', 'Dave'];
</script>
`

func newService(t *testing.T) *Service {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return NewService(cfg)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompareFiles_Identical(t *testing.T) {
	dir := t.TempDir()
	older := writeFile(t, dir, "old.vue", aboutPage)
	newer := writeFile(t, dir, "new.vue", aboutPage)

	report, err := newService(t).CompareFiles(context.Background(), older, newer)
	require.NoError(t, err)

	for _, res := range report.Results() {
		assert.Equal(t, classify.ActionKeep, res.Status.DiffAction, res.Name)
	}
}

func TestCompareFiles_RosterChanged(t *testing.T) {
	dir := t.TempDir()
	older := writeFile(t, dir, "old.vue", aboutPage)
	newer := writeFile(t, dir, "new.vue", strings.Replace(aboutPage, "'Dave'", "'Dave', 'Erin'", 1))

	report, err := newService(t).CompareFiles(context.Background(), older, newer)
	require.NoError(t, err)

	assert.Equal(t, classify.ActionKeep, report.Acknowledgements.Status.DiffAction)
	assert.Equal(t, classify.ActionDrop, report.Roster.Status.DiffAction)
	assert.Equal(t, "patreon update", report.Roster.Status.Reason)
}

func TestCompareFiles_RunIDOnClassifierLogs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	older := writeFile(t, dir, "old.vue", aboutPage)
	newer := writeFile(t, dir, "new.vue", strings.Replace(aboutPage, "'Dave'", "'Dave', 'Erin'", 1))

	_, err := newService(t).CompareFiles(context.Background(), older, newer)
	require.NoError(t, err)

	runIDs := map[string]bool{}
	classified := 0
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		if rec["msg"] != "Region classified" {
			continue
		}
		classified++
		id, ok := rec["run_id"].(string)
		require.True(t, ok, "record without run_id: %s", scanner.Text())
		runIDs[id] = true
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, classified)
	assert.Len(t, runIDs, 1)
}

func TestCompareFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.vue", aboutPage)

	tests := []struct {
		name    string
		oldPath string
		newPath string
		want    error
	}{
		{"directory", good, dir, ErrIsDirectory},
		{"missing", filepath.Join(dir, "missing.vue"), good, fs.ErrNotExist},
		{"empty", "", good, ErrEmptyPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(t).CompareFiles(context.Background(), tt.oldPath, tt.newPath)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompareFiles_TooLarge(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Limits.MaxFileSize = 64

	dir := t.TempDir()
	path := writeFile(t, dir, "big.vue", aboutPage)

	_, err = NewService(cfg).CompareFiles(context.Background(), path, path)
	assert.ErrorIs(t, err, markup.ErrFileTooLarge)
}

func TestCompareSources(t *testing.T) {
	svc := newService(t)
	newer := strings.Replace(aboutPage, "Example</a>", "Example</a>\n\t\t\t\t\t<a href=\"https://example.org\">Other</a>", 1)

	report, err := svc.CompareSources(context.Background(), []byte(aboutPage), []byte(newer))
	require.NoError(t, err)

	ack := report.Acknowledgements.Status
	assert.Equal(t, classify.ActionDrop, ack.DiffAction)
	require.NotNil(t, ack.Diff)
	assert.Equal(t, 1, ack.Diff.Added)
	assert.Equal(t, classify.ActionKeep, report.Roster.Status.DiffAction)
}

func TestCompareSources_InvalidUTF8(t *testing.T) {
	_, err := newService(t).CompareSources(context.Background(), []byte{0xff, 0xfe}, []byte(aboutPage))
	assert.ErrorIs(t, err, markup.ErrInvalidContent)
}
