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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/sfcdiff/pkg/ux"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff"
	"github.com/AleutianAI/sfcdiff/services/sfcdiff/classify"
)

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Classify the tracked regions of two revisions of a component",
		Example: `  sfcdiff compare --old base/about-misskey.vue --new theirs/about-misskey.vue
  sfcdiff compare --old a.vue --new b.vue --out result.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := sfcdiff.NewService(a.cfg)
			report, err := svc.CompareFiles(cmd.Context(), a.oldPath, a.newPath)
			if err != nil {
				return err
			}
			return a.writeReport(report)
		},
	}
	addRevisionFlags(cmd, a)
	cmd.Flags().StringVar(&a.outPath, "out", "", "write the JSON report to this file instead of stdout")
	cmd.Flags().BoolVar(&a.jsonOutput, "json", false, "print JSON even on a terminal")
	return cmd
}

func addRevisionFlags(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVar(&a.oldPath, "old", "", "component file before the change")
	cmd.Flags().StringVar(&a.newPath, "new", "", "component file after the change")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
}

// writeReport sends the report to --out, or prints it: styled on a
// terminal, JSON otherwise.
func (a *app) writeReport(report *classify.Report) error {
	if a.outPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if err := os.WriteFile(a.outPath, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		slog.Info("Report written", slog.String("path", a.outPath))
		return nil
	}

	if a.jsonOutput || !ux.IsTerminal(a.stdout) {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(ux.NewPrinter(a.stdout), report)
	return nil
}

func printReport(p *ux.Printer, report *classify.Report) {
	p.Title("Region decisions")

	counts := map[classify.Action]int{}
	for _, res := range report.Results() {
		st := res.Status
		counts[st.DiffAction]++
		p.Region(res.Name, string(st.DiffAction), st.Reason)
		if st.Diff != nil {
			p.DiffStat(st.Diff.Added, st.Diff.Changed, st.Diff.Deleted)
			p.Diff(st.Diff.Unified)
		}
	}
	p.Summary(counts[classify.ActionKeep], counts[classify.ActionDrop], counts[classify.ActionLeft])
}
