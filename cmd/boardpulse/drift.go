/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"fmt"

	"github.com/HamedShams/board-pulse/internal/domain"
	"github.com/HamedShams/board-pulse/internal/services"
	"github.com/spf13/cobra"
)

func countErrors(findings []domain.Inconsistency) int {
	n := 0
	for _, f := range findings {
		if f.Severity == domain.SeverityError { n++ }
	}
	return n
}

func newDriftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drift",
		Short: "Report tracker-state vs board-Status drift",
		Long:  "Point-in-time check; findings are reported, never applied. Exits nonzero when error-severity drift exists, for CI gates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(false)
			if err != nil { return err }
			rep, err := a.svc.RunDriftAudit(cmd.Context())
			if err != nil { return err }
			fmt.Print(services.RenderAudit(rep))
			if n := countErrors(rep.Findings) + countErrors(rep.MetricsFindings); n > 0 {
				return fmt.Errorf("%d error-severity finding(s); run 'boardpulse fix' to remediate status drift", n)
			}
			return nil
		},
	}
}

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Report missing or stale lifecycle timestamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(false)
			if err != nil { return err }
			rep, err := a.svc.RunDriftAudit(cmd.Context())
			if err != nil { return err }
			if len(rep.MetricsFindings) == 0 {
				fmt.Printf("scanned %d issues, no metrics drift\n", rep.IssuesScanned)
				return nil
			}
			for _, f := range rep.MetricsFindings {
				fmt.Printf("#%d [%s] %s\n", f.Number, f.Severity, f.Description)
			}
			if n := countErrors(rep.MetricsFindings); n > 0 {
				return fmt.Errorf("%d issue(s) missing lifecycle timestamps", n)
			}
			return nil
		},
	}
}

func newFixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix",
		Short: "Remediate error-severity status drift",
		Long:  "Closes open issues whose board Status is terminal, and moves closed issues with an in-progress Status to Done. Info findings are left alone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(false)
			if err != nil { return err }
			rep, err := a.svc.RunDriftAudit(cmd.Context())
			if err != nil { return err }
			outcomes := a.svc.FixInconsistencies(cmd.Context(), rep.Findings)
			if len(outcomes) == 0 {
				fmt.Printf("scanned %d issues, nothing to fix\n", rep.IssuesScanned)
				return nil
			}
			failed := 0
			for _, o := range outcomes {
				mark := "ok"
				if !o.Success { mark = "FAILED: " + o.Message; failed++ }
				fmt.Printf("#%d %s: %s\n", o.Number, o.Action, mark)
			}
			if failed > 0 { return fmt.Errorf("%d fix action(s) failed", failed) }
			return nil
		},
	}
}
