/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"fmt"

	"github.com/HamedShams/board-pulse/internal/domain"
)

var (
	DefaultTerminalStatuses = []string{"Done", "Released"}
	DefaultPreWorkStatuses  = []string{"Backlog", "Icebox", "Planning", "Spec Review", "Ready"}
)

func toSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals { m[v] = true }
	return m
}

// ClassifyInconsistencies compares tracker state against board Status for a
// batch of issues. Pure: findings are data, never applied; remediation is the
// explicitly invoked fix step. Issues without a linked item or without a
// Status have nothing to compare and are excluded. Nil status sets fall back
// to the defaults.
//
// Open issue with a terminal Status is an error: the board says the work is
// complete, the issue should be closed. Closed issue with a Status outside
// both the terminal and pre-work sets is an error: it retains an in-progress
// Status and should be Done. Closed issue with a pre-work Status is info
// only, since closing before starting can be intentional (duplicate,
// won't-fix).
func ClassifyInconsistencies(issues []domain.Issue, terminalStatuses, preWorkStatuses []string) []domain.Inconsistency {
	if len(terminalStatuses) == 0 { terminalStatuses = DefaultTerminalStatuses }
	if len(preWorkStatuses) == 0 { preWorkStatuses = DefaultPreWorkStatuses }
	terminal := toSet(terminalStatuses)
	preWork := toSet(preWorkStatuses)

	var out []domain.Inconsistency
	for _, iss := range issues {
		if iss.Item == nil || iss.Item.Status.Empty() { continue }
		status := iss.Item.Status.Name
		finding := domain.Inconsistency{
			Number:        iss.Number,
			IssueState:    iss.State,
			ProjectStatus: status,
			IssueID:       iss.ID,
			ItemID:        iss.Item.ID,
			ProjectID:     iss.Item.ProjectID,
		}
		switch iss.State {
		case domain.IssueStateOpen:
			if !terminal[status] { continue }
			finding.Severity = domain.SeverityError
			finding.Description = fmt.Sprintf("issue is open but Status %q marks it complete; close the issue", status)
		case domain.IssueStateClosed:
			if terminal[status] { continue }
			if preWork[status] {
				finding.Severity = domain.SeverityInfo
				finding.Description = fmt.Sprintf("issue was closed before work started (Status %q); fine for duplicates and won't-fix", status)
			} else {
				finding.Severity = domain.SeverityError
				finding.Description = fmt.Sprintf("closed issue retains in-progress Status %q; should be Done", status)
			}
		default:
			continue
		}
		out = append(out, finding)
	}
	return out
}
