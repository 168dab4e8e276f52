/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/HamedShams/board-pulse/internal/domain"
)

const dateLayout = "2006-01-02"

// inProgressStatus gets the staleness check; every other mapped status is a
// completion stamp checked for presence.
const inProgressStatus = "In Progress"

// ClassifyMetricsInconsistencies flags missing or stale lifecycle timestamps.
// Pure over pre-fetched data: textFieldValues maps item id to the item's
// text-typed field values. Malformed date text counts as no timestamp, never
// an error raised to the caller. A completed issue (its Status maps to a
// completion date field) with an empty stamp is an error since cycle-time
// metrics would undercount it; an issue In Progress longer than the stale
// threshold is info.
func ClassifyMetricsInconsistencies(issues []domain.Issue, textFieldValues map[string]map[string]string, cfg domain.MetricsConfig, now time.Time) []domain.Inconsistency {
	if now.IsZero() { now = time.Now().UTC() }
	staleDays := cfg.StaleThresholdDays
	if staleDays <= 0 { staleDays = 14 }

	var out []domain.Inconsistency
	for _, iss := range issues {
		if iss.Item == nil || iss.Item.Status.Empty() { continue }
		status := iss.Item.Status.Name
		fieldName, ok := cfg.FieldFor(status)
		if !ok { continue }

		raw := strings.TrimSpace(textFieldValues[iss.Item.ID][fieldName])
		stamped, parseErr := time.Parse(dateLayout, raw)
		hasDate := raw != "" && parseErr == nil

		finding := domain.Inconsistency{
			Number:        iss.Number,
			IssueState:    iss.State,
			ProjectStatus: status,
			Field:         fieldName,
			IssueID:       iss.ID,
			ItemID:        iss.Item.ID,
			ProjectID:     iss.Item.ProjectID,
		}
		if status == inProgressStatus {
			if !hasDate { continue }
			if now.Sub(stamped) <= time.Duration(staleDays)*24*time.Hour { continue }
			finding.Severity = domain.SeverityInfo
			finding.Description = fmt.Sprintf("issue has been in progress for more than %d days (since %s)", staleDays, raw)
		} else {
			if hasDate { continue }
			finding.Severity = domain.SeverityError
			finding.Description = fmt.Sprintf("completed issue is missing %q; cycle-time metrics will undercount", fieldName)
		}
		out = append(out, finding)
	}
	return out
}
