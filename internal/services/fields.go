/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"sort"
	"strings"

	"github.com/HamedShams/board-pulse/internal/domain"
)

// fieldNameFallbacks maps a logical field name to the names users typically
// create instead when the platform reserves the literal one. "Type" is
// reserved on the host platform, so boards carry "Item Type" or "Issue Type".
var fieldNameFallbacks = map[string][]string{
	"Type": {"Item Type", "Issue Type"},
}

// FieldCatalog fetches a project's field definitions keyed by declared name.
// It never fails: on transport error the catalog is empty and callers skip
// field writes with their usual diagnostics.
func (s *Service) FieldCatalog(ctx context.Context, projectID string) domain.FieldCatalog {
	defs, err := s.gh.ProjectFields(ctx, projectID)
	if err != nil {
		s.log.Warn().Err(err).Str("project", projectID).Msg("field catalog fetch failed; using empty catalog")
		return domain.FieldCatalog{}
	}
	cat := make(domain.FieldCatalog, len(defs))
	for _, d := range defs { cat[d.Name] = d }
	return cat
}

// ResolveFieldName resolves a requested logical field name against the
// catalog: direct lookup first, then the reserved-name fallback table.
func ResolveFieldName(name string, catalog domain.FieldCatalog) (string, bool) {
	if _, ok := catalog[name]; ok { return name, true }
	for _, fb := range fieldNameFallbacks[name] {
		if _, ok := catalog[fb]; ok { return fb, true }
	}
	return "", false
}

// fallbacksTried lists every name a lookup attempted, for diagnostics.
func fallbacksTried(name string) []string {
	return append([]string{name}, fieldNameFallbacks[name]...)
}

// SetFields writes name/value pairs to a board item and returns how many
// fields were written. Updates are independent and non-transactional: an
// unresolved name or invalid value is logged with its remediation detail and
// skipped, never blocking the remaining fields. Passing a nil catalog fetches
// one; callers doing several writes should thread a single catalog through.
func (s *Service) SetFields(ctx context.Context, projectID, itemID string, fields map[string]string, catalog domain.FieldCatalog) int {
	if catalog == nil { catalog = s.FieldCatalog(ctx, projectID) }
	names := make([]string, 0, len(fields))
	for name := range fields { names = append(names, name) }
	sort.Strings(names)

	count := 0
	for _, name := range names {
		value := fields[name]
		resolved, ok := ResolveFieldName(name, catalog)
		if !ok {
			s.log.Warn().Str("field", name).Strs("tried", fallbacksTried(name)).Msg("field not found on project; skipping")
			continue
		}
		def := catalog[resolved]
		if def.Type == domain.FieldTypeText {
			if err := s.gh.UpdateItemFieldText(ctx, projectID, itemID, def.ID, value); err != nil {
				s.log.Warn().Err(err).Str("field", resolved).Msg("field update failed; skipping")
				continue
			}
			count++
			continue
		}
		optID, ok := def.OptionID(value)
		if !ok {
			s.log.Warn().Str("field", resolved).Str("value", value).
				Str("valid", strings.Join(def.OptionNames(), ", ")).
				Msg("invalid value for field; skipping")
			continue
		}
		if err := s.gh.UpdateItemFieldOption(ctx, projectID, itemID, def.ID, optID); err != nil {
			s.log.Warn().Err(err).Str("field", resolved).Msg("field update failed; skipping")
			continue
		}
		count++
		// Every successful Status write derives its lifecycle date, same as
		// UpdateStatus does.
		if resolved == "Status" { s.AutoSetTimestamps(ctx, projectID, itemID, value, catalog) }
	}
	return count
}
