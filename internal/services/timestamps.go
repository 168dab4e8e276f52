/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"strings"
	"time"

	"github.com/HamedShams/board-pulse/internal/domain"
)

// AutoSetTimestamps records the date an item entered newStatus into the
// mapped lifecycle date field. Best-effort and silent on expected no-ops:
// most statuses map to nothing, and a board without the date field just has
// not run metrics setup yet. A previously recorded date is never overwritten.
func (s *Service) AutoSetTimestamps(ctx context.Context, projectID, itemID, newStatus string, catalog domain.FieldCatalog) {
	fieldName, ok := s.cfg.Metrics.FieldFor(newStatus)
	if !ok { return }
	def, ok := catalog[fieldName]
	if !ok {
		s.log.Debug().Str("field", fieldName).Str("status", newStatus).Msg("date field not on project; skipping auto-stamp")
		return
	}
	cur, err := s.gh.ItemFieldText(ctx, itemID, fieldName)
	if err != nil {
		s.log.Debug().Err(err).Str("field", fieldName).Msg("date field read failed; skipping auto-stamp")
		return
	}
	if strings.TrimSpace(cur) != "" { return }
	today := time.Now().UTC().Format("2006-01-02")
	if err := s.gh.UpdateItemFieldText(ctx, projectID, itemID, def.ID, today); err != nil {
		s.log.Warn().Err(err).Str("field", fieldName).Msg("auto-stamp write failed")
		return
	}
	s.log.Info().Str("field", fieldName).Str("date", today).Str("status", newStatus).Msg("auto-stamped lifecycle date")
}
