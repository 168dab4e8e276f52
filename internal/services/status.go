/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"strings"

	"github.com/HamedShams/board-pulse/internal/domain"
)

// UpdateStatus writes the Status field on an already-resolved board item.
// The caller supplies the catalog (typically from ResolveProjectItem or a
// bulk listing). Every successful Status write derives its lifecycle date
// here, so explicit updates, automatic close and automatic reopen all stamp
// exactly once without duplicating the logic at each call site.
func (s *Service) UpdateStatus(ctx context.Context, projectID, itemID, statusValue string, catalog domain.FieldCatalog) domain.UpdateResult {
	resolved, ok := ResolveFieldName("Status", catalog)
	if !ok {
		return domain.Failed(domain.ReasonFieldNotFound, "tried: "+strings.Join(fallbacksTried("Status"), ", "))
	}
	def := catalog[resolved]
	optID, ok := def.OptionID(statusValue)
	if !ok {
		return domain.Failed(domain.ReasonOptionNotFound, "valid options: "+strings.Join(def.OptionNames(), ", "))
	}
	if err := s.gh.UpdateItemFieldOption(ctx, projectID, itemID, def.ID, optID); err != nil {
		return domain.Failed(domain.ReasonUpdateFailed, err.Error())
	}
	s.AutoSetTimestamps(ctx, projectID, itemID, statusValue, catalog)
	return domain.OK()
}

// ResolveAndUpdateStatus is the high-level entry point: locate the board item
// for a tracker issue, then update its Status.
func (s *Service) ResolveAndUpdateStatus(ctx context.Context, owner, repo string, number int, statusValue string) domain.UpdateResult {
	loc, res := s.ResolveProjectItem(ctx, owner, repo, number, s.cfg.ProjectName)
	if !res.Success { return res }
	return s.UpdateStatus(ctx, loc.ProjectID, loc.ItemID, statusValue, loc.Catalog)
}
