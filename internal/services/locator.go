/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"fmt"

	"github.com/HamedShams/board-pulse/internal/domain"
)

// ResolveProjectItem resolves (owner, repo, issue number) to the board item
// and its field catalog. no-project and no-item are distinct reasons because
// their remediation differs: create/link a project vs. add the issue to the
// existing one. A wrong-project fallback would cause confusing writes, so
// both fallbacks are observable as warnings rather than silent.
func (s *Service) ResolveProjectItem(ctx context.Context, owner, repo string, number int, projectOverride string) (*domain.ItemLocation, domain.UpdateResult) {
	wantTitle := repo
	if projectOverride != "" { wantTitle = projectOverride }

	projects, err := s.gh.ProjectsForOwner(ctx, owner)
	if err != nil { return nil, domain.Failed(domain.ReasonUpdateFailed, err.Error()) }
	var project *domain.Project
	for i := range projects {
		if projects[i].Title == wantTitle { project = &projects[i]; break }
	}
	if project == nil && len(projects) > 0 {
		project = &projects[0]
		s.log.Warn().Str("want", wantTitle).Str("using", project.Title).Msg("no project titled after repository; falling back to first project")
	}
	if project == nil {
		return nil, domain.Failed(domain.ReasonNoProject, fmt.Sprintf("owner %s has no projects", owner))
	}

	iss, err := s.gh.IssueWithItems(ctx, owner, repo, number)
	if err != nil { return nil, domain.Failed(domain.ReasonUpdateFailed, err.Error()) }
	item := matchingItem(*iss, wantTitle)
	if item == nil {
		return nil, domain.Failed(domain.ReasonNoItem, fmt.Sprintf("issue #%d is not on any project board", number))
	}
	if item.ProjectTitle != wantTitle {
		s.log.Warn().Int("issue", number).Str("project", item.ProjectTitle).Msg("no item on the expected project; using first linked item")
	}

	// Fetch the catalog once here so later writes in this operation reuse it.
	catalog := s.FieldCatalog(ctx, item.ProjectID)
	return &domain.ItemLocation{ProjectID: item.ProjectID, ItemID: item.ID, Catalog: catalog}, domain.OK()
}
