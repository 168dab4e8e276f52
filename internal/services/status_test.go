package services

import (
	"context"
	"errors"
	"testing"

	"github.com/HamedShams/board-pulse/internal/domain"
)

func boardIssue(number int, state domain.IssueState, status string) *domain.Issue {
	return &domain.Issue{
		ID:     "node-7",
		Number: number,
		State:  state,
		LinkedItems: []domain.ProjectItem{{
			ID:           "item-7",
			ProjectID:    "p1",
			ProjectTitle: "demo",
			Status:       domain.SelectValue{Name: status, OptionID: "o-" + status},
		}},
	}
}

func TestResolveProjectItem_MatchesProjectByRepoTitle(t *testing.T) {
	gh := &fakeGitHub{
		projects: []domain.Project{{ID: "p0", Title: "roadmap"}, {ID: "p1", Title: "demo"}},
		fields:   map[string][]domain.FieldDefinition{"p1": boardFields()},
		issues:   map[int]*domain.Issue{7: boardIssue(7, domain.IssueStateOpen, "Backlog")},
	}
	svc := newTestService(gh)

	loc, res := svc.ResolveProjectItem(context.Background(), "octo", "demo", 7, "")
	if !res.Success { t.Fatalf("resolve failed: %+v", res) }
	if loc.ProjectID != "p1" || loc.ItemID != "item-7" { t.Fatalf("wrong location: %+v", loc) }
	if _, ok := loc.Catalog["Status"]; !ok { t.Fatalf("catalog not threaded: %+v", loc.Catalog) }
	if gh.fieldsCalls != 1 { t.Fatalf("expected one catalog fetch, got %d", gh.fieldsCalls) }
}

func TestResolveProjectItem_DistinctReasonsForMissingProjectAndItem(t *testing.T) {
	gh := &fakeGitHub{
		issues: map[int]*domain.Issue{7: {ID: "node-7", Number: 7}},
	}
	svc := newTestService(gh)

	_, res := svc.ResolveProjectItem(context.Background(), "octo", "demo", 7, "")
	if res.Success || res.Reason != domain.ReasonNoProject {
		t.Fatalf("expected no-project, got %+v", res)
	}
	if res.Reason.Hint() == "" { t.Fatalf("no-project should carry a remediation hint") }

	gh.projects = []domain.Project{{ID: "p1", Title: "demo"}}
	gh.fields = map[string][]domain.FieldDefinition{"p1": boardFields()}
	_, res = svc.ResolveProjectItem(context.Background(), "octo", "demo", 7, "")
	if res.Success || res.Reason != domain.ReasonNoItem {
		t.Fatalf("expected no-item, got %+v", res)
	}
}

func TestResolveProjectItem_TransportErrorIsUpdateFailed(t *testing.T) {
	gh := &fakeGitHub{errProjects: errors.New("502 bad gateway")}
	svc := newTestService(gh)

	_, res := svc.ResolveProjectItem(context.Background(), "octo", "demo", 7, "")
	if res.Reason != domain.ReasonUpdateFailed || res.Message == "" {
		t.Fatalf("expected update-failed with message, got %+v", res)
	}
}

func TestUpdateStatus_WritesOptionThenStampsDate(t *testing.T) {
	gh := &fakeGitHub{fields: map[string][]domain.FieldDefinition{"p1": boardFields()}}
	svc := newTestService(gh)
	cat := catalogOf(boardFields())

	res := svc.UpdateStatus(context.Background(), "p1", "item-7", "Done", cat)
	if !res.Success { t.Fatalf("update failed: %+v", res) }
	if len(gh.optionWrites) != 1 { t.Fatalf("expected one option write, got %#v", gh.optionWrites) }
	w := gh.optionWrites[0]
	if w.fieldID != "f-status" || w.optionID != "o-done" { t.Fatalf("wrong write: %#v", w) }
	// Done maps to Completed At, stamped in the same operation.
	if len(gh.textWrites) != 1 || gh.textWrites[0].fieldID != "f-completed" {
		t.Fatalf("expected Completed At stamp, got %#v", gh.textWrites)
	}
}

func TestUpdateStatus_UnknownOptionListsValidOnes(t *testing.T) {
	gh := &fakeGitHub{}
	svc := newTestService(gh)

	res := svc.UpdateStatus(context.Background(), "p1", "item-7", "Shipped", catalogOf(boardFields()))
	if res.Success || res.Reason != domain.ReasonOptionNotFound {
		t.Fatalf("expected option-not-found, got %+v", res)
	}
	// Sorted so the operator can scan the real choices.
	want := "valid options: Backlog, Done, In Progress"
	if res.Message != want { t.Fatalf("expected %q, got %q", want, res.Message) }
	if len(gh.optionWrites) != 0 { t.Fatalf("should not write on bad option") }
}

func TestUpdateStatus_MissingStatusField(t *testing.T) {
	svc := newTestService(&fakeGitHub{})

	res := svc.UpdateStatus(context.Background(), "p1", "item-7", "Done", domain.FieldCatalog{})
	if res.Reason != domain.ReasonFieldNotFound { t.Fatalf("expected field-not-found, got %+v", res) }
}

func TestUpdateStatus_MutationErrorSurfacesAsUpdateFailed(t *testing.T) {
	gh := &fakeGitHub{errOptionWrite: errors.New("GraphQL: item archived")}
	svc := newTestService(gh)

	res := svc.UpdateStatus(context.Background(), "p1", "item-7", "Done", catalogOf(boardFields()))
	if res.Reason != domain.ReasonUpdateFailed { t.Fatalf("expected update-failed, got %+v", res) }
	if res.Message != "GraphQL: item archived" { t.Fatalf("transport detail lost: %q", res.Message) }
	// No timestamp on a failed Status write.
	if len(gh.textWrites) != 0 { t.Fatalf("stamped despite failed write: %#v", gh.textWrites) }
}

func TestResolveAndUpdateStatus_EndToEnd(t *testing.T) {
	gh := &fakeGitHub{
		projects: []domain.Project{{ID: "p1", Title: "demo"}},
		fields:   map[string][]domain.FieldDefinition{"p1": boardFields()},
		issues:   map[int]*domain.Issue{7: boardIssue(7, domain.IssueStateOpen, "Backlog")},
	}
	svc := newTestService(gh)

	res := svc.ResolveAndUpdateStatus(context.Background(), "octo", "demo", 7, "In Progress")
	if !res.Success { t.Fatalf("expected success, got %+v", res) }
	if len(gh.optionWrites) != 1 || gh.optionWrites[0].optionID != "o-progress" {
		t.Fatalf("wrong status write: %#v", gh.optionWrites)
	}
	// In Progress maps to In Progress At.
	if len(gh.textWrites) != 1 || gh.textWrites[0].fieldID != "f-started" {
		t.Fatalf("expected In Progress At stamp, got %#v", gh.textWrites)
	}
	// Resolve fetched the catalog once; UpdateStatus reused it.
	if gh.fieldsCalls != 1 { t.Fatalf("catalog fetched %d times", gh.fieldsCalls) }
}

func TestFixInconsistencies_OneWritePerErrorFinding(t *testing.T) {
	gh := &fakeGitHub{fields: map[string][]domain.FieldDefinition{"p1": boardFields()}}
	svc := newTestService(gh)

	findings := []domain.Inconsistency{
		{Number: 1, Severity: domain.SeverityError, IssueState: domain.IssueStateOpen, ProjectStatus: "Done", IssueID: "n1", ItemID: "i1", ProjectID: "p1"},
		{Number: 2, Severity: domain.SeverityError, IssueState: domain.IssueStateClosed, ProjectStatus: "In Progress", IssueID: "n2", ItemID: "i2", ProjectID: "p1"},
		{Number: 3, Severity: domain.SeverityInfo, IssueState: domain.IssueStateClosed, ProjectStatus: "Backlog", IssueID: "n3", ItemID: "i3", ProjectID: "p1"},
		// metrics finding, identified by Field: never auto-fixed
		{Number: 4, Severity: domain.SeverityError, Field: "Completed At", IssueID: "n4", ItemID: "i4", ProjectID: "p1"},
	}

	out := svc.FixInconsistencies(context.Background(), findings)
	if len(out) != 2 { t.Fatalf("expected 2 outcomes, got %#v", out) }
	if out[0].Action != "close-issue" || !out[0].Success { t.Fatalf("bad outcome: %+v", out[0]) }
	if out[1].Action != "set-status-Done" || !out[1].Success { t.Fatalf("bad outcome: %+v", out[1]) }

	if len(gh.closed) != 1 || gh.closed[0] != "n1" { t.Fatalf("wrong close: %#v", gh.closed) }
	if len(gh.optionWrites) != 1 || gh.optionWrites[0].itemID != "i2" || gh.optionWrites[0].optionID != "o-done" {
		t.Fatalf("wrong status fix: %#v", gh.optionWrites)
	}
}
