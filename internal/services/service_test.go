package services

import (
	"context"
	"strings"
	"testing"

	"github.com/HamedShams/board-pulse/internal/domain"
	"github.com/rs/zerolog"
)

type fakeNotifier struct{ sent []string }

func (f *fakeNotifier) SendMessagePlain(ctx context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func auditFixture() []domain.Issue {
	done := issueWithStatus(1, domain.IssueStateClosed, "Done")
	done.Item.TextValues = map[string]string{"Completed At": "2026-02-01"}
	done.LinkedItems = []domain.ProjectItem{*done.Item}

	openDone := issueWithStatus(2, domain.IssueStateOpen, "Released")
	openDone.Item.TextValues = map[string]string{"Completed At": "2026-02-03"}
	openDone.LinkedItems = []domain.ProjectItem{*openDone.Item}

	missingStamp := issueWithStatus(3, domain.IssueStateClosed, "Done")
	missingStamp.Item.ID = "item-3"
	missingStamp.LinkedItems = []domain.ProjectItem{*missingStamp.Item}

	offBoard := domain.Issue{Number: 4, State: domain.IssueStateOpen}
	return []domain.Issue{done, openDone, missingStamp, offBoard}
}

func TestRunDriftAudit_ClassifiesAndStoresReport(t *testing.T) {
	gh := &fakeGitHub{listed: auditFixture()}
	svc := newTestService(gh)

	rep, err := svc.RunDriftAudit(context.Background())
	if err != nil { t.Fatalf("audit failed: %v", err) }
	if rep.IssuesScanned != 4 { t.Fatalf("expected 4 scanned, got %d", rep.IssuesScanned) }
	if len(rep.Findings) != 1 || rep.Findings[0].Number != 2 {
		t.Fatalf("expected one status finding for #2, got %#v", rep.Findings)
	}
	if len(rep.MetricsFindings) != 1 || rep.MetricsFindings[0].Number != 3 {
		t.Fatalf("expected one metrics finding for #3, got %#v", rep.MetricsFindings)
	}
	if got := svc.LastAudit(); got != rep { t.Fatalf("last audit not stored") }
}

func TestRunDriftAudit_NotifiesOnlyWhenThereAreFindings(t *testing.T) {
	tg := &fakeNotifier{}
	cfg := testConfig()
	cfg.TelegramChatIDs = []int64{100}
	gh := &fakeGitHub{listed: auditFixture()}
	svc := New(cfg, zerolog.Nop(), gh, tg)

	if _, err := svc.RunDriftAudit(context.Background()); err != nil { t.Fatal(err) }
	if len(tg.sent) != 1 { t.Fatalf("expected one notification, got %d", len(tg.sent)) }
	if !strings.Contains(tg.sent[0], "#2") || !strings.Contains(tg.sent[0], "#3") {
		t.Fatalf("notification misses findings: %q", tg.sent[0])
	}

	// Clean board: stay quiet.
	tg.sent = nil
	gh.listed = nil
	if _, err := svc.RunDriftAudit(context.Background()); err != nil { t.Fatal(err) }
	if len(tg.sent) != 0 { t.Fatalf("unexpected notification on clean audit: %q", tg.sent) }
}

func TestRenderAudit_ReportShape(t *testing.T) {
	gh := &fakeGitHub{listed: auditFixture()}
	svc := newTestService(gh)
	rep, _ := svc.RunDriftAudit(context.Background())

	out := RenderAudit(rep)
	if !strings.Contains(out, "octo/demo") { t.Fatalf("missing repo header: %q", out) }
	if !strings.Contains(out, "scanned 4 issues") { t.Fatalf("missing scan count: %q", out) }
	if !strings.Contains(out, "status drift (1)") || !strings.Contains(out, "metrics drift (1)") {
		t.Fatalf("missing sections: %q", out)
	}

	empty := RenderAudit(&AuditReport{Owner: "octo", Repo: "demo"})
	if !strings.Contains(empty, "no drift found") { t.Fatalf("empty report wrong: %q", empty) }
}

func TestMatchingItem_TitleConventionThenFirst(t *testing.T) {
	iss := domain.Issue{LinkedItems: []domain.ProjectItem{
		{ID: "a", ProjectTitle: "roadmap"},
		{ID: "b", ProjectTitle: "demo"},
	}}
	if got := matchingItem(iss, "demo"); got == nil || got.ID != "b" {
		t.Fatalf("expected title match, got %#v", got)
	}
	if got := matchingItem(iss, "other"); got == nil || got.ID != "a" {
		t.Fatalf("expected first-item fallback, got %#v", got)
	}
	if got := matchingItem(domain.Issue{}, "demo"); got != nil {
		t.Fatalf("expected nil for unlinked issue, got %#v", got)
	}
}
