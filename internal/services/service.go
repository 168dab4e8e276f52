/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/HamedShams/board-pulse/internal/config"
	"github.com/HamedShams/board-pulse/internal/domain"
	"github.com/rs/zerolog"
)

type GitHubClient interface {
	ProjectsForOwner(ctx context.Context, owner string) ([]domain.Project, error)
	ProjectFields(ctx context.Context, projectID string) ([]domain.FieldDefinition, error)
	IssueWithItems(ctx context.Context, owner, repo string, number int) (*domain.Issue, error)
	ListIssues(ctx context.Context, owner, repo string) ([]domain.Issue, error)
	ItemFieldText(ctx context.Context, itemID, fieldName string) (string, error)
	UpdateItemFieldOption(ctx context.Context, projectID, itemID, fieldID, optionID string) error
	UpdateItemFieldText(ctx context.Context, projectID, itemID, fieldID, text string) error
	CloseIssue(ctx context.Context, issueID string) error
}

type Notifier interface {
	SendMessagePlain(ctx context.Context, chatID int64, text string) error
}

type Service struct {
	cfg config.Config
	log zerolog.Logger
	gh  GitHubClient
	tg  Notifier

	mu        sync.Mutex
	lastAudit *AuditReport
}

func New(cfg config.Config, log zerolog.Logger, gh GitHubClient, tg Notifier) *Service {
	return &Service{cfg: cfg, log: log, gh: gh, tg: tg}
}

// AuditReport is one point-in-time drift audit. Kept only in process memory;
// the engine owns no durable state.
type AuditReport struct {
	RanAt           time.Time              `json:"ranAt"`
	Owner           string                 `json:"owner"`
	Repo            string                 `json:"repo"`
	IssuesScanned   int                    `json:"issuesScanned"`
	Findings        []domain.Inconsistency `json:"findings"`
	MetricsFindings []domain.Inconsistency `json:"metricsFindings"`
	Err             string                 `json:"error,omitempty"`
}

// matchingItem picks the board item whose project title matches the
// convention (project title == repository name, or the explicit override),
// else the first linked item.
func matchingItem(iss domain.Issue, wantTitle string) *domain.ProjectItem {
	for i := range iss.LinkedItems {
		if iss.LinkedItems[i].ProjectTitle == wantTitle { return &iss.LinkedItems[i] }
	}
	if len(iss.LinkedItems) > 0 { return &iss.LinkedItems[0] }
	return nil
}

func (s *Service) projectTitle() string {
	if s.cfg.ProjectName != "" { return s.cfg.ProjectName }
	return s.cfg.Repo
}

// RunDriftAudit fetches the repository's issues with their board items and
// runs both classifiers. Sequential by design: ordered remote calls, no
// worker pool, nothing retained across runs beyond the last report.
func (s *Service) RunDriftAudit(ctx context.Context) (*AuditReport, error) {
	rep := &AuditReport{RanAt: time.Now(), Owner: s.cfg.Owner, Repo: s.cfg.Repo}
	s.log.Info().Str("owner", rep.Owner).Str("repo", rep.Repo).Msg("drift audit: start")
	issues, err := s.gh.ListIssues(ctx, s.cfg.Owner, s.cfg.Repo)
	if err != nil {
		rep.Err = err.Error()
		s.storeAudit(rep)
		return rep, err
	}
	want := s.projectTitle()
	for i := range issues { issues[i].Item = matchingItem(issues[i], want) }
	rep.IssuesScanned = len(issues)
	rep.Findings = ClassifyInconsistencies(issues, s.cfg.TerminalStatuses, s.cfg.PreWorkStatuses)

	textByItem := map[string]map[string]string{}
	for _, iss := range issues {
		if iss.Item != nil && len(iss.Item.TextValues) > 0 { textByItem[iss.Item.ID] = iss.Item.TextValues }
	}
	rep.MetricsFindings = ClassifyMetricsInconsistencies(issues, textByItem, s.cfg.Metrics, time.Now().UTC())

	s.log.Info().Int("scanned", rep.IssuesScanned).Int("status_drift", len(rep.Findings)).Int("metrics_drift", len(rep.MetricsFindings)).Msg("drift audit: done")
	s.storeAudit(rep)
	s.notifyAudit(ctx, rep)
	return rep, nil
}

func (s *Service) storeAudit(rep *AuditReport) {
	s.mu.Lock()
	s.lastAudit = rep
	s.mu.Unlock()
}

// LastAudit returns the most recent report of this process, or nil.
func (s *Service) LastAudit() *AuditReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAudit
}

func (s *Service) notifyAudit(ctx context.Context, rep *AuditReport) {
	if s.tg == nil { return }
	if len(rep.Findings) == 0 && len(rep.MetricsFindings) == 0 { return }
	text := RenderAudit(rep)
	for _, chat := range s.cfg.TelegramChatIDs {
		if err := s.tg.SendMessagePlain(ctx, chat, text); err != nil {
			s.log.Error().Err(err).Int64("chat", chat).Msg("telegram send failed")
		}
	}
	// If no numeric IDs, try usernames via resolver if available
	type usernameResolver interface {
		ResolveUsername(ctx context.Context, username string) (int64, error)
	}
	if len(s.cfg.TelegramChatIDs) == 0 && len(s.cfg.TelegramChatUsernames) > 0 {
		r, ok := s.tg.(usernameResolver)
		if !ok {
			s.log.Error().Msg("telegram client does not support username resolution; set TELEGRAM_CHAT_IDS")
			return
		}
		for _, u := range s.cfg.TelegramChatUsernames {
			id, err := r.ResolveUsername(ctx, u)
			if err != nil { s.log.Error().Err(err).Str("username", u).Msg("resolve username failed"); continue }
			if err := s.tg.SendMessagePlain(ctx, id, text); err != nil {
				s.log.Error().Err(err).Str("username", u).Int64("chat", id).Msg("telegram send failed")
			}
		}
	}
}

// RenderAudit formats a report as plain text for notifications and the CLI.
func RenderAudit(rep *AuditReport) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Board Pulse audit %s/%s\n", rep.Owner, rep.Repo)
	fmt.Fprintf(b, "scanned %d issues at %s\n", rep.IssuesScanned, rep.RanAt.Format(time.RFC3339))
	if rep.Err != "" {
		fmt.Fprintf(b, "audit failed: %s\n", rep.Err)
		return b.String()
	}
	if len(rep.Findings) == 0 && len(rep.MetricsFindings) == 0 {
		b.WriteString("no drift found\n")
		return b.String()
	}
	if len(rep.Findings) > 0 {
		fmt.Fprintf(b, "status drift (%d):\n", len(rep.Findings))
		for _, f := range rep.Findings {
			fmt.Fprintf(b, "  #%d [%s] %s vs %q: %s\n", f.Number, f.Severity, f.IssueState, f.ProjectStatus, f.Description)
		}
	}
	if len(rep.MetricsFindings) > 0 {
		fmt.Fprintf(b, "metrics drift (%d):\n", len(rep.MetricsFindings))
		for _, f := range rep.MetricsFindings {
			fmt.Fprintf(b, "  #%d [%s] %s\n", f.Number, f.Severity, f.Description)
		}
	}
	return b.String()
}

// SendHelp replies with bot capabilities and commands.
func (s *Service) SendHelp(ctx context.Context, chatID int64) error {
	if chatID == 0 { return nil }
	help := "Board Pulse\n" +
		"Keeps tracker state and board Status consistent.\n\n" +
		"Commands:\n" +
		"- /audit : run a drift audit now\n" +
		"- /help : this message"
	return s.tg.SendMessagePlain(ctx, chatID, help)
}

// FixOutcome is the result of one remediation action for one finding.
type FixOutcome struct {
	Number  int    `json:"number"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FixInconsistencies maps each error-severity status-drift finding to exactly
// one remediation write; info findings and metrics findings are never
// auto-fixed. One failing fix never blocks the rest of the batch.
func (s *Service) FixInconsistencies(ctx context.Context, findings []domain.Inconsistency) []FixOutcome {
	var out []FixOutcome
	catalogs := map[string]domain.FieldCatalog{}
	for _, f := range findings {
		if f.Severity != domain.SeverityError || f.Field != "" { continue }
		switch f.IssueState {
		case domain.IssueStateOpen:
			// board already marks it complete, so close the tracker side
			o := FixOutcome{Number: f.Number, Action: "close-issue", Success: true}
			if err := s.gh.CloseIssue(ctx, f.IssueID); err != nil {
				o.Success = false
				o.Message = err.Error()
				s.log.Error().Err(err).Int("issue", f.Number).Msg("fix: close issue failed")
			}
			out = append(out, o)
		case domain.IssueStateClosed:
			cat, ok := catalogs[f.ProjectID]
			if !ok { cat = s.FieldCatalog(ctx, f.ProjectID); catalogs[f.ProjectID] = cat }
			res := s.UpdateStatus(ctx, f.ProjectID, f.ItemID, s.cfg.DoneStatus, cat)
			o := FixOutcome{Number: f.Number, Action: "set-status-" + s.cfg.DoneStatus, Success: res.Success}
			if !res.Success {
				o.Message = string(res.Reason)
				if res.Message != "" { o.Message += ": " + res.Message }
				s.log.Error().Str("reason", string(res.Reason)).Int("issue", f.Number).Msg("fix: status update failed")
			}
			out = append(out, o)
		}
	}
	return out
}
