package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/HamedShams/board-pulse/internal/config"
	"github.com/HamedShams/board-pulse/internal/domain"
	"github.com/rs/zerolog"
)

type optionWrite struct{ projectID, itemID, fieldID, optionID string }
type textWrite struct{ projectID, itemID, fieldID, text string }

// fakeGitHub is an in-memory GitHubClient. Text writes are reflected into
// textValues so write-once behavior is observable across calls.
type fakeGitHub struct {
	projects   []domain.Project
	fields     map[string][]domain.FieldDefinition
	issues     map[int]*domain.Issue
	listed     []domain.Issue
	textValues map[string]map[string]string

	optionWrites []optionWrite
	textWrites   []textWrite
	closed       []string
	fieldsCalls  int

	errProjects    error
	errOptionWrite error
}

func (f *fakeGitHub) ProjectsForOwner(ctx context.Context, owner string) ([]domain.Project, error) {
	return f.projects, f.errProjects
}

func (f *fakeGitHub) ProjectFields(ctx context.Context, projectID string) ([]domain.FieldDefinition, error) {
	f.fieldsCalls++
	return f.fields[projectID], nil
}

func (f *fakeGitHub) IssueWithItems(ctx context.Context, owner, repo string, number int) (*domain.Issue, error) {
	iss, ok := f.issues[number]
	if !ok { return nil, fmt.Errorf("issue #%d not found", number) }
	return iss, nil
}

func (f *fakeGitHub) ListIssues(ctx context.Context, owner, repo string) ([]domain.Issue, error) {
	return f.listed, nil
}

func (f *fakeGitHub) ItemFieldText(ctx context.Context, itemID, fieldName string) (string, error) {
	return f.textValues[itemID][fieldName], nil
}

func (f *fakeGitHub) fieldName(projectID, fieldID string) string {
	for _, d := range f.fields[projectID] {
		if d.ID == fieldID { return d.Name }
	}
	return fieldID
}

func (f *fakeGitHub) UpdateItemFieldOption(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	if f.errOptionWrite != nil { return f.errOptionWrite }
	f.optionWrites = append(f.optionWrites, optionWrite{projectID, itemID, fieldID, optionID})
	return nil
}

func (f *fakeGitHub) UpdateItemFieldText(ctx context.Context, projectID, itemID, fieldID, text string) error {
	f.textWrites = append(f.textWrites, textWrite{projectID, itemID, fieldID, text})
	if f.textValues == nil { f.textValues = map[string]map[string]string{} }
	if f.textValues[itemID] == nil { f.textValues[itemID] = map[string]string{} }
	f.textValues[itemID][f.fieldName(projectID, fieldID)] = text
	return nil
}

func (f *fakeGitHub) CloseIssue(ctx context.Context, issueID string) error {
	if issueID == "" { return errors.New("empty issue id") }
	f.closed = append(f.closed, issueID)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Owner:            "octo",
		Repo:             "demo",
		DoneStatus:       "Done",
		TerminalStatuses: DefaultTerminalStatuses,
		PreWorkStatuses:  DefaultPreWorkStatuses,
		Metrics: domain.MetricsConfig{
			DateFields: []domain.StatusDateMapping{
				{Status: "Done", Field: "Completed At"},
				{Status: "Released", Field: "Completed At"},
				{Status: "In Progress", Field: "In Progress At"},
			},
			StaleThresholdDays: 14,
		},
	}
}

func newTestService(gh GitHubClient) *Service {
	return New(testConfig(), zerolog.Nop(), gh, nil)
}

// boardFields is a typical project field catalog source for tests.
func boardFields() []domain.FieldDefinition {
	return []domain.FieldDefinition{
		{ID: "f-status", Name: "Status", Type: domain.FieldTypeSingleSelect, Options: []domain.FieldOption{
			{ID: "o-backlog", Name: "Backlog"},
			{ID: "o-progress", Name: "In Progress"},
			{ID: "o-done", Name: "Done"},
		}},
		{ID: "f-priority", Name: "Priority", Type: domain.FieldTypeSingleSelect, Options: []domain.FieldOption{
			{ID: "o1", Name: "High"},
			{ID: "o2", Name: "Low"},
		}},
		{ID: "f-itemtype", Name: "Item Type", Type: domain.FieldTypeSingleSelect, Options: []domain.FieldOption{
			{ID: "t1", Name: "Bug"},
			{ID: "t2", Name: "Feature"},
		}},
		{ID: "f-completed", Name: "Completed At", Type: domain.FieldTypeText},
		{ID: "f-started", Name: "In Progress At", Type: domain.FieldTypeText},
	}
}

func catalogOf(defs []domain.FieldDefinition) domain.FieldCatalog {
	cat := domain.FieldCatalog{}
	for _, d := range defs { cat[d.Name] = d }
	return cat
}
