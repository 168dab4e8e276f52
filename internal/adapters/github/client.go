/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HamedShams/board-pulse/internal/config"
	"github.com/HamedShams/board-pulse/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Client talks to the Projects v2 GraphQL API. Every method maps to one query
// or mutation; pagination stays inside the method. Retries cover 429/5xx only.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	log      zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{
		endpoint: cfg.GitHubAPIURL,
		token:    cfg.GitHubToken,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
		log:      log,
	}
}

type gqlError struct {
	Message string `json:"message"`
}

func (c *Client) doGraphQL(ctx context.Context, query string, vars map[string]any, out any) error {
	if c.endpoint == "" { return errors.New("github: empty endpoint") }
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil { return err }

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil { return backoff.Permanent(err) }
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" { req.Header.Set("Authorization", "Bearer "+c.token) }
		resp, err := c.http.Do(req)
		if err != nil { return err }
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			apiErr := fmt.Errorf("github api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 { return apiErr }
			return backoff.Permanent(apiErr)
		}
		var envelope struct {
			Data   json.RawMessage `json:"data"`
			Errors []gqlError      `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil { return backoff.Permanent(err) }
		if len(envelope.Errors) > 0 {
			msgs := make([]string, 0, len(envelope.Errors))
			for _, e := range envelope.Errors { msgs = append(msgs, e.Message) }
			return backoff.Permanent(fmt.Errorf("github graphql: %s", strings.Join(msgs, "; ")))
		}
		if out == nil { return nil }
		if err := json.Unmarshal(envelope.Data, out); err != nil { return backoff.Permanent(err) }
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	return backoff.Retry(op, bo)
}

const queryOwnerProjects = `query($owner: String!, $cursor: String) {
  repositoryOwner(login: $owner) {
    ... on Organization { projectsV2(first: 50, after: $cursor) {
      nodes { id number title }
      pageInfo { hasNextPage endCursor } } }
    ... on User { projectsV2(first: 50, after: $cursor) {
      nodes { id number title }
      pageInfo { hasNextPage endCursor } } }
  }
}`

// ProjectsForOwner lists the owner's boards, paging until exhausted.
func (c *Client) ProjectsForOwner(ctx context.Context, owner string) ([]domain.Project, error) {
	if owner == "" { return nil, errors.New("github: empty owner") }
	var out []domain.Project
	cursor := ""
	for {
		vars := map[string]any{"owner": owner}
		if cursor != "" { vars["cursor"] = cursor }
		var resp struct {
			RepositoryOwner struct {
				ProjectsV2 struct {
					Nodes []struct {
						ID     string `json:"id"`
						Number int    `json:"number"`
						Title  string `json:"title"`
					} `json:"nodes"`
					PageInfo pageInfo `json:"pageInfo"`
				} `json:"projectsV2"`
			} `json:"repositoryOwner"`
		}
		if err := c.doGraphQL(ctx, queryOwnerProjects, vars, &resp); err != nil { return nil, err }
		for _, n := range resp.RepositoryOwner.ProjectsV2.Nodes {
			out = append(out, domain.Project{ID: n.ID, Number: n.Number, Title: n.Title})
		}
		pi := resp.RepositoryOwner.ProjectsV2.PageInfo
		if !pi.HasNextPage { break }
		cursor = pi.EndCursor
	}
	return out, nil
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

const queryProjectFields = `query($projectId: ID!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      fields(first: 50) {
        nodes {
          ... on ProjectV2FieldCommon { id name dataType }
          ... on ProjectV2SingleSelectField { id name dataType options { id name } }
        }
      }
    }
  }
}`

// ProjectFields fetches the board's field definitions with select options.
func (c *Client) ProjectFields(ctx context.Context, projectID string) ([]domain.FieldDefinition, error) {
	if projectID == "" { return nil, errors.New("github: empty project id") }
	var resp struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					ID       string `json:"id"`
					Name     string `json:"name"`
					DataType string `json:"dataType"`
					Options  []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"options"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := c.doGraphQL(ctx, queryProjectFields, map[string]any{"projectId": projectID}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.FieldDefinition, 0, len(resp.Node.Fields.Nodes))
	for _, n := range resp.Node.Fields.Nodes {
		if n.ID == "" { continue }
		def := domain.FieldDefinition{ID: n.ID, Name: n.Name, Type: domain.FieldType(n.DataType)}
		for _, o := range n.Options { def.Options = append(def.Options, domain.FieldOption{ID: o.ID, Name: o.Name}) }
		out = append(out, def)
	}
	return out, nil
}

// fieldValueNode is the decoded union of single-select and text field values;
// select values carry optionId, text values only a field name plus text.
type fieldValueNode struct {
	Name     string `json:"name"`
	OptionID string `json:"optionId"`
	Text     string `json:"text"`
	Field    struct {
		Name string `json:"name"`
	} `json:"field"`
}

type itemNode struct {
	ID      string `json:"id"`
	Project struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"project"`
	FieldValues struct {
		Nodes []fieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
}

type issueNode struct {
	ID       string     `json:"id"`
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	State    string     `json:"state"`
	ClosedAt *time.Time `json:"closedAt"`
	Labels   struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Assignees struct {
		Nodes []struct {
			Login string `json:"login"`
		} `json:"nodes"`
	} `json:"assignees"`
	ProjectItems struct {
		Nodes []itemNode `json:"nodes"`
	} `json:"projectItems"`
}

const issueFragment = `
  id number title state closedAt
  labels(first: 20) { nodes { name } }
  assignees(first: 10) { nodes { login } }
  projectItems(first: 10) {
    nodes {
      id
      project { id title }
      fieldValues(first: 30) {
        nodes {
          ... on ProjectV2ItemFieldSingleSelectValue { name optionId field { ... on ProjectV2FieldCommon { name } } }
          ... on ProjectV2ItemFieldTextValue { text field { ... on ProjectV2FieldCommon { name } } }
        }
      }
    }
  }`

func mapIssue(n issueNode) domain.Issue {
	iss := domain.Issue{
		ID:       n.ID,
		Number:   n.Number,
		Title:    n.Title,
		State:    domain.IssueState(n.State),
		ClosedAt: n.ClosedAt,
	}
	for _, l := range n.Labels.Nodes { iss.Labels = append(iss.Labels, l.Name) }
	for _, a := range n.Assignees.Nodes { iss.Assignees = append(iss.Assignees, a.Login) }
	for _, it := range n.ProjectItems.Nodes {
		item := domain.ProjectItem{
			ID:           it.ID,
			ProjectID:    it.Project.ID,
			ProjectTitle: it.Project.Title,
			TextValues:   map[string]string{},
		}
		for _, fv := range it.FieldValues.Nodes {
			switch {
			case fv.OptionID != "":
				sel := domain.SelectValue{Name: fv.Name, OptionID: fv.OptionID}
				switch fv.Field.Name {
				case "Status":
					item.Status = sel
				case "Priority":
					item.Priority = sel
				case "Size":
					item.Size = sel
				}
			case fv.Field.Name != "":
				item.TextValues[fv.Field.Name] = fv.Text
			}
		}
		iss.LinkedItems = append(iss.LinkedItems, item)
	}
	return iss
}

const queryIssue = `query($owner: String!, $repo: String!, $number: Int!) {
  repository(owner: $owner, name: $repo) {
    issue(number: $number) {` + issueFragment + `
    }
  }
}`

// IssueWithItems fetches one issue with its linked board items and their
// current field values.
func (c *Client) IssueWithItems(ctx context.Context, owner, repo string, number int) (*domain.Issue, error) {
	if number <= 0 { return nil, errors.New("github: invalid issue number") }
	var resp struct {
		Repository struct {
			Issue *issueNode `json:"issue"`
		} `json:"repository"`
	}
	vars := map[string]any{"owner": owner, "repo": repo, "number": number}
	if err := c.doGraphQL(ctx, queryIssue, vars, &resp); err != nil { return nil, err }
	if resp.Repository.Issue == nil { return nil, fmt.Errorf("github: issue #%d not found in %s/%s", number, owner, repo) }
	iss := mapIssue(*resp.Repository.Issue)
	return &iss, nil
}

const queryIssues = `query($owner: String!, $repo: String!, $cursor: String) {
  repository(owner: $owner, name: $repo) {
    issues(first: 50, after: $cursor, states: [OPEN, CLOSED], orderBy: {field: CREATED_AT, direction: DESC}) {
      nodes {` + issueFragment + `
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

// ListIssues pages through the repository's issues for a batch audit.
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]domain.Issue, error) {
	var out []domain.Issue
	cursor := ""
	for {
		vars := map[string]any{"owner": owner, "repo": repo}
		if cursor != "" { vars["cursor"] = cursor }
		var resp struct {
			Repository struct {
				Issues struct {
					Nodes    []issueNode `json:"nodes"`
					PageInfo pageInfo    `json:"pageInfo"`
				} `json:"issues"`
			} `json:"repository"`
		}
		if err := c.doGraphQL(ctx, queryIssues, vars, &resp); err != nil { return nil, err }
		for _, n := range resp.Repository.Issues.Nodes { out = append(out, mapIssue(n)) }
		pi := resp.Repository.Issues.PageInfo
		if !pi.HasNextPage { break }
		cursor = pi.EndCursor
	}
	return out, nil
}

const queryItemFieldText = `query($itemId: ID!, $field: String!) {
  node(id: $itemId) {
    ... on ProjectV2Item {
      fieldValueByName(name: $field) {
        ... on ProjectV2ItemFieldTextValue { text }
      }
    }
  }
}`

// ItemFieldText reads the current value of a text field on one item. An unset
// field comes back as the empty string.
func (c *Client) ItemFieldText(ctx context.Context, itemID, fieldName string) (string, error) {
	var resp struct {
		Node struct {
			FieldValueByName struct {
				Text string `json:"text"`
			} `json:"fieldValueByName"`
		} `json:"node"`
	}
	vars := map[string]any{"itemId": itemID, "field": fieldName}
	if err := c.doGraphQL(ctx, queryItemFieldText, vars, &resp); err != nil { return "", err }
	return resp.Node.FieldValueByName.Text, nil
}

const mutateItemField = `mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: ProjectV2FieldValue!) {
  updateProjectV2ItemFieldValue(input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: $value}) {
    projectV2Item { id }
  }
}`

// UpdateItemFieldOption writes one single-select field by option id.
func (c *Client) UpdateItemFieldOption(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	vars := map[string]any{
		"projectId": projectID, "itemId": itemID, "fieldId": fieldID,
		"value": map[string]any{"singleSelectOptionId": optionID},
	}
	return c.doGraphQL(ctx, mutateItemField, vars, nil)
}

// UpdateItemFieldText writes one text field.
func (c *Client) UpdateItemFieldText(ctx context.Context, projectID, itemID, fieldID, text string) error {
	vars := map[string]any{
		"projectId": projectID, "itemId": itemID, "fieldId": fieldID,
		"value": map[string]any{"text": text},
	}
	return c.doGraphQL(ctx, mutateItemField, vars, nil)
}

const mutateCloseIssue = `mutation($issueId: ID!) {
  closeIssue(input: {issueId: $issueId}) { issue { id state } }
}`

// CloseIssue closes a tracker issue by node id (remediation write).
func (c *Client) CloseIssue(ctx context.Context, issueID string) error {
	if issueID == "" { return errors.New("github: empty issue id") }
	return c.doGraphQL(ctx, mutateCloseIssue, map[string]any{"issueId": issueID}, nil)
}
