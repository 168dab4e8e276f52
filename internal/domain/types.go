package domain

import (
	"sort"
	"time"
)

type IssueState string

const (
	IssueStateOpen   IssueState = "OPEN"
	IssueStateClosed IssueState = "CLOSED"
)

// Issue is the tracker-side view of a work item plus its board linkage.
// ID is the tracker's opaque node id, used only for remediation writes.
// LinkedItems is everything the API returned; Item is the one relevant board
// item chosen by the locator's title convention.
type Issue struct {
	ID          string
	Number      int
	Title       string
	State       IssueState
	ClosedAt    *time.Time
	Labels      []string
	Assignees   []string
	LinkedItems []ProjectItem
	Item        *ProjectItem
}

// SelectValue is a single-select field value: the display name shown on the
// board and the internal option id the API wants for writes.
type SelectValue struct {
	Name     string
	OptionID string
}

func (v SelectValue) Empty() bool { return v.Name == "" }

// ProjectItem is the board-side unit carrying custom field values. TextValues
// holds text-typed fields (the lifecycle date fields) keyed by field name.
type ProjectItem struct {
	ID           string
	ProjectID    string
	ProjectTitle string
	Status       SelectValue
	Priority     SelectValue
	Size         SelectValue
	TextValues   map[string]string
}

type Project struct {
	ID     string
	Number int
	Title  string
}

type FieldType string

const (
	FieldTypeSingleSelect FieldType = "SINGLE_SELECT"
	FieldTypeText         FieldType = "TEXT"
)

type FieldOption struct {
	ID   string
	Name string
}

type FieldDefinition struct {
	ID      string
	Name    string
	Type    FieldType
	Options []FieldOption
}

// OptionID returns the internal id for an option display name.
func (f FieldDefinition) OptionID(name string) (string, bool) {
	for _, o := range f.Options {
		if o.Name == name { return o.ID, true }
	}
	return "", false
}

// OptionNames returns all declared option names sorted alphabetically.
func (f FieldDefinition) OptionNames() []string {
	names := make([]string, 0, len(f.Options))
	for _, o := range f.Options { names = append(names, o.Name) }
	sort.Strings(names)
	return names
}

// FieldCatalog maps declared field name to definition. Built once per project
// per logical operation and threaded through subsequent calls; never cached
// across operations.
type FieldCatalog map[string]FieldDefinition

// ItemLocation is the result of resolving an issue to its board item. Catalog
// is fetched eagerly so later writes in the same operation reuse it.
type ItemLocation struct {
	ProjectID string
	ItemID    string
	Catalog   FieldCatalog
}
