package domain

// Reason is the closed set of expected failure codes surfaced to callers.
// Remediation text is keyed off these codes, never off free-text messages.
type Reason string

const (
	ReasonNoProject      Reason = "no-project"
	ReasonNoItem         Reason = "no-item"
	ReasonFieldNotFound  Reason = "field-not-found"
	ReasonOptionNotFound Reason = "option-not-found"
	ReasonUpdateFailed   Reason = "update-failed"
)

// Hint returns the remediation text for a failure reason.
func (r Reason) Hint() string {
	switch r {
	case ReasonNoProject:
		return "create a project titled after the repository, or pass an explicit project name"
	case ReasonNoItem:
		return "add the issue to the project board, then retry"
	case ReasonFieldNotFound:
		return "create the field on the project board (run metrics setup for date fields)"
	case ReasonOptionNotFound:
		return "use one of the field's declared options, or add the option on the board"
	case ReasonUpdateFailed:
		return "the remote write did not happen; check token scopes and retry"
	}
	return ""
}

// UpdateResult is the typed outcome of a status/field write chain. Expected
// conditions land here as a Reason; Message carries the underlying transport
// error text when Reason is update-failed.
type UpdateResult struct {
	Success bool
	Reason  Reason
	Message string
}

func OK() UpdateResult { return UpdateResult{Success: true} }

func Failed(reason Reason, msg string) UpdateResult {
	return UpdateResult{Reason: reason, Message: msg}
}
