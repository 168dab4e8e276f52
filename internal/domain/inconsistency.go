package domain

// Severity is a closed tagged variant so classification stays exhaustive.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// Inconsistency is a classification finding: data, never an exception.
// IssueID/ItemID/ProjectID are carried so an explicitly invoked fix step can
// remediate without re-resolving; the classifiers themselves never write.
type Inconsistency struct {
	Number        int        `json:"number"`
	Severity      Severity   `json:"severity"`
	IssueState    IssueState `json:"issueState"`
	ProjectStatus string     `json:"projectStatus"`
	Field         string     `json:"field,omitempty"`
	Description   string     `json:"description"`

	IssueID   string `json:"-"`
	ItemID    string `json:"-"`
	ProjectID string `json:"-"`
}

// StatusDateMapping configures auto-stamping: entering Status stamps Field
// with the current date, write-once.
type StatusDateMapping struct {
	Status string `json:"status"`
	Field  string `json:"field"`
}

// MetricsConfig maps Status values to the text fields recording when an issue
// entered that stage, plus the staleness window for in-progress work.
type MetricsConfig struct {
	DateFields         []StatusDateMapping
	StaleThresholdDays int
}

// FieldFor returns the date field mapped to a status value, if any.
func (m MetricsConfig) FieldFor(status string) (string, bool) {
	for _, d := range m.DateFields {
		if d.Status == status { return d.Field, true }
	}
	return "", false
}
