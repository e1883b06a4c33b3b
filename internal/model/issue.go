package model

// Issue is read-only tracker data.
type Issue struct {
	Key         string   `json:"key"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Type        string   `json:"issue_type"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Assignee    string   `json:"assignee,omitempty"`
	Reporter    string   `json:"reporter,omitempty"`
	Sprint      string   `json:"sprint,omitempty"`
	Component   string   `json:"component,omitempty"`
	Components  []string `json:"components,omitempty"`
	Created     string   `json:"created,omitempty"`
	Updated     string   `json:"updated,omitempty"`
}

// PrimaryComponents returns the components a pushed test case should carry.
func (i Issue) PrimaryComponents() []string {
	if len(i.Components) > 0 {
		return i.Components
	}
	if i.Component != "" {
		return []string{i.Component}
	}
	return nil
}

type IssuePage struct {
	Issues     []Issue `json:"issues"`
	Total      int     `json:"total"`
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
}

// IssueFilter selects issues. A non-empty JQL wins over the individual fields.
type IssueFilter struct {
	IssueType string
	Component string
	Sprint    string
	JQL       string
}

func (f IssueFilter) IsEmpty() bool {
	return f == IssueFilter{}
}
