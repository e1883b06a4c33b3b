package model

type Component struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Sprint struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type Board struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type Version struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Released    bool   `json:"released"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

type TestCycle struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	VersionID int64  `json:"versionId,omitempty"`
}

// TestStep is one step of a test case in the test-management schema.
type TestStep struct {
	Step            string `json:"step"`
	StepDescription string `json:"stepDescription"`
	Data            string `json:"data"`
	Result          string `json:"result"`
}

type StatusRef struct {
	ID int `json:"id"`
}

// BulkTestCase is one item of a bulk-create request.
type BulkTestCase struct {
	Summary         string     `json:"summary"`
	Description     string     `json:"description"`
	Components      []string   `json:"components"`
	RelatedIssues   []string   `json:"related_issues"`
	Steps           []TestStep `json:"steps"`
	VersionID       int64      `json:"version_id"`
	CycleID         int64      `json:"cycle_id"`
	SprintID        int64      `json:"sprint_id"`
	ExecutionStatus StatusRef  `json:"execution_status"`
}

type BulkCreateRequest struct {
	TestCases []BulkTestCase `json:"TestCases"`
	VersionID int64          `json:"version_id"`
	CycleID   int64          `json:"cycle_id"`
}

type BulkCreateResult struct {
	Success bool `json:"success"`
	Created int  `json:"created"`
	Failed  int  `json:"failed"`
}
