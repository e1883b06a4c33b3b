// Package mapper turns local test cases into the test-management bulk schema.
package mapper

import (
	"errors"
	"strings"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/normalize"
)

var (
	ErrVersionRequired = errors.New("a version must be selected")
	ErrCycleRequired   = errors.New("a test cycle must be selected")
	ErrNoTestCases     = errors.New("no test cases to import")
)

// Target is where pushed cases land. VersionID and CycleID are pointers
// because -1 ("unscheduled", "ad hoc") is a valid selection.
type Target struct {
	Issue     *model.Issue
	SprintID  int64
	VersionID *int64
	CycleID   *int64
}

type ZephyrMapper struct {
	defaultComponent string
}

func NewZephyrMapper(defaultComponent string) *ZephyrMapper {
	return &ZephyrMapper{defaultComponent: defaultComponent}
}

// Validate checks the target before any request is built.
func (m *ZephyrMapper) Validate(cases []model.TestCase, target Target) error {
	if target.VersionID == nil {
		return ErrVersionRequired
	}
	if target.CycleID == nil {
		return ErrCycleRequired
	}
	if len(cases) == 0 {
		return ErrNoTestCases
	}
	return nil
}

func (m *ZephyrMapper) ToBulkRequest(cases []model.TestCase, target Target) (*model.BulkCreateRequest, error) {
	if err := m.Validate(cases, target); err != nil {
		return nil, err
	}

	versionID, cycleID := *target.VersionID, *target.CycleID
	components, related := m.issueRefs(target.Issue)

	items := make([]model.BulkTestCase, len(cases))
	for i, tc := range cases {
		items[i] = model.BulkTestCase{
			Summary:         tc.Title,
			Description:     tc.Title,
			Components:      components,
			RelatedIssues:   related,
			Steps:           Steps(tc.Steps),
			VersionID:       versionID,
			CycleID:         cycleID,
			SprintID:        target.SprintID,
			ExecutionStatus: model.StatusRef{ID: tc.ExecutionStatus.Code()},
		}
	}

	return &model.BulkCreateRequest{
		TestCases: items,
		VersionID: versionID,
		CycleID:   cycleID,
	}, nil
}

func (m *ZephyrMapper) issueRefs(issue *model.Issue) (components, related []string) {
	related = []string{}
	if issue != nil {
		components = issue.PrimaryComponents()
		if issue.Key != "" {
			related = []string{issue.Key}
		}
	}
	if len(components) == 0 {
		components = []string{m.defaultComponent}
	}
	return components, related
}

// Steps splits numbered step text into step objects. A step that describes an
// outcome ("result", "should") doubles as its own expected result.
func Steps(text string) []model.TestStep {
	parts := normalize.SplitSteps(text)
	steps := make([]model.TestStep, 0, len(parts))
	for _, p := range parts {
		step := model.TestStep{Step: p, StepDescription: p}
		lower := strings.ToLower(p)
		if strings.Contains(lower, "result") || strings.Contains(lower, "should") {
			step.Result = p
		}
		steps = append(steps, step)
	}
	return steps
}
