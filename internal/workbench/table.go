package workbench

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mario1918/testCaseGenie-NG/internal/export"
	"github.com/mario1918/testCaseGenie-NG/internal/http/dto"
	"github.com/mario1918/testCaseGenie-NG/internal/mapper"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/normalize"
	"github.com/mario1918/testCaseGenie-NG/internal/tracker"
)

var (
	ErrNoActiveIssue    = errors.New("no issue selected")
	ErrMissingField     = errors.New("required field is empty")
	ErrTestCaseNotFound = errors.New("test case not found")
	ErrInvalidStatus    = errors.New("unknown execution status")
	ErrVersionRequired  = mapper.ErrVersionRequired
	ErrCycleRequired    = mapper.ErrCycleRequired
	ErrNoTestCases      = mapper.ErrNoTestCases
)

type SortField string

const (
	SortByID       SortField = "id"
	SortByTitle    SortField = "title"
	SortByPriority SortField = "priority"
	SortByStatus   SortField = "status"
)

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// GenerateOptions tune a generation call. Prompt overrides the issue
// description as the story text.
type GenerateOptions struct {
	Prompt          string
	SpecialComments string
}

// PushTarget is the version and cycle chosen for a push. Nil means nothing
// was chosen.
type PushTarget struct {
	VersionID *int64
	CycleID   *int64
}

// TestCaseTable edits the test cases of the active issue.
type TestCaseTable struct {
	relay   Relay
	tracker tracker.Tracker
	mapper  *mapper.ZephyrMapper
	store   *Store
	now     func() time.Time
}

func newTestCaseTable(relay Relay, tr tracker.Tracker, m *mapper.ZephyrMapper, store *Store, now func() time.Time) *TestCaseTable {
	return &TestCaseTable{relay: relay, tracker: tr, mapper: m, store: store, now: now}
}

// Generate starts over for the active issue: history is reset and the table
// replaced by the new cases.
func (t *TestCaseTable) Generate(ctx context.Context, opts GenerateOptions) ([]model.TestCase, error) {
	return t.generate(ctx, opts, false)
}

// GenerateMore asks for cases not yet in the table and appends them.
func (t *TestCaseTable) GenerateMore(ctx context.Context, opts GenerateOptions) ([]model.TestCase, error) {
	return t.generate(ctx, opts, true)
}

func (t *TestCaseTable) generate(ctx context.Context, opts GenerateOptions, additional bool) ([]model.TestCase, error) {
	issue := t.store.ActiveIssue()
	if issue == nil {
		return nil, ErrNoActiveIssue
	}

	req := dto.GenerateRequest{
		Prompt:              issue.Description,
		Description:         issue.Description,
		Summary:             issue.Summary,
		IssueKey:            issue.Key,
		IssueType:           issue.Type,
		Status:              issue.Status,
		SpecialComments:     opts.SpecialComments,
		IsAdditional:        additional,
		ExistingTestCases:   []model.TestCase{},
		ConversationHistory: []model.ConversationMessage{},
	}
	if p := strings.TrimSpace(opts.Prompt); p != "" {
		req.Prompt = p
	}
	if additional {
		req.ExistingTestCases = t.store.TestCases()
		req.ConversationHistory = t.store.History()
	}

	t.store.setLoading(true)
	defer t.store.setLoading(false)

	resp, err := t.relay.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generating test cases: %w", err)
	}

	if current := t.store.ActiveIssue(); current == nil || current.Key != issue.Key {
		return nil, ErrSuperseded
	}

	cases := make([]model.TestCase, len(resp.TestCases))
	for i, tc := range resp.TestCases {
		tc.ExecutionStatus = tc.ExecutionStatus.Normalize()
		cases[i] = tc
	}

	if additional {
		t.store.appendTestCases(cases, resp.ConversationHistory)
	} else {
		t.store.replaceTestCases(cases, resp.ConversationHistory)
	}
	return cases, nil
}

// Add validates and appends a manually written case. It gets the next id
// above the table's highest numeric id.
func (t *TestCaseTable) Add(tc model.TestCase) (model.TestCase, error) {
	if err := validate(tc); err != nil {
		return model.TestCase{}, err
	}
	tc = tidy(tc)

	err := t.store.editTestCases(func(cases []model.TestCase) ([]model.TestCase, error) {
		tc.ID = strconv.FormatInt(model.MaxNumericID(cases)+1, 10)
		return append(cases, tc), nil
	})
	return tc, err
}

// Update replaces the case with the same id.
func (t *TestCaseTable) Update(tc model.TestCase) error {
	if err := validate(tc); err != nil {
		return err
	}
	tc = tidy(tc)

	return t.store.editTestCases(func(cases []model.TestCase) ([]model.TestCase, error) {
		i := slices.IndexFunc(cases, func(c model.TestCase) bool { return c.ID == tc.ID })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTestCaseNotFound, tc.ID)
		}
		cases[i] = tc
		return cases, nil
	})
}

func (t *TestCaseTable) Delete(id string) error {
	return t.store.editTestCases(func(cases []model.TestCase) ([]model.TestCase, error) {
		i := slices.IndexFunc(cases, func(c model.TestCase) bool { return c.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTestCaseNotFound, id)
		}
		return slices.Delete(cases, i, i+1), nil
	})
}

// SetStatus records an execution result. Aliases such as "passed" are accepted.
func (t *TestCaseTable) SetStatus(id, status string) error {
	st, ok := model.ParseExecutionStatus(status)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	return t.store.editTestCases(func(cases []model.TestCase) ([]model.TestCase, error) {
		i := slices.IndexFunc(cases, func(c model.TestCase) bool { return c.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTestCaseNotFound, id)
		}
		cases[i].ExecutionStatus = st
		return cases, nil
	})
}

// Sort reorders the table. Ties keep their current order.
func (t *TestCaseTable) Sort(field SortField, descending bool) error {
	var compare func(a, b model.TestCase) int
	switch field {
	case SortByID:
		compare = func(a, b model.TestCase) int {
			na, _ := model.NumericID(a.ID)
			nb, _ := model.NumericID(b.ID)
			return cmp.Or(cmp.Compare(na, nb), cmp.Compare(a.ID, b.ID))
		}
	case SortByTitle:
		compare = func(a, b model.TestCase) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortByPriority:
		compare = func(a, b model.TestCase) int {
			return cmp.Compare(rank(a.Priority), rank(b.Priority))
		}
	case SortByStatus:
		compare = func(a, b model.TestCase) int {
			return cmp.Compare(a.ExecutionStatus.Code(), b.ExecutionStatus.Code())
		}
	default:
		return fmt.Errorf("unknown sort field %q", field)
	}

	return t.store.editTestCases(func(cases []model.TestCase) ([]model.TestCase, error) {
		slices.SortStableFunc(cases, func(a, b model.TestCase) int {
			if descending {
				return compare(b, a)
			}
			return compare(a, b)
		})
		return cases, nil
	})
}

// Export writes the table as a workbook and returns the suggested file name.
func (t *TestCaseTable) Export(w io.Writer) (string, error) {
	if err := export.Write(w, t.store.TestCases()); err != nil {
		return "", fmt.Errorf("exporting test cases: %w", err)
	}

	key := ""
	if issue := t.store.ActiveIssue(); issue != nil {
		key = issue.Key
	}
	return export.Filename(key, t.now()), nil
}

// Import replaces the table with the rows of a workbook. The conversation is
// reset since the model never saw the imported cases.
func (t *TestCaseTable) Import(r io.Reader) ([]model.TestCase, error) {
	cases, err := export.Read(r)
	if err != nil {
		return nil, fmt.Errorf("importing test cases: %w", err)
	}
	t.store.replaceTestCases(cases, nil)
	return cases, nil
}

func (t *TestCaseTable) LoadVersions(ctx context.Context) ([]model.Version, error) {
	versions, err := t.tracker.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	t.store.setVersions(versions)
	return versions, nil
}

func (t *TestCaseTable) LoadCycles(ctx context.Context, versionID int64) ([]model.TestCycle, error) {
	cycles, err := t.tracker.ListTestCycles(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("loading test cycles: %w", err)
	}
	t.store.setCycles(cycles)
	return cycles, nil
}

// LoadTargets loads versions, then the cycles of versionID.
func (t *TestCaseTable) LoadTargets(ctx context.Context, versionID int64) error {
	if _, err := t.LoadVersions(ctx); err != nil {
		return err
	}
	_, err := t.LoadCycles(ctx, versionID)
	return err
}

// Push sends the table to the test-management extension. The target is
// checked before any request is made.
func (t *TestCaseTable) Push(ctx context.Context, target PushTarget) (*model.BulkCreateResult, error) {
	st := t.store.Snapshot()

	req, err := t.mapper.ToBulkRequest(st.TestCases, mapper.Target{
		Issue:     st.ActiveIssue,
		SprintID:  sprintID(st),
		VersionID: target.VersionID,
		CycleID:   target.CycleID,
	})
	if err != nil {
		return nil, err
	}

	result, err := t.tracker.BulkCreateTestCases(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("pushing test cases: %w", err)
	}
	return result, nil
}

// PushSummary is the user-facing outcome of a push.
func PushSummary(result *model.BulkCreateResult) string {
	msg := fmt.Sprintf("Successfully imported %d test cases", result.Created)
	if result.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", result.Failed)
	}
	return msg
}

// sprintID resolves the active issue's sprint name against loaded sprints.
func sprintID(st State) int64 {
	if st.ActiveIssue == nil || st.ActiveIssue.Sprint == "" {
		return 0
	}
	for _, s := range st.Sprints {
		if s.Name == st.ActiveIssue.Sprint {
			return s.ID
		}
	}
	return 0
}

func validate(tc model.TestCase) error {
	switch {
	case strings.TrimSpace(tc.Title) == "":
		return fmt.Errorf("%w: title", ErrMissingField)
	case strings.TrimSpace(tc.Steps) == "":
		return fmt.Errorf("%w: steps", ErrMissingField)
	case strings.TrimSpace(tc.ExpectedResult) == "":
		return fmt.Errorf("%w: expected result", ErrMissingField)
	}
	return nil
}

func tidy(tc model.TestCase) model.TestCase {
	tc.Title = strings.TrimSpace(tc.Title)
	tc.Steps = normalize.NormalizeSteps(tc.Steps)
	tc.ExpectedResult = strings.TrimSpace(tc.ExpectedResult)
	if strings.TrimSpace(tc.Priority) == "" {
		tc.Priority = model.DefaultPriority
	}
	tc.ExecutionStatus = tc.ExecutionStatus.Normalize()
	return tc
}

func rank(priority string) int {
	if r, ok := priorityRank[strings.ToLower(strings.TrimSpace(priority))]; ok {
		return r
	}
	return len(priorityRank)
}
