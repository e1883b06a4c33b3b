package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

const (
	adHocCycleID   = -1
	adHocCycleName = "Ad hoc"
	priorityLabel  = "priority::"
	statusLabel    = "status::"
)

type GitLabConfig struct {
	URL        string // instance URL, empty for gitlab.com
	Token      string
	Project    string // id or path with namespace
	MaxRetries int
}

// gitLabTracker maps the tracker surface onto one GitLab project: labels are
// components, milestones are sprints and versions, and pushed test cases
// become issues of type test_case.
type gitLabTracker struct {
	client  *gitlab.Client
	project string
}

func NewGitLab(cfg GitLabConfig) (Tracker, error) {
	opts := []gitlab.ClientOptionFunc{gitlab.WithCustomRetryMax(cfg.MaxRetries)}
	if cfg.URL != "" {
		opts = append(opts, gitlab.WithBaseURL(strings.TrimSuffix(cfg.URL, "/")+"/api/v4"))
	}

	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &gitLabTracker{client: client, project: cfg.Project}, nil
}

func (g *gitLabTracker) SearchIssues(ctx context.Context, filter model.IssueFilter, startAt, maxResults int) (*model.IssuePage, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	opts := &gitlab.ListProjectIssuesOptions{}
	setInt(&opts.Page, startAt/maxResults+1)
	setInt(&opts.PerPage, maxResults)
	if filter.IssueType != "" {
		opts.IssueType = gitlab.Ptr(strings.ToLower(filter.IssueType))
	}
	if filter.Component != "" {
		opts.Labels = &gitlab.LabelOptions{filter.Component}
	}
	if filter.Sprint != "" {
		opts.Milestone = gitlab.Ptr(filter.Sprint)
	}
	if search := strings.TrimSpace(filter.JQL); search != "" {
		opts.Search = gitlab.Ptr(search)
	}

	issues, resp, err := g.client.Issues.ListProjectIssues(g.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing gitlab issues: %w", err)
	}

	page := &model.IssuePage{
		Issues:     make([]model.Issue, 0, len(issues)),
		Total:      len(issues),
		StartAt:    startAt,
		MaxResults: maxResults,
	}
	if resp != nil && resp.TotalItems > 0 {
		page.Total = int(resp.TotalItems)
	}
	for _, i := range issues {
		if i != nil {
			page.Issues = append(page.Issues, g.mapToIssue(i))
		}
	}
	return page, nil
}

func (g *gitLabTracker) ListComponents(ctx context.Context) ([]model.Component, error) {
	opts := &gitlab.ListLabelsOptions{}
	setInt(&opts.PerPage, 100)

	labels, _, err := g.client.Labels.ListLabels(g.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing gitlab labels: %w", err)
	}

	components := make([]model.Component, 0, len(labels))
	for _, l := range labels {
		// scoped labels carry priority and status, not components
		if l == nil || strings.Contains(l.Name, "::") {
			continue
		}
		components = append(components, model.Component{
			ID:   strconv.FormatInt(int64(l.ID), 10),
			Name: l.Name,
		})
	}
	return components, nil
}

func (g *gitLabTracker) ListSprints(ctx context.Context, _ int) ([]model.Sprint, error) {
	milestones, err := g.milestones(ctx, "active")
	if err != nil {
		return nil, err
	}

	sprints := make([]model.Sprint, 0, len(milestones))
	for _, m := range milestones {
		sprints = append(sprints, model.Sprint{ID: int64(m.ID), Name: m.Title, State: m.State})
	}
	return sprints, nil
}

func (g *gitLabTracker) ListBoards(ctx context.Context) ([]model.Board, error) {
	boards, _, err := g.client.Boards.ListIssueBoards(g.project, &gitlab.ListIssueBoardsOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing gitlab boards: %w", err)
	}

	out := make([]model.Board, 0, len(boards))
	for _, b := range boards {
		if b != nil {
			out = append(out, model.Board{ID: int64(b.ID), Name: b.Name})
		}
	}
	return out, nil
}

func (g *gitLabTracker) ListVersions(ctx context.Context) ([]model.Version, error) {
	milestones, err := g.milestones(ctx, "")
	if err != nil {
		return nil, err
	}

	versions := make([]model.Version, 0, len(milestones))
	for _, m := range milestones {
		v := model.Version{ID: int64(m.ID), Name: m.Title, Released: m.State == "closed"}
		if m.DueDate != nil {
			v.ReleaseDate = m.DueDate.String()
		}
		versions = append(versions, v)
	}
	SortVersions(versions)
	return versions, nil
}

// ListTestCycles returns the single ad hoc cycle; GitLab has no cycles.
func (g *gitLabTracker) ListTestCycles(_ context.Context, versionID int64) ([]model.TestCycle, error) {
	return []model.TestCycle{{ID: adHocCycleID, Name: adHocCycleName, VersionID: versionID}}, nil
}

// BulkCreateTestCases creates one test_case issue per item. Items are created
// independently; failures are counted and logged, not fatal.
func (g *gitLabTracker) BulkCreateTestCases(ctx context.Context, req *model.BulkCreateRequest) (*model.BulkCreateResult, error) {
	result := &model.BulkCreateResult{}

	for _, tc := range req.TestCases {
		labels := gitlab.LabelOptions(append(append([]string{}, tc.Components...),
			statusLabel+string(model.StatusFromCode(tc.ExecutionStatus.ID))))

		opts := &gitlab.CreateIssueOptions{
			Title:       gitlab.Ptr(tc.Summary),
			Description: gitlab.Ptr(renderDescription(tc)),
			IssueType:   gitlab.Ptr("test_case"),
			Labels:      &labels,
		}
		if tc.VersionID > 0 {
			setIntPtr(&opts.MilestoneID, tc.VersionID)
		}

		if _, _, err := g.client.Issues.CreateIssue(g.project, opts, gitlab.WithContext(ctx)); err != nil {
			result.Failed++
			slog.WarnContext(ctx, "failed to create gitlab test case", "error", err, "title", tc.Summary)
			continue
		}
		result.Created++
	}

	if result.Created == 0 && result.Failed > 0 {
		return nil, fmt.Errorf("creating gitlab test cases: all %d failed", result.Failed)
	}
	result.Success = result.Failed == 0
	return result, nil
}

func (g *gitLabTracker) Health(ctx context.Context) error {
	if _, _, err := g.client.Projects.GetProject(g.project, nil, gitlab.WithContext(ctx)); err != nil {
		return fmt.Errorf("gitlab health: %w", err)
	}
	return nil
}

func (g *gitLabTracker) milestones(ctx context.Context, state string) ([]*gitlab.Milestone, error) {
	opts := &gitlab.ListMilestonesOptions{}
	setInt(&opts.PerPage, 100)
	if state != "" {
		opts.State = gitlab.Ptr(state)
	}

	milestones, _, err := g.client.Milestones.ListMilestones(g.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing gitlab milestones: %w", err)
	}

	out := milestones[:0]
	for _, m := range milestones {
		if m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (g *gitLabTracker) mapToIssue(i *gitlab.Issue) model.Issue {
	issue := model.Issue{
		Key:         fmt.Sprintf("#%d", i.IID),
		Summary:     i.Title,
		Description: i.Description,
		Type:        "Issue",
		Status:      i.State,
	}

	for _, l := range i.Labels {
		switch {
		case strings.HasPrefix(l, priorityLabel):
			issue.Priority = strings.TrimPrefix(l, priorityLabel)
		case strings.Contains(l, "::"):
		default:
			issue.Components = append(issue.Components, l)
		}
	}
	if len(issue.Components) > 0 {
		issue.Component = issue.Components[0]
	}

	if i.Assignee != nil {
		issue.Assignee = i.Assignee.Name
	}
	if i.Author != nil {
		issue.Reporter = i.Author.Name
	}
	if i.Milestone != nil {
		issue.Sprint = i.Milestone.Title
	}
	if i.CreatedAt != nil {
		issue.Created = i.CreatedAt.Format(time.RFC3339)
	}
	if i.UpdatedAt != nil {
		issue.Updated = i.UpdatedAt.Format(time.RFC3339)
	}
	return issue
}

func renderDescription(tc model.BulkTestCase) string {
	var b strings.Builder
	b.WriteString(tc.Description)
	if len(tc.Steps) > 0 {
		b.WriteString("\n\n## Steps\n")
		for n, s := range tc.Steps {
			fmt.Fprintf(&b, "%d. %s\n", n+1, s.StepDescription)
			if s.Result != "" {
				fmt.Fprintf(&b, "   - Expected: %s\n", s.Result)
			}
		}
	}
	if len(tc.RelatedIssues) > 0 {
		fmt.Fprintf(&b, "\nRelated: %s\n", strings.Join(tc.RelatedIssues, ", "))
	}
	return b.String()
}

// setInt and setIntPtr fill client-go option fields whatever their integer width.
func setInt[T ~int | ~int64](field *T, v int) {
	*field = T(v)
}

func setIntPtr[T ~int | ~int64](field **T, v int64) {
	n := T(v)
	*field = &n
}
