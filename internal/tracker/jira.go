package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mario1918/testCaseGenie-NG/common/httpclient"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

// JiraProxyConfig addresses the tracker proxy that fronts Jira and Zephyr.
type JiraProxyConfig struct {
	BaseURL    string // e.g. http://localhost:8000/api
	ProjectKey string
	BoardID    int
}

type jiraProxy struct {
	client     *retryablehttp.Client
	baseURL    string
	projectKey string
	boardID    int
}

func NewJiraProxy(cfg JiraProxyConfig, client *retryablehttp.Client) Tracker {
	if client == nil {
		client = httpclient.New(httpclient.Config{})
	}
	return &jiraProxy{
		client:     client,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		projectKey: cfg.ProjectKey,
		boardID:    cfg.BoardID,
	}
}

func (j *jiraProxy) SearchIssues(ctx context.Context, filter model.IssueFilter, startAt, maxResults int) (*model.IssuePage, error) {
	q := url.Values{}
	q.Set("project_key", j.projectKey)
	q.Set("start_at", strconv.Itoa(startAt))
	q.Set("max_results", strconv.Itoa(maxResults))
	if filter.IssueType != "" {
		q.Set("issue_type", filter.IssueType)
	}
	if filter.Component != "" {
		q.Set("component", filter.Component)
	}
	if filter.Sprint != "" {
		q.Set("sprint", filter.Sprint)
	}
	if jql := BuildJQL(filter); jql != "" {
		q.Set("jql_filter", jql)
	}

	var page model.IssuePage
	if err := j.get(ctx, "/jira/test-cases/paginated", q, &page); err != nil {
		return nil, fmt.Errorf("searching issues: %w", err)
	}
	if page.Issues == nil {
		page.Issues = []model.Issue{}
	}
	return &page, nil
}

func (j *jiraProxy) ListComponents(ctx context.Context) ([]model.Component, error) {
	q := url.Values{"project_key": {j.projectKey}}

	var wire []struct {
		ID   any    `json:"id"`
		Name string `json:"name"`
	}
	if err := j.getList(ctx, "/jira/components", q, &wire, "components", "values"); err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}

	components := make([]model.Component, len(wire))
	for i, c := range wire {
		id, _ := model.IDString(c.ID)
		components[i] = model.Component{ID: id, Name: c.Name}
	}
	return components, nil
}

func (j *jiraProxy) ListSprints(ctx context.Context, boardID int) ([]model.Sprint, error) {
	if boardID == 0 {
		boardID = j.boardID
	}
	q := url.Values{"board_id": {strconv.Itoa(boardID)}}

	var wire []struct {
		ID    flexID `json:"id"`
		Name  string `json:"name"`
		State string `json:"state"`
	}
	if err := j.getList(ctx, "/jira/sprints/ordered", q, &wire, "sprints", "values"); err != nil {
		return nil, fmt.Errorf("listing sprints for board %d: %w", boardID, err)
	}

	sprints := make([]model.Sprint, len(wire))
	for i, s := range wire {
		sprints[i] = model.Sprint{ID: int64(s.ID), Name: s.Name, State: s.State}
	}
	return sprints, nil
}

func (j *jiraProxy) ListBoards(ctx context.Context) ([]model.Board, error) {
	q := url.Values{"project_key": {j.projectKey}}

	var wire []struct {
		ID   flexID `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := j.getList(ctx, "/jira/boards", q, &wire, "boards", "values"); err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}

	boards := make([]model.Board, len(wire))
	for i, b := range wire {
		boards[i] = model.Board{ID: int64(b.ID), Name: b.Name, Type: b.Type}
	}
	return boards, nil
}

func (j *jiraProxy) ListVersions(ctx context.Context) ([]model.Version, error) {
	q := url.Values{"all": {"true"}, "max_per_page": {"50"}}

	var wire []struct {
		ID          flexID `json:"id"`
		Name        string `json:"name"`
		Released    bool   `json:"released"`
		ReleaseDate string `json:"releaseDate"`
	}
	if err := j.getList(ctx, "/jira/versions", q, &wire, "versions", "values"); err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	versions := make([]model.Version, len(wire))
	for i, v := range wire {
		versions[i] = model.Version{ID: int64(v.ID), Name: v.Name, Released: v.Released, ReleaseDate: v.ReleaseDate}
	}
	SortVersions(versions)
	return versions, nil
}

func (j *jiraProxy) ListTestCycles(ctx context.Context, versionID int64) ([]model.TestCycle, error) {
	q := url.Values{
		"version_id": {strconv.FormatInt(versionID, 10)},
		"offset":     {"0"},
		"limit":      {"50"},
	}

	var wire []struct {
		ID        flexID `json:"id"`
		Name      string `json:"name"`
		VersionID flexID `json:"versionId"`
	}
	if err := j.getList(ctx, "/zephyr/cycles", q, &wire, "items", "cycles", "data"); err != nil {
		return nil, fmt.Errorf("listing test cycles for version %d: %w", versionID, err)
	}

	cycles := make([]model.TestCycle, len(wire))
	for i, c := range wire {
		cycles[i] = model.TestCycle{ID: int64(c.ID), Name: c.Name, VersionID: int64(c.VersionID)}
	}
	SortCycles(cycles)
	return cycles, nil
}

func (j *jiraProxy) BulkCreateTestCases(ctx context.Context, req *model.BulkCreateRequest) (*model.BulkCreateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding bulk request: %w", err)
	}

	raw, err := j.do(ctx, http.MethodPost, "/test-cases/bulk/full-create", nil, body)
	if err != nil {
		return nil, fmt.Errorf("creating test cases: %w", err)
	}

	result := decodeBulkResult(raw, len(req.TestCases))
	slog.InfoContext(ctx, "test cases pushed to tracker",
		"created", result.Created,
		"failed", result.Failed,
		"version_id", req.VersionID,
		"cycle_id", req.CycleID)
	return result, nil
}

func (j *jiraProxy) Health(ctx context.Context) error {
	if _, err := j.do(ctx, http.MethodGet, "/jira/health", nil, nil); err != nil {
		return fmt.Errorf("tracker health: %w", err)
	}
	return nil
}

func (j *jiraProxy) get(ctx context.Context, path string, q url.Values, out any) error {
	raw, err := j.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// getList decodes either a bare JSON array or an object holding the array
// under the first matching key.
func (j *jiraProxy) getList(ctx context.Context, path string, q url.Values, out any, keys ...string) error {
	raw, err := j.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	list, err := unwrapList(raw, keys)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := json.Unmarshal(list, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (j *jiraProxy) do(ctx context.Context, method, path string, q url.Values, body []byte) ([]byte, error) {
	u := j.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody any
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := httpclient.CheckResponse(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func unwrapList(raw []byte, keys []string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return json.RawMessage("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	for _, key := range keys {
		if list, ok := obj[key]; ok {
			return list, nil
		}
	}
	return nil, fmt.Errorf("no list under any of %v", keys)
}

// decodeBulkResult reads the proxy answer. The proxy has returned both counts
// and lists of created items; a body without either counts every case as
// created since the request itself succeeded.
func decodeBulkResult(raw []byte, sent int) *model.BulkCreateResult {
	var wire struct {
		Success *bool           `json:"success"`
		Created json.RawMessage `json:"created"`
		Failed  json.RawMessage `json:"failed"`
	}
	result := &model.BulkCreateResult{Success: true, Created: sent}
	if json.Unmarshal(raw, &wire) != nil {
		return result
	}
	if wire.Success != nil {
		result.Success = *wire.Success
	}
	if n, ok := count(wire.Created); ok {
		result.Created = n
	}
	if n, ok := count(wire.Failed); ok {
		result.Failed = n
	}
	return result
}

func count(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n, true
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		return len(list), true
	}
	return 0, false
}

// flexID accepts ids sent either as JSON numbers or numeric strings.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*f = flexID(n)
	return nil
}
