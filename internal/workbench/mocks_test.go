package workbench_test

import (
	"context"
	"sync"

	"github.com/mario1918/testCaseGenie-NG/internal/http/dto"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

type mockRelay struct {
	generateFn func(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error)
	healthFn   func(ctx context.Context) error

	mu       sync.Mutex
	requests []dto.GenerateRequest
}

func (m *mockRelay) Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return &dto.GenerateResponse{}, nil
}

func (m *mockRelay) Health(ctx context.Context) error {
	if m.healthFn != nil {
		return m.healthFn(ctx)
	}
	return nil
}

type mockTracker struct {
	searchIssuesFn   func(ctx context.Context, filter model.IssueFilter, startAt, maxResults int) (*model.IssuePage, error)
	listComponentsFn func(ctx context.Context) ([]model.Component, error)
	listSprintsFn    func(ctx context.Context, boardID int) ([]model.Sprint, error)
	listBoardsFn     func(ctx context.Context) ([]model.Board, error)
	listVersionsFn   func(ctx context.Context) ([]model.Version, error)
	listCyclesFn     func(ctx context.Context, versionID int64) ([]model.TestCycle, error)
	bulkCreateFn     func(ctx context.Context, req *model.BulkCreateRequest) (*model.BulkCreateResult, error)
	healthFn         func(ctx context.Context) error
}

func (m *mockTracker) SearchIssues(ctx context.Context, filter model.IssueFilter, startAt, maxResults int) (*model.IssuePage, error) {
	if m.searchIssuesFn != nil {
		return m.searchIssuesFn(ctx, filter, startAt, maxResults)
	}
	return &model.IssuePage{StartAt: startAt, MaxResults: maxResults}, nil
}

func (m *mockTracker) ListComponents(ctx context.Context) ([]model.Component, error) {
	if m.listComponentsFn != nil {
		return m.listComponentsFn(ctx)
	}
	return nil, nil
}

func (m *mockTracker) ListSprints(ctx context.Context, boardID int) ([]model.Sprint, error) {
	if m.listSprintsFn != nil {
		return m.listSprintsFn(ctx, boardID)
	}
	return nil, nil
}

func (m *mockTracker) ListBoards(ctx context.Context) ([]model.Board, error) {
	if m.listBoardsFn != nil {
		return m.listBoardsFn(ctx)
	}
	return nil, nil
}

func (m *mockTracker) ListVersions(ctx context.Context) ([]model.Version, error) {
	if m.listVersionsFn != nil {
		return m.listVersionsFn(ctx)
	}
	return nil, nil
}

func (m *mockTracker) ListTestCycles(ctx context.Context, versionID int64) ([]model.TestCycle, error) {
	if m.listCyclesFn != nil {
		return m.listCyclesFn(ctx, versionID)
	}
	return nil, nil
}

func (m *mockTracker) BulkCreateTestCases(ctx context.Context, req *model.BulkCreateRequest) (*model.BulkCreateResult, error) {
	if m.bulkCreateFn != nil {
		return m.bulkCreateFn(ctx, req)
	}
	return &model.BulkCreateResult{Success: true, Created: len(req.TestCases)}, nil
}

func (m *mockTracker) Health(ctx context.Context) error {
	if m.healthFn != nil {
		return m.healthFn(ctx)
	}
	return nil
}

// issuesPage builds a page holding the given issue keys.
func issuesPage(total, startAt, maxResults int, keys ...string) *model.IssuePage {
	page := &model.IssuePage{Total: total, StartAt: startAt, MaxResults: maxResults}
	for _, k := range keys {
		page.Issues = append(page.Issues, model.Issue{Key: k, Summary: "Summary " + k, Description: "Story of " + k})
	}
	return page
}
