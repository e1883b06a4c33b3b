package workbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/tracker"
)

var (
	ErrNoNextPage     = errors.New("already on the last page")
	ErrNoPreviousPage = errors.New("already on the first page")
	ErrIssueNotFound  = errors.New("issue is not on the current page")
	// ErrSuperseded means a newer request started before this one finished;
	// its result was dropped.
	ErrSuperseded = errors.New("request superseded by a newer one")
)

// IssueBrowser searches and pages through tracker issues.
type IssueBrowser struct {
	tracker  tracker.Tracker
	store    *Store
	pageSize int
	boardID  int

	// generation is bumped by every issue query; a response is applied only
	// if no newer query started meanwhile.
	generation atomic.Uint64
}

func newIssueBrowser(tr tracker.Tracker, store *Store, pageSize, boardID int) *IssueBrowser {
	return &IssueBrowser{tracker: tr, store: store, pageSize: pageSize, boardID: boardID}
}

// Search runs filter from the first page.
func (b *IssueBrowser) Search(ctx context.Context, filter model.IssueFilter) error {
	return b.load(ctx, filter, 0)
}

func (b *IssueBrowser) Next(ctx context.Context) error {
	st := b.store.Snapshot()
	if !HasNext(st.Page) {
		return ErrNoNextPage
	}
	return b.load(ctx, st.Filter, st.Page.StartAt+b.pageSize)
}

func (b *IssueBrowser) Previous(ctx context.Context) error {
	st := b.store.Snapshot()
	if !HasPrevious(st.Page) {
		return ErrNoPreviousPage
	}
	return b.load(ctx, st.Filter, max(st.Page.StartAt-b.pageSize, 0))
}

// ClearFilters drops every filter and goes back to the first page.
func (b *IssueBrowser) ClearFilters(ctx context.Context) error {
	return b.load(ctx, model.IssueFilter{}, 0)
}

// Reload fetches the current page again.
func (b *IssueBrowser) Reload(ctx context.Context) error {
	st := b.store.Snapshot()
	return b.load(ctx, st.Filter, st.Page.StartAt)
}

func (b *IssueBrowser) load(ctx context.Context, filter model.IssueFilter, startAt int) error {
	gen := b.generation.Add(1)
	b.store.setLoading(true)
	defer func() {
		if b.generation.Load() == gen {
			b.store.setLoading(false)
		}
	}()

	page, err := b.tracker.SearchIssues(ctx, filter, startAt, b.pageSize)
	if b.generation.Load() != gen {
		slog.DebugContext(ctx, "dropping stale issue page", "start_at", startAt)
		return ErrSuperseded
	}
	if err != nil {
		return fmt.Errorf("loading issues: %w", err)
	}

	if page.MaxResults == 0 {
		page.MaxResults = b.pageSize
	}
	b.store.setIssues(filter, *page)
	return nil
}

// Select makes the issue with key the active one.
func (b *IssueBrowser) Select(key string) (*model.Issue, error) {
	key = strings.TrimSpace(key)
	for _, issue := range b.store.Snapshot().Page.Issues {
		if strings.EqualFold(issue.Key, key) {
			b.store.selectIssue(issue)
			return &issue, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, key)
}

func (b *IssueBrowser) LoadComponents(ctx context.Context) ([]model.Component, error) {
	components, err := b.tracker.ListComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading components: %w", err)
	}
	b.store.setComponents(components)
	return components, nil
}

// LoadSprints lists the sprints of boardID, or of the configured board when 0.
func (b *IssueBrowser) LoadSprints(ctx context.Context, boardID int) ([]model.Sprint, error) {
	if boardID == 0 {
		boardID = b.boardID
	}
	sprints, err := b.tracker.ListSprints(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("loading sprints: %w", err)
	}
	b.store.setSprints(sprints)
	return sprints, nil
}

func (b *IssueBrowser) LoadBoards(ctx context.Context) ([]model.Board, error) {
	boards, err := b.tracker.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading boards: %w", err)
	}
	b.store.setBoards(boards)
	return boards, nil
}

// PaginationInfo renders "1-50 of 120 items", or "0 items" for an empty result.
func PaginationInfo(page model.IssuePage) string {
	if page.Total == 0 {
		return "0 items"
	}
	end := min(page.StartAt+page.MaxResults, page.Total)
	if page.MaxResults == 0 {
		end = page.StartAt + len(page.Issues)
	}
	return fmt.Sprintf("%d-%d of %d items", page.StartAt+1, end, page.Total)
}

func HasNext(page model.IssuePage) bool {
	return page.MaxResults > 0 && page.StartAt+page.MaxResults < page.Total
}

func HasPrevious(page model.IssuePage) bool {
	return page.StartAt > 0
}
