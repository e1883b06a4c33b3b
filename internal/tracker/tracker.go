// Package tracker reads issues and test-management data from the issue
// tracker and pushes curated test cases back.
package tracker

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

var ErrNotSupported = errors.New("operation not supported by this tracker")

type Tracker interface {
	SearchIssues(ctx context.Context, filter model.IssueFilter, startAt, maxResults int) (*model.IssuePage, error)
	ListComponents(ctx context.Context) ([]model.Component, error)
	ListSprints(ctx context.Context, boardID int) ([]model.Sprint, error)
	ListBoards(ctx context.Context) ([]model.Board, error)
	ListVersions(ctx context.Context) ([]model.Version, error)
	ListTestCycles(ctx context.Context, versionID int64) ([]model.TestCycle, error)
	BulkCreateTestCases(ctx context.Context, req *model.BulkCreateRequest) (*model.BulkCreateResult, error)
	Health(ctx context.Context) error
}

// BuildJQL returns the literal query when set, otherwise ANDs the individual
// filters together. An empty filter gives "".
func BuildJQL(f model.IssueFilter) string {
	if jql := strings.TrimSpace(f.JQL); jql != "" {
		return jql
	}

	var clauses []string
	if f.IssueType != "" {
		clauses = append(clauses, fmt.Sprintf("issuetype = %q", f.IssueType))
	}
	if f.Component != "" {
		clauses = append(clauses, fmt.Sprintf("component = %q", f.Component))
	}
	if f.Sprint != "" {
		clauses = append(clauses, fmt.Sprintf("sprint = %q", f.Sprint))
	}
	return strings.Join(clauses, " AND ")
}

// SortVersions orders versions newest release first. Versions without a
// parseable release date go last, by name.
func SortVersions(versions []model.Version) {
	slices.SortStableFunc(versions, func(a, b model.Version) int {
		ta, okA := releaseDate(a.ReleaseDate)
		tb, okB := releaseDate(b.ReleaseDate)
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return cmp.Compare(a.Name, b.Name)
		}
	})
}

func releaseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func SortCycles(cycles []model.TestCycle) {
	slices.SortStableFunc(cycles, func(a, b model.TestCycle) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
