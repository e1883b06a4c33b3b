package workbench

import (
	"slices"
	"sync"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

// Event names the part of the state that changed.
type Event string

const (
	EventIssues        Event = "issues"
	EventFilterOptions Event = "filter_options"
	EventActiveIssue   Event = "active_issue"
	EventTestCases     Event = "test_cases"
	EventHistory       Event = "history"
	EventTargets       Event = "targets"
	EventLoading       Event = "loading"
)

// State is a point-in-time copy of the workbench state.
type State struct {
	Filter      model.IssueFilter
	Page        model.IssuePage
	Loading     bool
	ActiveIssue *model.Issue

	Components []model.Component
	Sprints    []model.Sprint
	Boards     []model.Board

	TestCases []model.TestCase
	History   []model.ConversationMessage

	Versions []model.Version
	Cycles   []model.TestCycle
}

// Store owns the mutable state. Every change goes through one of its methods
// and is announced to subscribers after the lock is released.
type Store struct {
	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(Event))}
}

// Subscribe registers fn for change events and returns its cancel func.
// Callbacks run synchronously on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Page.Issues = slices.Clone(s.state.Page.Issues)
	if s.state.ActiveIssue != nil {
		issue := *s.state.ActiveIssue
		st.ActiveIssue = &issue
	}
	st.Components = slices.Clone(s.state.Components)
	st.Sprints = slices.Clone(s.state.Sprints)
	st.Boards = slices.Clone(s.state.Boards)
	st.TestCases = slices.Clone(s.state.TestCases)
	st.History = slices.Clone(s.state.History)
	st.Versions = slices.Clone(s.state.Versions)
	st.Cycles = slices.Clone(s.state.Cycles)
	return st
}

func (s *Store) TestCases() []model.TestCase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.TestCases)
}

func (s *Store) History() []model.ConversationMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.History)
}

func (s *Store) ActiveIssue() *model.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.ActiveIssue == nil {
		return nil
	}
	issue := *s.state.ActiveIssue
	return &issue
}

func (s *Store) update(fn func(*State), events ...Event) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.notify(events...)
}

func (s *Store) notify(events ...Event) {
	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (s *Store) setLoading(loading bool) {
	s.update(func(st *State) { st.Loading = loading }, EventLoading)
}

func (s *Store) setIssues(filter model.IssueFilter, page model.IssuePage) {
	s.update(func(st *State) {
		st.Filter = filter
		st.Page = page
	}, EventIssues)
}

func (s *Store) setComponents(components []model.Component) {
	s.update(func(st *State) { st.Components = components }, EventFilterOptions)
}

func (s *Store) setSprints(sprints []model.Sprint) {
	s.update(func(st *State) { st.Sprints = sprints }, EventFilterOptions)
}

func (s *Store) setBoards(boards []model.Board) {
	s.update(func(st *State) { st.Boards = boards }, EventFilterOptions)
}

// selectIssue makes issue active. Switching issues drops the table and the
// conversation since both belong to the previous issue.
func (s *Store) selectIssue(issue model.Issue) {
	s.update(func(st *State) {
		if st.ActiveIssue == nil || st.ActiveIssue.Key != issue.Key {
			st.TestCases = nil
			st.History = nil
		}
		st.ActiveIssue = &issue
	}, EventActiveIssue, EventTestCases, EventHistory)
}

func (s *Store) replaceTestCases(cases []model.TestCase, history []model.ConversationMessage) {
	s.update(func(st *State) {
		st.TestCases = cases
		st.History = history
	}, EventTestCases, EventHistory)
}

func (s *Store) appendTestCases(cases []model.TestCase, history []model.ConversationMessage) {
	s.update(func(st *State) {
		st.TestCases = append(st.TestCases, cases...)
		st.History = history
	}, EventTestCases, EventHistory)
}

// editTestCases applies fn to a copy of the table under the lock. The table
// is replaced, and subscribers told, only when fn succeeds.
func (s *Store) editTestCases(fn func([]model.TestCase) ([]model.TestCase, error)) error {
	s.mu.Lock()
	next, err := fn(slices.Clone(s.state.TestCases))
	if err == nil {
		s.state.TestCases = next
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(EventTestCases)
	return nil
}

func (s *Store) setVersions(versions []model.Version) {
	s.update(func(st *State) { st.Versions = versions }, EventTargets)
}

func (s *Store) setCycles(cycles []model.TestCycle) {
	s.update(func(st *State) { st.Cycles = cycles }, EventTargets)
}
