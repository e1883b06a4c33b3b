// Package workbench is the client side of the tool: it browses tracker
// issues, drives generation through the relay, and curates the resulting
// test cases before they are exported or pushed back to the tracker.
package workbench

import (
	"context"
	"sync"
	"time"

	"github.com/mario1918/testCaseGenie-NG/internal/mapper"
	"github.com/mario1918/testCaseGenie-NG/internal/tracker"
)

type Config struct {
	PageSize         int
	BoardID          int
	DefaultComponent string
	Now              func() time.Time // defaults to time.Now
}

type Workbench struct {
	Store   *Store
	Browser *IssueBrowser
	Table   *TestCaseTable

	relay   Relay
	tracker tracker.Tracker
}

func New(cfg Config, relay Relay, tr tracker.Tracker) *Workbench {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	store := NewStore()
	return &Workbench{
		Store:   store,
		Browser: newIssueBrowser(tr, store, cfg.PageSize, cfg.BoardID),
		Table:   newTestCaseTable(relay, tr, mapper.NewZephyrMapper(cfg.DefaultComponent), store, cfg.Now),
		relay:   relay,
		tracker: tr,
	}
}

// ConnectionStatus holds the health probe outcome per service; nil is healthy.
type ConnectionStatus struct {
	Relay   error
	Tracker error
}

func (s ConnectionStatus) OK() bool {
	return s.Relay == nil && s.Tracker == nil
}

// CheckConnections probes the relay and the tracker in parallel.
func (w *Workbench) CheckConnections(ctx context.Context) ConnectionStatus {
	var (
		status ConnectionStatus
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		status.Relay = w.relay.Health(ctx)
	}()
	go func() {
		defer wg.Done()
		status.Tracker = w.tracker.Health(ctx)
	}()
	wg.Wait()
	return status
}
