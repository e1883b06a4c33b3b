package workbench_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/workbench"
)

var _ = Describe("Store", func() {
	var (
		wb      *workbench.Workbench
		tracker *mockTracker
	)

	BeforeEach(func() {
		tracker = &mockTracker{
			searchIssuesFn: func(_ context.Context, _ model.IssueFilter, startAt, maxResults int) (*model.IssuePage, error) {
				return issuesPage(1, startAt, maxResults, "SE2-1"), nil
			},
		}
		wb = workbench.New(workbench.Config{PageSize: 10}, &mockRelay{}, tracker)
	})

	It("notifies subscribers of changes", func() {
		var events []workbench.Event
		cancel := wb.Store.Subscribe(func(ev workbench.Event) { events = append(events, ev) })

		Expect(wb.Browser.Search(context.Background(), model.IssueFilter{})).To(Succeed())
		Expect(events).To(ContainElement(workbench.EventIssues))
		Expect(events).To(ContainElement(workbench.EventLoading))

		cancel()
		events = nil
		_, err := wb.Browser.Select("SE2-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	It("hands out copies", func() {
		Expect(wb.Browser.Search(context.Background(), model.IssueFilter{})).To(Succeed())

		snap := wb.Store.Snapshot()
		snap.Page.Issues[0].Key = "changed"

		Expect(wb.Store.Snapshot().Page.Issues[0].Key).To(Equal("SE2-1"))
	})
})
