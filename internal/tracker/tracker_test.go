package tracker_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/tracker"
)

var _ = Describe("BuildJQL", func() {
	DescribeTable("query building",
		func(f model.IssueFilter, want string) {
			Expect(tracker.BuildJQL(f)).To(Equal(want))
		},
		Entry("empty", model.IssueFilter{}, ""),
		Entry("type only", model.IssueFilter{IssueType: "Story"}, `issuetype = "Story"`),
		Entry("all fields",
			model.IssueFilter{IssueType: "Bug", Component: "Supply Chain", Sprint: "Sprint 12"},
			`issuetype = "Bug" AND component = "Supply Chain" AND sprint = "Sprint 12"`),
		Entry("literal JQL wins",
			model.IssueFilter{IssueType: "Bug", JQL: " project = SE2 ORDER BY created DESC "},
			"project = SE2 ORDER BY created DESC"),
	)
})

var _ = Describe("sorting", func() {
	It("orders versions newest first with undated ones last", func() {
		versions := []model.Version{
			{ID: 1, Name: "b-undated"},
			{ID: 2, Name: "1.0", ReleaseDate: "2024-01-10"},
			{ID: 3, Name: "a-undated"},
			{ID: 4, Name: "2.0", ReleaseDate: "2024-06-01"},
		}
		tracker.SortVersions(versions)

		names := make([]string, len(versions))
		for i, v := range versions {
			names[i] = v.Name
		}
		Expect(names).To(Equal([]string{"2.0", "1.0", "a-undated", "b-undated"}))
	})

	It("orders cycles by name ignoring case", func() {
		cycles := []model.TestCycle{{Name: "regression"}, {Name: "Ad hoc"}, {Name: "Smoke"}}
		tracker.SortCycles(cycles)
		Expect(cycles[0].Name).To(Equal("Ad hoc"))
		Expect(cycles[1].Name).To(Equal("regression"))
		Expect(cycles[2].Name).To(Equal("Smoke"))
	})
})
