package mapper_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/internal/mapper"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

var _ = Describe("ZephyrMapper", func() {
	var (
		m      *mapper.ZephyrMapper
		issue  *model.Issue
		cases  []model.TestCase
		target mapper.Target
	)

	ptr := func(v int64) *int64 { return &v }

	BeforeEach(func() {
		m = mapper.NewZephyrMapper("Supply Chain")
		issue = &model.Issue{Key: "SE2-10", Components: []string{"Billing"}}
		cases = []model.TestCase{
			{ID: "1", Title: "Pay invoice", Steps: "1. Open invoice 2. Click pay 3. Page should show receipt", ExecutionStatus: model.StatusPass},
			{ID: "2", Title: "Cancel", Steps: "Click cancel", ExecutionStatus: model.StatusWIP},
		}
		target = mapper.Target{Issue: issue, SprintID: 77, VersionID: ptr(-1), CycleID: ptr(12)}
	})

	Describe("Validate", func() {
		It("requires a version", func() {
			target.VersionID = nil
			_, err := m.ToBulkRequest(cases, target)
			Expect(err).To(MatchError(mapper.ErrVersionRequired))
		})

		It("requires a cycle", func() {
			target.CycleID = nil
			_, err := m.ToBulkRequest(cases, target)
			Expect(err).To(MatchError(mapper.ErrCycleRequired))
		})

		It("requires at least one case", func() {
			_, err := m.ToBulkRequest(nil, target)
			Expect(err).To(MatchError(mapper.ErrNoTestCases))
		})
	})

	It("builds one item per case with the chosen version and cycle", func() {
		req, err := m.ToBulkRequest(cases, target)
		Expect(err).NotTo(HaveOccurred())

		Expect(req.VersionID).To(Equal(int64(-1)))
		Expect(req.CycleID).To(Equal(int64(12)))
		Expect(req.TestCases).To(HaveLen(2))

		first := req.TestCases[0]
		Expect(first.Summary).To(Equal("Pay invoice"))
		Expect(first.Description).To(Equal("Pay invoice"))
		Expect(first.Components).To(Equal([]string{"Billing"}))
		Expect(first.RelatedIssues).To(Equal([]string{"SE2-10"}))
		Expect(first.SprintID).To(Equal(int64(77)))
		Expect(first.VersionID).To(Equal(int64(-1)))
		Expect(first.CycleID).To(Equal(int64(12)))
		Expect(first.ExecutionStatus.ID).To(Equal(1))
		Expect(req.TestCases[1].ExecutionStatus.ID).To(Equal(3))
	})

	It("splits steps and marks outcome steps as results", func() {
		req, err := m.ToBulkRequest(cases, target)
		Expect(err).NotTo(HaveOccurred())

		steps := req.TestCases[0].Steps
		Expect(steps).To(HaveLen(3))
		Expect(steps[0]).To(Equal(model.TestStep{Step: "Open invoice", StepDescription: "Open invoice"}))
		Expect(steps[2].Result).To(Equal("Page should show receipt"))

		Expect(req.TestCases[1].Steps).To(Equal([]model.TestStep{{Step: "Click cancel", StepDescription: "Click cancel"}}))
	})

	It("falls back to the default component without issue components", func() {
		target.Issue = &model.Issue{Key: "SE2-11"}
		req, err := m.ToBulkRequest(cases, target)
		Expect(err).NotTo(HaveOccurred())
		Expect(req.TestCases[0].Components).To(Equal([]string{"Supply Chain"}))
	})

	It("sends an empty related issues list without an issue", func() {
		target.Issue = nil
		req, err := m.ToBulkRequest(cases, target)
		Expect(err).NotTo(HaveOccurred())

		raw, err := json.Marshal(req.TestCases[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"related_issues":[]`))
	})

	DescribeTable("status codes",
		func(status model.ExecutionStatus, code int) {
			cases[0].ExecutionStatus = status
			req, err := m.ToBulkRequest(cases[:1], target)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.TestCases[0].ExecutionStatus.ID).To(Equal(code))
		},
		Entry("unexecuted", model.StatusUnexecuted, -1),
		Entry("pass", model.StatusPass, 1),
		Entry("fail", model.StatusFail, 2),
		Entry("wip", model.StatusWIP, 3),
		Entry("blocked", model.StatusBlocked, 4),
		Entry("empty", model.ExecutionStatus(""), -1),
		Entry("unknown", model.ExecutionStatus("skipped"), -1),
	)
})
