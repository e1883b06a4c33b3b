package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/workbench"
)

var _ = Describe("shell", func() {
	var (
		ctx     context.Context
		out     *bytes.Buffer
		tracker *stubTracker
		relay   *stubRelay
		sh      *shell
	)

	BeforeEach(func() {
		ctx = context.Background()
		out = &bytes.Buffer{}
		tracker = &stubTracker{issues: []model.Issue{
			{Key: "SE2-1", Summary: "Checkout flow", Description: "As a buyer I can pay", Type: "Story", Sprint: "Sprint 5"},
		}}
		relay = &stubRelay{cases: []model.TestCase{
			{ID: "1", Title: "Pay by card", Steps: "1. Open cart\n2. Pay", ExpectedResult: "Paid", Priority: "High"},
		}}
		wb := workbench.New(workbench.Config{DefaultComponent: "Supply Chain"}, relay, tracker)
		sh = newShell(wb, out, "http://localhost:5000", "jira")
		DeferCleanup(sh.close)
	})

	run := func(line string) error {
		return sh.run(ctx, line)
	}

	It("reports unknown commands and usage", func() {
		Expect(run("launch")).To(MatchError(ContainSubstring("unknown command")))
		Expect(run("select")).To(MatchError("usage: select <issue-key>"))
	})

	It("walks from search to push", func() {
		Expect(run("search type=Story")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Checkout flow"))

		Expect(run("generate")).To(MatchError(workbench.ErrNoActiveIssue))

		Expect(run("select se2-1")).To(Succeed())
		Expect(run("generate note=\"edge cases\"")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Pay by card"))
		Expect(out.String()).To(ContainSubstring("Generated 1 test cases"))

		Expect(run("add Refund | Open order Click refund | Refund issued")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Added test case 2"))

		Expect(run("status 2 passed")).To(Succeed())
		Expect(run("status 2 maybe")).To(MatchError(workbench.ErrInvalidStatus))
		Expect(run("edit 2 | | Money returned")).To(Succeed())

		cases := sh.wb.Store.TestCases()
		Expect(cases).To(HaveLen(2))
		Expect(cases[1].ExecutionStatus).To(Equal(model.StatusPass))
		Expect(cases[1].ExpectedResult).To(Equal("Money returned"))

		Expect(run("push")).To(MatchError(workbench.ErrVersionRequired))
		Expect(run("sprints")).To(Succeed())
		Expect(run("push 7 -1")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Successfully imported 2 test cases"))
		Expect(tracker.pushed.TestCases[0].SprintID).To(Equal(int64(5)))
	})

	It("exports to a directory and imports the file back", func() {
		Expect(run("search")).To(Succeed())
		Expect(run("select SE2-1")).To(Succeed())
		Expect(run("generate")).To(Succeed())

		dir := GinkgoT().TempDir()
		Expect(run("export " + dir)).To(Succeed())

		matches, err := filepath.Glob(filepath.Join(dir, "test-cases-SE2-1-*.xlsx"))
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(1))

		Expect(run("delete 1")).To(Succeed())
		Expect(sh.wb.Store.TestCases()).To(BeEmpty())

		Expect(run("import " + matches[0])).To(Succeed())
		Expect(sh.wb.Store.TestCases()).To(HaveLen(1))

		_, err = os.Stat(matches[0])
		Expect(err).NotTo(HaveOccurred())
	})

	It("lists push targets with the fixed choices first", func() {
		Expect(run("versions")).To(Succeed())
		Expect(run("cycles 7")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Unscheduled"))
		Expect(out.String()).To(ContainSubstring("Ad hoc"))
		Expect(out.String()).To(ContainSubstring("Regression"))
	})
})

var _ = Describe("renderTable", func() {
	It("truncates wide cells to the column width", func() {
		out := renderTable([]column{{title: "Name", width: 6}}, [][]string{{"日本語のテキスト"}})
		Expect(out).To(ContainSubstring("日本…"))
	})
})
