package main

import (
	"github.com/kballard/go-shellquote"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

var _ = Describe("splitArgs", func() {
	DescribeTable("tokenizes",
		func(line string, want []string) {
			got, err := splitArgs(line)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("plain words", "select SE2-1", []string{"select", "SE2-1"}),
		Entry("extra spaces", "  next   ", []string{"next"}),
		Entry("quoted value", `search jql="sprint in openSprints()"`, []string{"search", "jql=sprint in openSprints()"}),
		Entry("single quotes", `generate note='only negative paths'`, []string{"generate", "note=only negative paths"}),
		Entry("empty quotes", `generate prompt=""`, []string{"generate", "prompt="}),
	)

	It("rejects an open quote", func() {
		_, err := splitArgs(`search jql="oops`)
		Expect(err).To(MatchError(shellquote.UnterminatedDoubleQuoteError))
	})
})

var _ = Describe("parseFilter", func() {
	It("maps known keys", func() {
		f, err := parseFilter([]string{"type=Story", "component=Billing", "sprint=Sprint 5"})
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(model.IssueFilter{IssueType: "Story", Component: "Billing", Sprint: "Sprint 5"}))
	})

	It("rejects unknown keys and bare words", func() {
		_, err := parseFilter([]string{"owner=me"})
		Expect(err).To(HaveOccurred())
		_, err = parseFilter([]string{"Story"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("case fields", func() {
	It("splits on pipes and keeps missing fields blank", func() {
		tc := parseCaseFields("Login | 1. Open 2. Sign in | Dashboard shown")
		Expect(tc.Title).To(Equal("Login"))
		Expect(tc.Steps).To(Equal("1. Open 2. Sign in"))
		Expect(tc.ExpectedResult).To(Equal("Dashboard shown"))
		Expect(tc.Priority).To(BeEmpty())
	})

	It("merges only the fields that were given", func() {
		current := model.TestCase{ID: "2", Title: "Login", Steps: "1. Open", ExpectedResult: "ok", Priority: "High"}
		merged := mergeCase(current, parseCaseFields(" | 1. Open\n2. Submit | | Low"))
		Expect(merged).To(Equal(model.TestCase{ID: "2", Title: "Login", Steps: "1. Open\n2. Submit", ExpectedResult: "ok", Priority: "Low"}))
	})
})
