package normalize_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/internal/normalize"
)

var _ = Describe("FormatStepList", func() {
	It("prefixes each step with its 1-based index", func() {
		Expect(normalize.FormatStepList([]string{"Open app", "Enter credentials"})).
			To(Equal("1. Open app\n2. Enter credentials"))
	})

	It("returns an empty string for no steps", func() {
		Expect(normalize.FormatStepList(nil)).To(BeEmpty())
	})
})

var _ = Describe("NormalizeSteps", func() {
	DescribeTable("rewrites step text",
		func(input, expected string) {
			Expect(normalize.NormalizeSteps(input)).To(Equal(expected))
		},
		Entry("blank", "   ", ""),
		Entry("single line without markers", "  Open the app ", "Open the app"),
		Entry("single marker", "1. Open the app", "1. Open the app"),
		Entry("inline numbering", "1. Open app 2. Log in 3. Check dashboard",
			"1. Open app\n2. Log in\n3. Check dashboard"),
		Entry("already split", "1. Open app\n2. Log in", "1. Open app\n2. Log in"),
		Entry("renumbers out of order markers", "3. Open app 7. Log in", "1. Open app\n2. Log in"),
		Entry("joins text before the first marker", "Steps: 1. Open app 2. Log in",
			"1. Steps: Open app\n2. Log in"),
		Entry("collapses wrapped step text", "1. Open\n   the app\n2. Log in",
			"1. Open the app\n2. Log in"),
		Entry("numbers plain lines", "Open app\nLog in\n\nLog out",
			"1. Open app\n2. Log in\n3. Log out"),
		Entry("keeps decimals inside a step", "1. Set discount to 12.5% 2. Check total",
			"1. Set discount to 12.5%\n2. Check total"),
		Entry("falls back to line breaks when only one step has text", "1. 2. Log in",
			"1.\n2. Log in"),
		Entry("leaves markers glued to their text unsplit", "1.Open app 2.Click save",
			"1.Open app 2.Click save"),
	)

	It("yields exactly N lines for N inline markers", func() {
		for n := 2; n <= 12; n++ {
			parts := make([]string, n)
			for i := range parts {
				parts[i] = fmt.Sprintf("%d. step number %d", i+1, i+1)
			}
			out := normalize.NormalizeSteps(strings.Join(parts, " "))
			Expect(strings.Split(out, "\n")).To(HaveLen(n), "n=%d", n)
		}
	})

	It("is stable on its own output", func() {
		once := normalize.NormalizeSteps("1. a 2. b 3. c")
		Expect(normalize.NormalizeSteps(once)).To(Equal(once))
	})

	It("documents that a sentence ending in a number splits", func() {
		out := normalize.NormalizeSteps("1. Wait 5. Then retry")
		Expect(strings.Split(out, "\n")).To(HaveLen(2))
	})
})

var _ = Describe("SplitSteps", func() {
	DescribeTable("splits into step texts",
		func(input string, expected []string) {
			Expect(normalize.SplitSteps(input)).To(Equal(expected))
		},
		Entry("blank", "", nil),
		Entry("numbered lines", "1. Open app\n2. Log in", []string{"Open app", "Log in"}),
		Entry("inline numbering", "1. Open app 2. Log in", []string{"Open app", "Log in"}),
		Entry("drops empty steps", "1. 2. Log in 3. Out", []string{"Log in", "Out"}),
		Entry("unnumbered text is one step", "Open the app", []string{"Open the app"}),
		Entry("unnumbered lines", "Open\nLog in", []string{"Open", "Log in"}),
		Entry("lone marker keeps the whole text", "1.", []string{"1."}),
	)
})
