package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mario1918/testCaseGenie-NG/common/llm"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/service"
	"github.com/mario1918/testCaseGenie-NG/internal/store"
)

var _ = Describe("GenerationService", func() {
	var (
		ctx    context.Context
		client *mockLLM
		runs   *mockRunStore
		svc    service.GenerationService
		nextID int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLM{}
		runs = &mockRunStore{}
		nextID = 100
		svc = service.NewGenerationService(service.GenerationServiceConfig{
			LLM:       client,
			Sequencer: store.NewMemorySequencer(),
			Runs:      runs,
			NewID: func() int64 {
				nextID++
				return nextID
			},
			Now: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
		})
	})

	It("normalizes the model output", func() {
		client.completeFn = replying(`[{"testCase":"Login","description":"Verify login",` +
			`"steps":["Open app","Enter credentials"],"expectedResult":"User logged in"}]`)

		result, err := svc.Generate(ctx, service.GenerateParams{Prompt: "As a user I log in", IssueKey: "SE2-1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.TestCases).To(HaveLen(1))

		tc := result.TestCases[0]
		Expect(tc.ID).To(Equal("1"))
		Expect(tc.Title).To(Equal("Login"))
		Expect(tc.Steps).To(Equal("1. Open app\n2. Enter credentials"))
		Expect(tc.ExpectedResult).To(Equal("User logged in"))
		Expect(tc.Priority).To(Equal("Medium"))
		Expect(tc.ExecutionStatus).To(Equal(model.StatusUnexecuted))
	})

	It("coerces a single object into a list", func() {
		client.completeFn = replying(`{"title":"Only one"}`)

		result, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.TestCases).To(HaveLen(1))
		Expect(result.TestCases[0].Title).To(Equal("Only one"))
	})

	It("appends special instructions to the prompt", func() {
		client.completeFn = replying(`[{"title":"a"}]`)

		_, err := svc.Generate(ctx, service.GenerateParams{
			Prompt:          "Users can reset passwords",
			SpecialComments: "Focus on security",
		})
		Expect(err).NotTo(HaveOccurred())

		req := client.requests[0]
		last := req.Messages[len(req.Messages)-1]
		Expect(last.Role).To(Equal(llm.RoleUser))
		Expect(last.Content).To(ContainSubstring("Users can reset passwords\n\nSpecial instructions:\nFocus on security"))
		Expect(req.System).To(ContainSubstring(`"expectedResult"`))
	})

	It("falls back to the description when the prompt is empty", func() {
		client.completeFn = replying(`[{"title":"a"}]`)

		_, err := svc.Generate(ctx, service.GenerateParams{Description: "legacy story text"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.requests[0].Messages[0].Content).To(ContainSubstring("legacy story text"))
	})

	It("rejects requests without any story text", func() {
		_, err := svc.Generate(ctx, service.GenerateParams{Prompt: "  "})
		Expect(err).To(MatchError(service.ErrEmptyPrompt))
		Expect(client.requests).To(BeEmpty())
	})

	It("sends prior history before the new prompt", func() {
		client.completeFn = replying(`[{"title":"a"}]`)
		history := []model.ConversationMessage{
			{Role: model.RoleUser, Content: "first"},
			{Role: model.RoleAssistant, Content: "[]"},
		}

		result, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story", History: history})
		Expect(err).NotTo(HaveOccurred())

		msgs := client.requests[0].Messages
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].Content).To(Equal("first"))
		Expect(msgs[1].Role).To(Equal(llm.RoleAssistant))

		Expect(result.History).To(HaveLen(4))
		Expect(result.History[2].Role).To(Equal(model.RoleUser))
		Expect(result.History[3].Role).To(Equal(model.RoleAssistant))

		var echoed []model.TestCase
		Expect(json.Unmarshal([]byte(result.History[3].Content), &echoed)).To(Succeed())
		Expect(echoed).To(Equal(result.TestCases))
	})

	It("returns the raw text when the output is not JSON", func() {
		client.completeFn = replying("not json")

		_, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story"})

		var outErr *service.ModelOutputError
		Expect(errors.As(err, &outErr)).To(BeTrue())
		Expect(outErr.Raw).To(Equal("not json"))
		Expect(outErr.Message()).To(Equal("Model did not return valid JSON"))
	})

	It("treats an empty list as bad output", func() {
		client.completeFn = replying("[]")

		_, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story"})

		var outErr *service.ModelOutputError
		Expect(errors.As(err, &outErr)).To(BeTrue())
		Expect(outErr.Message()).To(Equal("Model returned no test cases"))
	})

	It("wraps upstream failures", func() {
		client.completeFn = func(context.Context, llm.Request) (*llm.Response, error) {
			return nil, errors.New("quota exceeded")
		}

		_, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story"})
		Expect(err).To(MatchError(ContainSubstring("quota exceeded")))
	})

	Describe("id assignment", func() {
		existing := []model.TestCase{
			{ID: "3", Title: "a"},
			{ID: "test-case-9", Title: "b"},
			{ID: "manual", Title: "c"},
		}

		It("assigns ids above the highest existing numeric id", func() {
			client.completeFn = replying(`[{"title":"x"},{"title":"y"},{"title":"z"}]`)

			result, err := svc.Generate(ctx, service.GenerateParams{
				Prompt:            "story",
				IssueKey:          "SE2-1",
				ExistingTestCases: existing,
				IsAdditional:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.TestCases).To(HaveLen(3))
			for _, tc := range result.TestCases {
				n, err := strconv.Atoi(tc.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(n).To(BeNumerically(">", 9))
			}
			Expect(result.TestCases[0].ID).To(Equal("10"))
			Expect(result.TestCases[2].ID).To(Equal("12"))
		})

		It("keeps echoed ids just above the existing maximum", func() {
			client.completeFn = replying(`[{"id":11,"title":"x"},{"id":"2","title":"y"},{"id":11,"title":"z"}]`)

			result, err := svc.Generate(ctx, service.GenerateParams{
				Prompt:            "story",
				IssueKey:          "SE2-1",
				ExistingTestCases: existing,
				IsAdditional:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.TestCases[0].ID).To(Equal("11"))
			Expect(result.TestCases[1].ID).To(Equal("12"))
			Expect(result.TestCases[2].ID).To(Equal("13"))
		})

		It("reassigns echoed ids far above the existing maximum", func() {
			client.completeFn = replying(`[{"id":500,"title":"x"},{"title":"y"}]`)

			result, err := svc.Generate(ctx, service.GenerateParams{
				Prompt:            "story",
				IssueKey:          "SE2-1",
				ExistingTestCases: existing,
				IsAdditional:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.TestCases[0].ID).To(Equal("10"))
			Expect(result.TestCases[1].ID).To(Equal("11"))
		})

		It("does not wrap around when the model echoes the largest id", func() {
			client.completeFn = replying(`[{"id":"9223372036854775807","title":"x"},{"title":"y"}]`)

			result, err := svc.Generate(ctx, service.GenerateParams{
				Prompt:            "story",
				IssueKey:          "SE2-7",
				ExistingTestCases: []model.TestCase{{ID: "9223372036854775000", Title: "a"}},
				IsAdditional:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.TestCases).To(HaveLen(2))
			Expect(result.TestCases[0].ID).To(Equal("9223372036854775001"))
			Expect(result.TestCases[1].ID).To(Equal("9223372036854775002"))
		})

		It("keeps increasing across calls for the same issue", func() {
			client.completeFn = replying(`[{"title":"x"},{"title":"y"}]`)

			first, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story", IssueKey: "SE2-4"})
			Expect(err).NotTo(HaveOccurred())

			second, err := svc.Generate(ctx, service.GenerateParams{
				Prompt:            "story",
				IssueKey:          "SE2-4",
				ExistingTestCases: first.TestCases,
				IsAdditional:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.TestCases[1].ID).To(Equal("2"))
			Expect(second.TestCases[0].ID).To(Equal("3"))
			Expect(second.TestCases[1].ID).To(Equal("4"))
		})

		It("lists existing titles in additional prompts", func() {
			client.completeFn = replying(`[{"title":"x"}]`)

			_, err := svc.Generate(ctx, service.GenerateParams{
				Prompt:            "story",
				ExistingTestCases: existing,
				IsAdditional:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			prompt := client.requests[0].Messages[0].Content
			Expect(prompt).To(ContainSubstring("do not repeat them"))
			Expect(prompt).To(ContainSubstring("- b\n"))
		})
	})

	Describe("generation log", func() {
		It("records successful runs", func() {
			client.completeFn = replying(`[{"title":"x"},{"title":"y"}]`)

			_, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story", IssueKey: "SE2-7"})
			Expect(err).NotTo(HaveOccurred())

			Expect(runs.created).To(HaveLen(1))
			run := runs.created[0]
			Expect(run.ID).To(Equal(int64(101)))
			Expect(run.IssueKey).To(Equal("SE2-7"))
			Expect(run.CaseCount).To(Equal(2))
			Expect(run.Provider).To(Equal("mock"))
			Expect(run.PromptTokens).To(Equal(10))
			Expect(run.Error).To(BeNil())
		})

		It("records failed runs with the error", func() {
			client.completeFn = replying("nope")

			_, err := svc.Generate(ctx, service.GenerateParams{Prompt: "story"})
			Expect(err).To(HaveOccurred())

			Expect(runs.created).To(HaveLen(1))
			Expect(runs.created[0].RawOutput).To(Equal("nope"))
			Expect(*runs.created[0].Error).To(ContainSubstring("Model did not return valid JSON"))
		})

		It("maps a disabled log to ErrLogDisabled", func() {
			runs.listFn = func(context.Context, string, int32) ([]model.GenerationRun, error) {
				return nil, store.ErrDisabled
			}
			_, err := svc.ListRuns(ctx, "SE2-1", 10)
			Expect(err).To(MatchError(service.ErrLogDisabled))
		})
	})
})
