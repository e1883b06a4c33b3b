package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mario1918/testCaseGenie-NG/common/llm"
	"github.com/mario1918/testCaseGenie-NG/common/logger"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/normalize"
	"github.com/mario1918/testCaseGenie-NG/internal/store"
)

type GenerateParams struct {
	Prompt            string
	Description       string // used when Prompt is empty
	SpecialComments   string
	Summary           string
	IssueKey          string
	IssueType         string
	Status            string
	ExistingTestCases []model.TestCase
	History           []model.ConversationMessage
	IsAdditional      bool
}

type GenerateResult struct {
	TestCases []model.TestCase
	History   []model.ConversationMessage
}

type GenerationService interface {
	Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error)
	ListRuns(ctx context.Context, issueKey string, limit int32) ([]model.GenerationRun, error)
}

type GenerationServiceConfig struct {
	LLM       llm.Client
	Sequencer store.Sequencer
	Runs      store.GenerationRunStore
	NewID     func() int64     // run ids; defaults to snowflake
	Now       func() time.Time // defaults to time.Now
}

type generationService struct {
	llm          llm.Client
	sequencer    store.Sequencer
	runs         store.GenerationRunStore
	newID        func() int64
	now          func() time.Time
	systemPrompt string
}

func NewGenerationService(cfg GenerationServiceConfig) GenerationService {
	s := &generationService{
		llm:          cfg.LLM,
		sequencer:    cfg.Sequencer,
		runs:         cfg.Runs,
		newID:        cfg.NewID,
		now:          cfg.Now,
		systemPrompt: buildSystemPrompt(),
	}
	if s.runs == nil {
		s.runs = store.NewNoopGenerationRunStore()
	}
	if s.sequencer == nil {
		s.sequencer = store.NewMemorySequencer()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *generationService) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	if strings.TrimSpace(params.Prompt) == "" && strings.TrimSpace(params.Description) == "" {
		return nil, ErrEmptyPrompt
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		IssueKey:  logger.Ptr(params.IssueKey),
		Provider:  logger.Ptr(s.llm.Provider()),
		Component: "relay.service.generation",
	})

	sc := logger.StartSpan(ctx, "generation.generate", trace.WithAttributes(
		attribute.String("issue.key", params.IssueKey),
		attribute.Bool("generation.additional", params.IsAdditional),
	))
	defer sc.End()
	ctx = sc.Context()

	userPrompt := buildUserPrompt(params)
	run := &model.GenerationRun{
		IssueKey:   params.IssueKey,
		Provider:   s.llm.Provider(),
		Model:      s.llm.Model(),
		Additional: params.IsAdditional,
		Prompt:     userPrompt,
		CreatedAt:  s.now(),
	}
	if s.newID != nil {
		run.ID = s.newID()
		ctx = logger.WithLogFields(ctx, logger.LogFields{GenerationID: logger.Ptr(run.ID)})
	}

	start := time.Now()
	resp, err := s.llm.Complete(ctx, llm.Request{
		System:   s.systemPrompt,
		Messages: buildMessages(params, userPrompt),
	})
	run.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		sc.RecordError(err)
		s.record(ctx, run, err)
		return nil, fmt.Errorf("generating test cases: %w", err)
	}
	run.RawOutput = resp.Content
	run.PromptTokens = resp.PromptTokens
	run.CompletionTokens = resp.CompletionTokens

	items, err := normalize.ParseOutput(resp.Content)
	if err != nil {
		outErr := &ModelOutputError{Raw: resp.Content, Reason: err}
		slog.WarnContext(ctx, "model output rejected",
			"error", err,
			"raw", logger.Truncate(resp.Content, 500))
		sc.RecordError(outErr)
		s.record(ctx, run, outErr)
		return nil, outErr
	}

	cases := make([]model.TestCase, len(items))
	for i, item := range items {
		cases[i] = normalize.TestCase(item)
	}

	if err := s.assignIDs(ctx, params.IssueKey, params.ExistingTestCases, cases); err != nil {
		sc.RecordError(err)
		s.record(ctx, run, err)
		return nil, fmt.Errorf("assigning test case ids: %w", err)
	}

	encoded, err := json.Marshal(cases)
	if err != nil {
		return nil, fmt.Errorf("encoding test cases: %w", err)
	}

	history := make([]model.ConversationMessage, 0, len(params.History)+2)
	history = append(history, params.History...)
	history = append(history,
		model.ConversationMessage{Role: model.RoleUser, Content: userPrompt},
		model.ConversationMessage{Role: model.RoleAssistant, Content: string(encoded)},
	)

	run.CaseCount = len(cases)
	s.record(ctx, run, nil)

	slog.InfoContext(ctx, "test cases generated",
		"count", len(cases),
		"additional", params.IsAdditional,
		"existing", len(params.ExistingTestCases),
		"latency_ms", run.LatencyMs)

	return &GenerateResult{TestCases: cases, History: history}, nil
}

func (s *generationService) ListRuns(ctx context.Context, issueKey string, limit int32) ([]model.GenerationRun, error) {
	runs, err := s.runs.ListByIssue(ctx, issueKey, limit)
	if errors.Is(err, store.ErrDisabled) {
		return nil, ErrLogDisabled
	}
	if err != nil {
		return nil, fmt.Errorf("listing generation runs: %w", err)
	}
	return runs, nil
}

// record writes the audit row. Failures are logged and never reach the caller.
func (s *generationService) record(ctx context.Context, run *model.GenerationRun, runErr error) {
	if run.ID == 0 {
		return
	}
	if runErr != nil {
		run.Error = logger.Ptr(runErr.Error())
	}
	if err := s.runs.Create(ctx, run); err != nil {
		slog.WarnContext(ctx, "failed to record generation run", "error", err)
	}
}
