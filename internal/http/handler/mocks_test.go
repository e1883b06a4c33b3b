package handler_test

import (
	"context"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/service"
)

type mockGenerationService struct {
	generateFn func(ctx context.Context, params service.GenerateParams) (*service.GenerateResult, error)
	listRunsFn func(ctx context.Context, issueKey string, limit int32) ([]model.GenerationRun, error)
}

func (m *mockGenerationService) Generate(ctx context.Context, params service.GenerateParams) (*service.GenerateResult, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, params)
	}
	return &service.GenerateResult{}, nil
}

func (m *mockGenerationService) ListRuns(ctx context.Context, issueKey string, limit int32) ([]model.GenerationRun, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, issueKey, limit)
	}
	return nil, nil
}
