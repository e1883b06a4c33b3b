package service

import (
	"github.com/mario1918/testCaseGenie-NG/common/id"
	"github.com/mario1918/testCaseGenie-NG/common/llm"
	"github.com/mario1918/testCaseGenie-NG/internal/store"
)

type Services struct {
	generation GenerationService
}

type ServicesConfig struct {
	Stores *store.Stores
	LLM    llm.Client
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		generation: NewGenerationService(GenerationServiceConfig{
			LLM:       cfg.LLM,
			Sequencer: cfg.Stores.Sequencer(),
			Runs:      cfg.Stores.GenerationRuns(),
			NewID:     id.New,
		}),
	}
}

func (s *Services) Generation() GenerationService {
	return s.generation
}
