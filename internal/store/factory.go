package store

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mario1918/testCaseGenie-NG/core/db"
)

// Stores bundles the relay's stores. Redis and Postgres are both optional.
type Stores struct {
	sequencer      Sequencer
	generationRuns GenerationRunStore
}

type StoresConfig struct {
	DB          *db.DB                // nil disables the generation log
	Redis       redis.UniversalClient // nil falls back to in-memory ids
	RedisPrefix string
	SequenceTTL time.Duration
}

func NewStores(cfg StoresConfig) *Stores {
	s := &Stores{
		sequencer:      NewMemorySequencer(),
		generationRuns: NewNoopGenerationRunStore(),
	}
	if cfg.Redis != nil {
		s.sequencer = NewRedisSequencer(cfg.Redis, cfg.RedisPrefix, cfg.SequenceTTL)
	}
	if cfg.DB != nil {
		s.generationRuns = newGenerationRunStore(cfg.DB.Pool())
	}
	return s
}

func (s *Stores) Sequencer() Sequencer {
	return s.sequencer
}

func (s *Stores) GenerationRuns() GenerationRunStore {
	return s.generationRuns
}
