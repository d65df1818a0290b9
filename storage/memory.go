package storage

import (
	"context"
	"sync"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

// MemoryStorage keeps every collection in process. It backs local runs without
// DynamoDB and the controller tests.
type MemoryStorage struct {
	mu          sync.Mutex
	submissions []scoring.Submission
	judges      []scoring.Judge
	overrides   scoring.Overrides
	syncConfig  *SyncConfig
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{overrides: scoring.Overrides{}}
}

func (m *MemoryStorage) Submissions() SubmissionStorage { return memorySubmissions{m} }
func (m *MemoryStorage) Judges() JudgeStorage           { return memoryJudges{m} }
func (m *MemoryStorage) Overrides() OverrideStorage     { return memoryOverrides{m} }
func (m *MemoryStorage) SyncConfig() SyncConfigStorage  { return memorySyncConfig{m} }

type memorySubmissions struct{ m *MemoryStorage }

func (s memorySubmissions) GetAll(_ context.Context) ([]scoring.Submission, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return cloneSubmissions(s.m.submissions), nil
}

func (s memorySubmissions) ReplaceAll(_ context.Context, subs []scoring.Submission) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.submissions = cloneSubmissions(subs)
	return nil
}

type memoryJudges struct{ m *MemoryStorage }

func (s memoryJudges) GetAll(_ context.Context) ([]scoring.Judge, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return append([]scoring.Judge{}, s.m.judges...), nil
}

func (s memoryJudges) ReplaceAll(_ context.Context, judges []scoring.Judge) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.judges = append([]scoring.Judge{}, judges...)
	return nil
}

type memoryOverrides struct{ m *MemoryStorage }

func (s memoryOverrides) GetAll(_ context.Context) (scoring.Overrides, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.overrides.Clone(), nil
}

func (s memoryOverrides) ReplaceAll(_ context.Context, overrides scoring.Overrides) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.overrides = overrides.Clone()
	return nil
}

type memorySyncConfig struct{ m *MemoryStorage }

func (s memorySyncConfig) Get(_ context.Context) (*SyncConfig, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.syncConfig == nil {
		return nil, ErrItemNotFound
	}
	cfg := *s.m.syncConfig
	return &cfg, nil
}

func (s memorySyncConfig) Put(_ context.Context, cfg *SyncConfig) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c := *cfg
	s.m.syncConfig = &c
	return nil
}

func cloneSubmissions(subs []scoring.Submission) []scoring.Submission {
	out := make([]scoring.Submission, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.Clone())
	}
	return out
}
