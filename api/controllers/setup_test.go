package controllers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/api/transport"
	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/storage"
	"github.com/alex-pricope/teacher-evaluation-system/syncer"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

var (
	adminHeaders = map[string]string{transport.AdminTokenHeader: testAdminToken}
	testClock    = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
)

type fakePolisher struct {
	err error
}

func (p fakePolisher) Polish(_ context.Context, raw string) (string, error) {
	if p.err != nil {
		return raw, p.err
	}
	return strings.ToUpper(raw), nil
}

type countingTrigger struct {
	mu    sync.Mutex
	count int
}

func (c *countingTrigger) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

type memoryRemote struct {
	mu    sync.Mutex
	snaps map[string]syncer.Snapshot
}

func (m *memoryRemote) CreateSession(_ context.Context, initial syncer.Snapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps["session-1"] = initial
	return "session-1", nil
}

func (m *memoryRemote) Pull(_ context.Context, token string) (*syncer.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[token]
	if !ok {
		return nil, syncer.ErrSessionNotFound
	}
	return &snap, nil
}

func (m *memoryRemote) Push(_ context.Context, token string, snap syncer.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[token]; !ok {
		return errors.New("unknown session")
	}
	m.snaps[token] = snap
	return nil
}

type testEnv struct {
	state   *evaluation.State
	router  *gin.Engine
	trigger *countingTrigger
	remote  *memoryRemote
}

func setupTestEnv(t *testing.T, polisher fakePolisher) *testEnv {
	t.Helper()
	logging.Log = logrus.New()

	mem := storage.NewMemoryStorage()
	clock := testClock
	state := evaluation.New(evaluation.Stores{
		Submissions: mem.Submissions(),
		Judges:      mem.Judges(),
		Overrides:   mem.Overrides(),
		SyncConfig:  mem.SyncConfig(),
	}, evaluation.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	require.NoError(t, state.Load(context.Background()))

	remote := &memoryRemote{snaps: map[string]syncer.Snapshot{}}
	scheduler := syncer.NewScheduler(state, remote, time.Minute)
	trigger := &countingTrigger{}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	adminAuth := transport.AdminAuthMiddleware(testAdminToken)
	NewSubmissionController(state, polisher, trigger).RegisterRoutes(r)
	NewCandidateController(state).RegisterRoutes(r, adminAuth)
	NewDataController(state).RegisterRoutes(r, adminAuth)
	NewJudgeController(state).RegisterRoutes(r, adminAuth)
	NewSyncController(state, scheduler).RegisterRoutes(r, adminAuth)

	return &testEnv{state: state, router: r, trigger: trigger, remote: remote}
}
