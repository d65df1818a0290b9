package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/storage"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultInterval = 60 * time.Second

// Scheduler runs pull, merge, push cycles against one Remote. At most one cycle is
// in flight; a trigger that arrives meanwhile is dropped, not queued.
type Scheduler struct {
	state    *evaluation.State
	remote   Remote
	interval time.Duration
	running  atomic.Bool
}

func NewScheduler(state *evaluation.State, remote Remote, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{state: state, remote: remote, interval: interval}
}

// Run ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	logging.Log.Infof("SYNC: scheduler started, interval %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Log.Info("SYNC: scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.SyncNow(ctx); err != nil && !errors.Is(err, ErrSyncDisabled) {
				logging.Log.Warnf("SYNC: cycle failed: %v", err)
			}
		}
	}
}

// Trigger starts a cycle in the background, e.g. right after a judge saves.
func (s *Scheduler) Trigger() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()
		if _, err := s.SyncNow(ctx); err != nil && !errors.Is(err, ErrSyncDisabled) {
			logging.Log.Warnf("SYNC: triggered cycle failed: %v", err)
		}
	}()
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// SyncNow runs one cycle. ran is false when sync is disabled or another cycle is in
// flight. A failed pull leaves local data untouched and nothing is pushed.
func (s *Scheduler) SyncNow(ctx context.Context) (bool, error) {
	cfg := s.state.SyncConfig()
	if !cfg.Enabled || cfg.Token == "" {
		return false, ErrSyncDisabled
	}
	if !s.running.CompareAndSwap(false, true) {
		cycles.WithLabelValues(outcomeSkipped).Inc()
		logging.Log.Debug("SYNC: cycle already running, skipping")
		return false, nil
	}
	defer s.running.Store(false)

	timer := prometheus.NewTimer(cycleDuration)
	defer timer.ObserveDuration()

	remote, err := s.remote.Pull(ctx, cfg.Token)
	if err != nil {
		cycles.WithLabelValues(outcomePullFailed).Inc()
		return true, fmt.Errorf("pull: %w", err)
	}

	subs, judges, err := s.state.MergeRemote(ctx, remote.Submissions, remote.Judges)
	if err != nil {
		cycles.WithLabelValues(outcomeMergeFailed).Inc()
		return true, fmt.Errorf("merge: %w", err)
	}

	now := s.state.Now()
	snap := Snapshot{Submissions: subs, Judges: judges, Version: now.UnixMilli()}
	if err := s.remote.Push(ctx, cfg.Token, snap); err != nil {
		cycles.WithLabelValues(outcomePushFailed).Inc()
		return true, fmt.Errorf("push: %w", err)
	}

	if err := s.state.MarkSynced(ctx, now); err != nil {
		logging.Log.Warnf("SYNC: could not record sync time: %v", err)
	}
	cycles.WithLabelValues(outcomeOK).Inc()
	mergedRecords.Set(float64(len(subs)))
	logging.Log.Infof("SYNC: cycle done, %d submissions, %d judges", len(subs), len(judges))
	return true, nil
}

// CreateSession uploads the current data as a new remote session and enables sync
// with its token.
func (s *Scheduler) CreateSession(ctx context.Context) (storage.SyncConfig, error) {
	subs, judges := s.state.Snapshot()
	token, err := s.remote.CreateSession(ctx, Snapshot{
		Submissions: subs,
		Judges:      judges,
		Version:     s.state.Now().UnixMilli(),
	})
	if err != nil {
		return storage.SyncConfig{}, fmt.Errorf("create session: %w", err)
	}

	cfg := storage.SyncConfig{Enabled: true, Token: token}
	if err := s.state.SetSyncConfig(ctx, cfg); err != nil {
		return storage.SyncConfig{}, err
	}
	logging.Log.Infof("SYNC: created session %s", token)
	return cfg, nil
}

// Join enables sync with a token created elsewhere. The token is checked with a
// pull before it is stored.
func (s *Scheduler) Join(ctx context.Context, token string) (storage.SyncConfig, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return storage.SyncConfig{}, ErrSessionNotFound
	}
	if _, err := s.remote.Pull(ctx, token); err != nil {
		return storage.SyncConfig{}, fmt.Errorf("join session: %w", err)
	}

	cfg := storage.SyncConfig{Enabled: true, Token: token}
	if err := s.state.SetSyncConfig(ctx, cfg); err != nil {
		return storage.SyncConfig{}, err
	}
	logging.Log.Infof("SYNC: joined session %s", token)
	return cfg, nil
}

// Disable stops syncing but keeps the token so the session can be rejoined.
func (s *Scheduler) Disable(ctx context.Context) (storage.SyncConfig, error) {
	cfg := s.state.SyncConfig()
	cfg.Enabled = false
	if err := s.state.SetSyncConfig(ctx, cfg); err != nil {
		return storage.SyncConfig{}, err
	}
	logging.Log.Info("SYNC: disabled")
	return cfg, nil
}
