// Package evaluation owns the in-memory collections of one device and persists each
// of them as a complete snapshot after every change.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/alex-pricope/teacher-evaluation-system/storage"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Stores are the persistence boundary: one snapshot per collection.
type Stores struct {
	Submissions storage.SubmissionStorage
	Judges      storage.JudgeStorage
	Overrides   storage.OverrideStorage
	SyncConfig  storage.SyncConfigStorage
}

// State is the single writer for submissions, the judge roster, operator overrides
// and the sync configuration. Every mutation replaces a whole collection; the mutex
// only serialises concurrent HTTP handlers and the sync scheduler.
type State struct {
	mu     sync.Mutex
	stores Stores
	now    func() time.Time

	submissions []scoring.Submission
	judges      []scoring.Judge
	overrides   scoring.Overrides
	syncConfig  storage.SyncConfig
}

type Option func(*State)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func New(stores Stores, opts ...Option) *State {
	s := &State{
		stores:    stores,
		now:       time.Now,
		overrides: scoring.Overrides{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every collection. It is called once at startup.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.stores.Submissions.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load submissions: %w", err)
	}
	judges, err := s.stores.Judges.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load judges: %w", err)
	}
	overrides, err := s.stores.Overrides.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}
	cfg, err := s.stores.SyncConfig.Get(ctx)
	switch {
	case errors.Is(err, storage.ErrItemNotFound):
		cfg = &storage.SyncConfig{}
	case err != nil:
		return fmt.Errorf("load sync config: %w", err)
	}

	s.submissions = subs
	s.judges = judges
	s.overrides = overrides
	if s.overrides == nil {
		s.overrides = scoring.Overrides{}
	}
	s.syncConfig = *cfg
	submissionsGauge.Set(float64(len(subs)))

	logging.Log.Infof("STATE: loaded %d submissions, %d judges, %d overrides", len(subs), len(judges), len(s.overrides))
	return nil
}

func (s *State) Now() time.Time {
	return s.now()
}

// Submissions returns a copy of every submission, newest first.
func (s *State) Submissions() []scoring.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSubmissions(s.submissions)
}

// SubmissionsByJudge returns the submissions owned by one judge username.
func (s *State) SubmissionsByJudge(judge string) []scoring.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scoring.Submission, 0)
	for _, sub := range s.submissions {
		if sub.JudgeUsername == judge {
			out = append(out, sub.Clone())
		}
	}
	return out
}

func (s *State) Submission(id string) (scoring.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return scoring.Submission{}, ErrSubmissionNotFound
	}
	return s.submissions[i].Clone(), nil
}

// CreateSubmission starts a new scoring sheet for judge and puts it first.
func (s *State) CreateSubmission(ctx context.Context, judge string) (scoring.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := scoring.NewSubmission(judge, s.now())
	next := append([]scoring.Submission{sub}, s.submissions...)
	if err := s.saveSubmissions(ctx, next); err != nil {
		return scoring.Submission{}, err
	}
	logging.Log.Infof("SUBMISSION: created %s for judge %s", sub.ID, judge)
	return sub.Clone(), nil
}

// UpdateSubmission applies mutate to a copy of the record, recomputes its total,
// advances LastUpdated and stores the collection.
func (s *State) UpdateSubmission(ctx context.Context, id string, mutate func(sub *scoring.Submission, now time.Time)) (scoring.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return scoring.Submission{}, ErrSubmissionNotFound
	}

	now := s.now()
	updated := s.submissions[i].Clone()
	mutate(&updated, now)
	updated.ID = id
	updated.Recalculate()
	updated.Touch(now)

	next := cloneSubmissions(s.submissions)
	next[i] = updated
	if err := s.saveSubmissions(ctx, next); err != nil {
		return scoring.Submission{}, err
	}
	return updated.Clone(), nil
}

func (s *State) DeleteSubmission(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrSubmissionNotFound
	}
	next := make([]scoring.Submission, 0, len(s.submissions)-1)
	next = append(next, s.submissions[:i]...)
	next = append(next, s.submissions[i+1:]...)
	if err := s.saveSubmissions(ctx, next); err != nil {
		return err
	}
	logging.Log.Infof("SUBMISSION: deleted %s", id)
	return nil
}

// DeleteGroup removes every submission that resolves to key and returns how many
// were removed. Operator overrides for the key are left in place.
func (s *State) DeleteGroup(ctx context.Context, key scoring.IdentityKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept, removed := scoring.DeleteGroup(s.submissions, key)
	if len(removed) == 0 {
		return 0, ErrCandidateNotFound
	}
	if err := s.saveSubmissions(ctx, kept); err != nil {
		return 0, err
	}
	logging.Log.Infof("ADMIN: deleted %d submissions for candidate %s", len(removed), key)
	return len(removed), nil
}

// ImportSubmissions puts imported records first. Scores are clamped and totals
// recomputed.
func (s *State) ImportSubmissions(ctx context.Context, imported []scoring.Submission) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]scoring.Submission, 0, len(imported)+len(s.submissions))
	for _, sub := range imported {
		c := sub.Clone()
		c.Sanitize()
		next = append(next, c)
	}
	next = append(next, s.submissions...)
	if err := s.saveSubmissions(ctx, next); err != nil {
		return 0, err
	}
	logging.Log.Infof("ADMIN: imported %d submissions", len(imported))
	return len(imported), nil
}

func (s *State) ClearSubmissions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveSubmissions(ctx, []scoring.Submission{}); err != nil {
		return err
	}
	logging.Log.Warn("ADMIN: cleared all submissions")
	return nil
}

func (s *State) Judges() []scoring.Judge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scoring.Judge{}, s.judges...)
}

// AddJudge appends a roster entry. Usernames are unique, ignoring case.
func (s *State) AddJudge(ctx context.Context, name, username string) (scoring.Judge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.judges {
		if strings.EqualFold(j.Username, username) {
			return scoring.Judge{}, ErrJudgeExists
		}
	}
	id, err := gonanoid.New()
	if err != nil {
		return scoring.Judge{}, fmt.Errorf("generate judge id: %w", err)
	}
	judge := scoring.Judge{
		ID:        id,
		Username:  username,
		Name:      name,
		CreatedAt: scoring.FormatTimestamp(s.now()),
	}
	next := append(append([]scoring.Judge{}, s.judges...), judge)
	if err := s.saveJudges(ctx, next); err != nil {
		return scoring.Judge{}, err
	}
	logging.Log.Infof("JUDGE: added %s (%s)", username, id)
	return judge, nil
}

func (s *State) RemoveJudge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]scoring.Judge, 0, len(s.judges))
	for _, j := range s.judges {
		if j.ID != id {
			next = append(next, j)
		}
	}
	if len(next) == len(s.judges) {
		return ErrJudgeNotFound
	}
	if err := s.saveJudges(ctx, next); err != nil {
		return err
	}
	logging.Log.Infof("JUDGE: removed %s", id)
	return nil
}

// View recomputes the aggregation and persists overrides seeded for new keys.
func (s *State) View(ctx context.Context) (*scoring.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recompute(ctx)
}

// EditOverride applies edit to the override of a candidate that currently has
// submissions.
func (s *State) EditOverride(ctx context.Context, key scoring.IdentityKey, edit func(o *scoring.Override)) (*scoring.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.recompute(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := view.Candidate(key); !ok {
		return nil, ErrCandidateNotFound
	}

	next := s.overrides.Clone()
	edit(next[key])
	if err := s.saveOverrides(ctx, next); err != nil {
		return nil, err
	}
	view.Overrides = next.Clone()
	return view, nil
}

// ResetOverride drops the operator corrections of key; the next view re-seeds them
// from the computed values.
func (s *State) ResetOverride(ctx context.Context, key scoring.IdentityKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.overrides[key]; !ok {
		return nil
	}
	next := s.overrides.Clone()
	delete(next, key)
	if err := s.saveOverrides(ctx, next); err != nil {
		return err
	}
	logging.Log.Infof("ADMIN: reset override for %s", key)
	return nil
}

func (s *State) SyncConfig() storage.SyncConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncConfig
}

func (s *State) SetSyncConfig(ctx context.Context, cfg storage.SyncConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSyncConfig(ctx, cfg)
}

// MarkSynced records the time of the last completed cycle.
func (s *State) MarkSynced(ctx context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.syncConfig
	cfg.LastSynced = scoring.FormatTimestamp(at)
	return s.saveSyncConfig(ctx, cfg)
}

// Snapshot returns copies of the collections that are exchanged with a remote.
func (s *State) Snapshot() ([]scoring.Submission, []scoring.Judge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSubmissions(s.submissions), append([]scoring.Judge{}, s.judges...)
}

// MergeRemote folds a pulled remote copy into local state and returns the merged
// collections, which are what the caller must push. Remote scores are clamped and
// their totals rederived before the merge.
func (s *State) MergeRemote(ctx context.Context, remoteSubs []scoring.Submission, remoteJudges []scoring.Judge) ([]scoring.Submission, []scoring.Judge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := make([]scoring.Submission, 0, len(remoteSubs))
	for _, sub := range remoteSubs {
		sub = sub.Clone()
		sub.Sanitize()
		incoming = append(incoming, sub)
	}
	mergedSubs := scoring.Merge(s.submissions, incoming)
	mergedJudges := scoring.MergeJudges(s.judges, remoteJudges)

	if err := s.saveSubmissions(ctx, mergedSubs); err != nil {
		return nil, nil, err
	}
	if err := s.saveJudges(ctx, mergedJudges); err != nil {
		return nil, nil, err
	}
	return cloneSubmissions(mergedSubs), append([]scoring.Judge{}, mergedJudges...), nil
}

func (s *State) recompute(ctx context.Context) (*scoring.View, error) {
	view := scoring.Recompute(s.submissions, s.overrides)
	candidatesGauge.Set(float64(len(view.Candidates())))
	if len(view.Seeded) == 0 {
		return view, nil
	}
	if err := s.saveOverrides(ctx, view.Overrides); err != nil {
		return nil, err
	}
	view.Overrides = view.Overrides.Clone()
	logging.Log.Debugf("STATE: seeded overrides for %v", view.Seeded)
	return view, nil
}

func (s *State) indexOf(id string) int {
	for i, sub := range s.submissions {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) saveSubmissions(ctx context.Context, next []scoring.Submission) error {
	if err := s.stores.Submissions.ReplaceAll(ctx, next); err != nil {
		persistFailures.WithLabelValues("submissions").Inc()
		return fmt.Errorf("store submissions: %w", err)
	}
	s.submissions = next
	submissionsGauge.Set(float64(len(next)))
	return nil
}

func (s *State) saveJudges(ctx context.Context, next []scoring.Judge) error {
	if err := s.stores.Judges.ReplaceAll(ctx, next); err != nil {
		persistFailures.WithLabelValues("judges").Inc()
		return fmt.Errorf("store judges: %w", err)
	}
	s.judges = next
	return nil
}

func (s *State) saveOverrides(ctx context.Context, next scoring.Overrides) error {
	if err := s.stores.Overrides.ReplaceAll(ctx, next); err != nil {
		persistFailures.WithLabelValues("overrides").Inc()
		return fmt.Errorf("store overrides: %w", err)
	}
	s.overrides = next
	return nil
}

func (s *State) saveSyncConfig(ctx context.Context, cfg storage.SyncConfig) error {
	if err := s.stores.SyncConfig.Put(ctx, &cfg); err != nil {
		persistFailures.WithLabelValues("sync_config").Inc()
		return fmt.Errorf("store sync config: %w", err)
	}
	s.syncConfig = cfg
	return nil
}

func cloneSubmissions(subs []scoring.Submission) []scoring.Submission {
	out := make([]scoring.Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.Clone())
	}
	return out
}
