// Package syncer exchanges the local collections with a shared remote snapshot so
// several devices converge on one data set.
package syncer

import (
	"context"
	"errors"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

var (
	ErrSessionNotFound = errors.New("sync session not found")
	ErrSyncDisabled    = errors.New("sync is disabled")
)

// Snapshot is the wire form of a device's data. The JSON field names match the
// bins written by earlier clients.
type Snapshot struct {
	Submissions []scoring.Submission `json:"candidates"`
	Judges      []scoring.Judge      `json:"judges"`
	Version     int64                `json:"version"`
}

// Remote is a shared snapshot store addressed by an opaque session token.
type Remote interface {
	CreateSession(ctx context.Context, initial Snapshot) (string, error)
	// Pull returns ErrSessionNotFound when token is unknown to the remote.
	Pull(ctx context.Context, token string) (*Snapshot, error)
	Push(ctx context.Context, token string, snap Snapshot) error
}
