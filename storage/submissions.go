package storage

import (
	"context"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

// SubmissionStorage persists the whole submission collection as one snapshot.
type SubmissionStorage interface {
	GetAll(ctx context.Context) ([]scoring.Submission, error)
	ReplaceAll(ctx context.Context, subs []scoring.Submission) error
}

type DynamoSubmissionStorage struct {
	Client    DynamoAPI
	TableName string
}

func (s *DynamoSubmissionStorage) GetAll(ctx context.Context) ([]scoring.Submission, error) {
	return scanAll[scoring.Submission](ctx, s.Client, s.TableName, "SUBMISSION")
}

func (s *DynamoSubmissionStorage) ReplaceAll(ctx context.Context, subs []scoring.Submission) error {
	return replaceAll(ctx, s.Client, s.TableName, "SUBMISSION", subs, func(sub scoring.Submission) string {
		return sub.ID
	})
}
