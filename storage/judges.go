package storage

import (
	"context"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

type JudgeStorage interface {
	GetAll(ctx context.Context) ([]scoring.Judge, error)
	ReplaceAll(ctx context.Context, judges []scoring.Judge) error
}

type DynamoJudgeStorage struct {
	Client    DynamoAPI
	TableName string
}

func (s *DynamoJudgeStorage) GetAll(ctx context.Context) ([]scoring.Judge, error) {
	return scanAll[scoring.Judge](ctx, s.Client, s.TableName, "JUDGE")
}

func (s *DynamoJudgeStorage) ReplaceAll(ctx context.Context, judges []scoring.Judge) error {
	return replaceAll(ctx, s.Client, s.TableName, "JUDGE", judges, func(j scoring.Judge) string {
		return j.ID
	})
}
