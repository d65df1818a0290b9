package storage

import (
	"context"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

type OverrideStorage interface {
	GetAll(ctx context.Context) (scoring.Overrides, error)
	ReplaceAll(ctx context.Context, overrides scoring.Overrides) error
}

type DynamoOverrideStorage struct {
	Client    DynamoAPI
	TableName string
}

func (s *DynamoOverrideStorage) GetAll(ctx context.Context) (scoring.Overrides, error) {
	records, err := scanAll[overrideRecord](ctx, s.Client, s.TableName, "OVERRIDE")
	if err != nil {
		return nil, err
	}
	out := make(scoring.Overrides, len(records))
	for _, r := range records {
		o := r.Override
		out[scoring.IdentityKey(r.Key)] = &o
	}
	return out, nil
}

func (s *DynamoOverrideStorage) ReplaceAll(ctx context.Context, overrides scoring.Overrides) error {
	records := make([]overrideRecord, 0, len(overrides))
	for key, o := range overrides {
		if o == nil {
			continue
		}
		records = append(records, overrideRecord{Key: string(key), Override: *o})
	}
	return replaceAll(ctx, s.Client, s.TableName, "OVERRIDE", records, func(r overrideRecord) string {
		return r.Key
	})
}
