package storage

import (
	"context"

	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type SyncConfigStorage interface {
	// Get returns ErrItemNotFound when the device never configured sync.
	Get(ctx context.Context) (*SyncConfig, error)
	Put(ctx context.Context, cfg *SyncConfig) error
}

const syncConfigKey = "sync"

// DynamoSyncConfigStorage keeps the single sync config item in a settings table.
type DynamoSyncConfigStorage struct {
	Client    DynamoAPI
	TableName string
}

func (s *DynamoSyncConfigStorage) Get(ctx context.Context) (*SyncConfig, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": syncConfigKey})
	if err != nil {
		logging.Log.Errorf("SYNC: failed to marshal config key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("SYNC: GetItem for config failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var record syncConfigRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		logging.Log.Errorf("SYNC: failed to unmarshal config: %v", err)
		return nil, err
	}
	return &record.SyncConfig, nil
}

func (s *DynamoSyncConfigStorage) Put(ctx context.Context, cfg *SyncConfig) error {
	item, err := attributevalue.MarshalMap(syncConfigRecord{Key: syncConfigKey, SyncConfig: *cfg})
	if err != nil {
		logging.Log.Errorf("SYNC: failed to marshal config: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("SYNC: failed to store config: %v", err)
		return err
	}
	return nil
}
