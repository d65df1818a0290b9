package storage

import (
	"context"
	"fmt"

	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the part of *dynamodb.Client the storages use.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

const (
	batchSize          = 25
	maxUnprocessedRuns = 3
)

// scanAll reads every item of a table, following pagination.
func scanAll[T any](ctx context.Context, client DynamoAPI, table, area string) ([]T, error) {
	var lastEvaluatedKey map[string]types.AttributeValue
	out := make([]T, 0)

	for {
		page, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			logging.Log.Errorf("%s: scan failed: %v", area, err)
			return nil, err
		}

		var items []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			logging.Log.Errorf("%s: failed to unmarshal list: %v", area, err)
			return nil, err
		}
		out = append(out, items...)

		if page.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = page.LastEvaluatedKey
	}
	return out, nil
}

// replaceAll makes the table hold exactly items: keys that are no longer present
// are deleted and every item is written again.
func replaceAll[T any](ctx context.Context, client DynamoAPI, table, area string, items []T, keyOf func(T) string) error {
	existing, err := scanKeys(ctx, client, table, area)
	if err != nil {
		return err
	}

	wanted := make(map[string]struct{}, len(items))
	requests := make([]types.WriteRequest, 0, len(items)+len(existing))
	for _, item := range items {
		wanted[keyOf(item)] = struct{}{}
		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			logging.Log.Errorf("%s: failed to marshal item %s: %v", area, keyOf(item), err)
			return err
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}

	for _, pk := range existing {
		if _, ok := wanted[pk]; ok {
			continue
		}
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: pk}},
			},
		})
	}

	for i := 0; i < len(requests); i += batchSize {
		end := i + batchSize
		if end > len(requests) {
			end = len(requests)
		}
		if err := writeBatch(ctx, client, table, requests[i:end]); err != nil {
			logging.Log.Errorf("%s: batch write failed: %v", area, err)
			return err
		}
	}
	logging.Log.Debugf("%s: replaced table %s with %d items", area, table, len(items))
	return nil
}

func writeBatch(ctx context.Context, client DynamoAPI, table string, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{table: requests}
	for run := 0; run < maxUnprocessedRuns; run++ {
		out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
	}
	return fmt.Errorf("%d items still unprocessed after %d attempts", len(pending[table]), maxUnprocessedRuns)
}

func scanKeys(ctx context.Context, client DynamoAPI, table, area string) ([]string, error) {
	var lastEvaluatedKey map[string]types.AttributeValue
	keys := make([]string, 0)

	for {
		page, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(table),
			ExclusiveStartKey:    lastEvaluatedKey,
			ProjectionExpression: aws.String("PK"),
		})
		if err != nil {
			logging.Log.Errorf("%s: key scan failed: %v", area, err)
			return nil, err
		}
		for _, item := range page.Items {
			if pk, ok := item["PK"].(*types.AttributeValueMemberS); ok {
				keys = append(keys, pk.Value)
			}
		}
		if page.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = page.LastEvaluatedKey
	}
	return keys, nil
}
