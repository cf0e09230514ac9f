package dynamodb

import (
	"context"
	"fmt"
	"time"

	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
	pkgerrors "itemname-api/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// MaxBatchGetKeys is the most keys DynamoDB accepts in one BatchGetItem request
const MaxBatchGetKeys = 100

// API is the subset of the DynamoDB client used by ItemRepository
type API interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

// itemKey is the primary key of the catalog table
type itemKey struct {
	ID uint32 `dynamodbav:"ID"`
}

// ItemRepository implements ports.ItemRepository on a DynamoDB table keyed by ID
type ItemRepository struct {
	client    API
	tableName string
	parser    *ItemParser
	retry     RetryConfig
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(client API, tableName string, retry RetryConfig, logger *zap.Logger) *ItemRepository {
	return &ItemRepository{
		client:    client,
		tableName: tableName,
		parser:    NewItemParser(),
		retry:     retry,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// SearchByName scans the table for items whose name in lang contains text.
// An empty text skips the filter and returns the whole table.
func (r *ItemRepository) SearchByName(ctx context.Context, lang valueobjects.Language, text string) ([]*entities.Item, error) {
	input := &dynamodb.ScanInput{
		TableName: &r.tableName,
	}

	if text != "" {
		filter := expression.Name(lang.FieldName()).Contains(text)
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to build scan filter").WithCause(err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	return r.scan(ctx, input)
}

// All scans the whole table
func (r *ItemRepository) All(ctx context.Context) ([]*entities.Item, error) {
	return r.scan(ctx, &dynamodb.ScanInput{TableName: &r.tableName})
}

// scan follows LastEvaluatedKey until the last page and decodes every record
func (r *ItemRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*entities.Item, error) {
	in := *input
	var items []*entities.Item

	throttled := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, pkgerrors.FromAWSError("Scan", err)
		}

		result, err := r.client.Scan(ctx, &in)
		if err != nil {
			if !pkgerrors.IsThrottling(err) || throttled >= r.retry.MaxAttempts {
				return nil, pkgerrors.FromAWSError("Scan", err)
			}
			if err := r.backoff(ctx, "Scan", throttled, zap.Int("page", page), zap.Error(err)); err != nil {
				return nil, err
			}
			throttled++
			page--
			continue
		}
		throttled = 0

		for _, raw := range result.Items {
			item, err := r.parser.FromItem(raw)
			if err != nil {
				r.logger.Error("Failed to decode scanned item",
					zap.String("table", r.tableName),
					zap.Int("page", page),
					zap.Error(err),
				)
				return nil, err
			}
			items = append(items, item)
		}

		r.logger.Debug("Scanned page",
			zap.String("table", r.tableName),
			zap.Int("page", page),
			zap.Int("count", len(result.Items)),
		)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return items, nil
}

// FindByIDs fetches items in chunks of MaxBatchGetKeys. Ids missing from the
// table are left out of the result.
func (r *ItemRepository) FindByIDs(ctx context.Context, ids []valueobjects.ItemID) ([]*entities.Item, error) {
	items := make([]*entities.Item, 0, len(ids))

	for start := 0; start < len(ids); start += MaxBatchGetKeys {
		end := min(start+MaxBatchGetKeys, len(ids))

		chunk, err := r.getChunk(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		items = append(items, chunk...)
	}

	return items, nil
}

// getChunk issues one BatchGetItem and re-issues it for unprocessed keys until
// none remain or the retry budget is spent.
func (r *ItemRepository) getChunk(ctx context.Context, ids []valueobjects.ItemID) ([]*entities.Item, error) {
	keys, err := r.buildKeys(ids)
	if err != nil {
		return nil, err
	}

	request := map[string]types.KeysAndAttributes{
		r.tableName: {Keys: keys},
	}

	var items []*entities.Item
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, pkgerrors.FromAWSError("BatchGetItem", err)
		}

		result, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: request,
		})
		if err != nil {
			// A throttled request is retried whole and spends the same budget
			// as unprocessed keys.
			if !pkgerrors.IsThrottling(err) || attempt >= r.retry.MaxAttempts {
				return nil, pkgerrors.FromAWSError("BatchGetItem", err)
			}
			if err := r.backoff(ctx, "BatchGetItem", attempt, zap.Int("keys", len(request[r.tableName].Keys)), zap.Error(err)); err != nil {
				return nil, err
			}
			continue
		}

		for _, raw := range result.Responses[r.tableName] {
			item, err := r.parser.FromItem(raw)
			if err != nil {
				r.logger.Error("Failed to decode batch item",
					zap.String("table", r.tableName),
					zap.Error(err),
				)
				return nil, err
			}
			items = append(items, item)
		}

		pending, ok := result.UnprocessedKeys[r.tableName]
		if !ok || len(pending.Keys) == 0 {
			return items, nil
		}

		if attempt >= r.retry.MaxAttempts {
			return nil, pkgerrors.NewInternalError(
				fmt.Sprintf("%d keys still unprocessed after %d retries", len(pending.Keys), r.retry.MaxAttempts),
			).WithCode("UNPROCESSED_KEYS")
		}

		if err := r.backoff(ctx, "BatchGetItem", attempt, zap.Int("unprocessed", len(pending.Keys))); err != nil {
			return nil, err
		}

		request = map[string]types.KeysAndAttributes{
			r.tableName: {Keys: pending.Keys},
		}
	}
}

// backoff waits before retry number attempt+1 of operation
func (r *ItemRepository) backoff(ctx context.Context, operation string, attempt int, fields ...zap.Field) error {
	delay := r.retry.calculateDelay(attempt)
	r.logger.Warn("Retrying "+operation,
		append([]zap.Field{
			zap.String("table", r.tableName),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		}, fields...)...,
	)
	if err := r.sleep(ctx, delay); err != nil {
		return pkgerrors.FromAWSError(operation, err)
	}
	return nil
}

// buildKeys marshals ids into primary keys, dropping repeats
func (r *ItemRepository) buildKeys(ids []valueobjects.ItemID) ([]map[string]types.AttributeValue, error) {
	seen := make(map[valueobjects.ItemID]struct{}, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		key, err := attributevalue.MarshalMap(itemKey{ID: id.Uint32()})
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to marshal item key").WithCause(err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}
