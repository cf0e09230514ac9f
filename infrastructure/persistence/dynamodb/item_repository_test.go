package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
	pkgerrors "itemname-api/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTable = "ItemNames"

func newTestRepository(client API) (*ItemRepository, *[]time.Duration) {
	repo := NewItemRepository(client, testTable, DefaultRetryConfig(), zap.NewNop())
	var slept []time.Duration
	repo.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return repo, &slept
}

func idsOf(items []*entities.Item) []uint32 {
	ids := make([]uint32, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID().Uint32())
	}
	return ids
}

func TestItemRepository_SearchByName(t *testing.T) {
	ctx := context.Background()

	t.Run("Should follow pagination until the last page", func(t *testing.T) {
		// Arrange
		client := &fakeClient{pageSize: 2}
		for i := 1; i <= 5; i++ {
			client.records = append(client.records, rawRecord(i, "1", fmt.Sprintf("Potion %d", i)))
		}
		repo, _ := newTestRepository(client)

		// Act
		items, err := repo.SearchByName(ctx, valueobjects.LanguageEnglish, "Potion")

		// Assert
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint32{1, 2, 3, 4, 5}, idsOf(items))
		require.Len(t, client.scanInputs, 3)
		assert.Nil(t, client.scanInputs[0].ExclusiveStartKey)
		assert.NotNil(t, client.scanInputs[1].ExclusiveStartKey)
		assert.NotNil(t, client.scanInputs[2].ExclusiveStartKey)
	})

	t.Run("Should filter on the language's name field", func(t *testing.T) {
		// Arrange
		client := &fakeClient{}
		repo, _ := newTestRepository(client)

		// Act
		_, err := repo.SearchByName(ctx, valueobjects.LanguageJapanese, "ポーション")

		// Assert
		require.NoError(t, err)
		require.Len(t, client.scanInputs, 1)
		input := client.scanInputs[0]
		assert.Equal(t, testTable, *input.TableName)
		require.NotNil(t, input.FilterExpression)
		assert.Contains(t, *input.FilterExpression, "contains(")
		assert.Contains(t, input.ExpressionAttributeNames, "#0")
		assert.Equal(t, "Name_ja", input.ExpressionAttributeNames["#0"])
		assert.Equal(t, &types.AttributeValueMemberS{Value: "ポーション"}, input.ExpressionAttributeValues[":0"])
	})

	t.Run("Should scan without a filter for an empty string", func(t *testing.T) {
		// Arrange
		client := &fakeClient{records: []map[string]types.AttributeValue{
			rawRecord(1, "1", "Potion"),
			rawRecord(2, "", "Ether"),
		}}
		repo, _ := newTestRepository(client)

		// Act
		items, err := repo.SearchByName(ctx, valueobjects.LanguageEnglish, "")

		// Assert
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Nil(t, client.scanInputs[0].FilterExpression)
	})

	t.Run("Should abort on the first undecodable record", func(t *testing.T) {
		// Arrange
		broken := rawRecord(2, "1", "Broken")
		delete(broken, "Name_fr")
		client := &fakeClient{pageSize: 1, records: []map[string]types.AttributeValue{
			rawRecord(1, "1", "Potion"),
			broken,
			rawRecord(3, "1", "Potion"),
		}}
		repo, _ := newTestRepository(client)

		// Act
		items, err := repo.SearchByName(ctx, valueobjects.LanguageEnglish, "o")

		// Assert
		assert.Nil(t, items)
		assert.True(t, pkgerrors.IsInternal(err))
		assert.Len(t, client.scanInputs, 2)
	})

	t.Run("Should classify store failures as internal errors", func(t *testing.T) {
		// Arrange
		client := &fakeClient{scanErr: &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no table"}}
		repo, _ := newTestRepository(client)

		// Act
		_, err := repo.SearchByName(ctx, valueobjects.LanguageEnglish, "x")

		// Assert
		appErr := pkgerrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.ErrorTypeInternal, appErr.Type)
		assert.Equal(t, "ResourceNotFoundException", appErr.Code)
	})

	t.Run("Should retry a throttled scan page without skipping it", func(t *testing.T) {
		// Arrange
		client := &fakeClient{pageSize: 1, scanThrottles: 2, records: []map[string]types.AttributeValue{
			rawRecord(1, "1", "Potion"),
			rawRecord(2, "1", "Hi-Potion"),
		}}
		repo, slept := newTestRepository(client)

		// Act
		items, err := repo.SearchByName(ctx, valueobjects.LanguageEnglish, "potion")

		// Assert
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint32{1, 2}, idsOf(items))
		assert.Len(t, *slept, 2)
		require.Len(t, client.scanInputs, 5)
		for _, in := range client.scanInputs[:3] {
			assert.Nil(t, in.ExclusiveStartKey)
		}
	})

	t.Run("Should fail once scan throttling outlasts the retry budget", func(t *testing.T) {
		// Arrange
		client := &fakeClient{scanThrottles: 100, records: []map[string]types.AttributeValue{rawRecord(1, "1", "Potion")}}
		repo, slept := newTestRepository(client)

		// Act
		_, err := repo.SearchByName(ctx, valueobjects.LanguageEnglish, "potion")

		// Assert
		appErr := pkgerrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "ProvisionedThroughputExceededException", appErr.Code)
		assert.Len(t, client.scanInputs, 9)
		assert.Len(t, *slept, 8)
	})

	t.Run("Should stop when the context is done", func(t *testing.T) {
		// Arrange
		client := &fakeClient{}
		repo, _ := newTestRepository(client)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		// Act
		_, err := repo.SearchByName(cancelled, valueobjects.LanguageEnglish, "x")

		// Assert
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, pkgerrors.IsInternal(err))
		assert.Empty(t, client.scanInputs)
	})
}

func TestItemRepository_FindByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("Should split ids into chunks of at most 100", func(t *testing.T) {
		// Arrange
		client := &fakeClient{}
		ids := make([]valueobjects.ItemID, 0, 250)
		for i := 1; i <= 250; i++ {
			ids = append(ids, valueobjects.ItemID(i))
			client.records = append(client.records, rawRecord(i, "1", "Item"))
		}
		repo, _ := newTestRepository(client)

		// Act
		items, err := repo.FindByIDs(ctx, ids)

		// Assert
		require.NoError(t, err)
		assert.Len(t, items, 250)
		assert.Equal(t, []int{100, 100, 50}, client.batchSizes(testTable))
	})

	t.Run("Should retry unprocessed keys before the next chunk", func(t *testing.T) {
		// Arrange
		client := &fakeClient{unprocessed: map[int]int{0: 10}}
		ids := make([]valueobjects.ItemID, 0, 250)
		for i := 1; i <= 250; i++ {
			ids = append(ids, valueobjects.ItemID(i))
			client.records = append(client.records, rawRecord(i, "1", "Item"))
		}
		repo, slept := newTestRepository(client)

		// Act
		items, err := repo.FindByIDs(ctx, ids)

		// Assert
		require.NoError(t, err)
		assert.Len(t, items, 250)
		assert.Equal(t, []int{100, 10, 100, 50}, client.batchSizes(testTable))
		assert.Len(t, *slept, 1)
		assert.ElementsMatch(t, idsOf(items), func() []uint32 {
			all := make([]uint32, 0, 250)
			for i := 1; i <= 250; i++ {
				all = append(all, uint32(i))
			}
			return all
		}())
	})

	t.Run("Should give up after the retry budget", func(t *testing.T) {
		// Arrange
		unprocessed := map[int]int{}
		for call := 0; call <= 8; call++ {
			unprocessed[call] = 1
		}
		client := &fakeClient{
			records:     []map[string]types.AttributeValue{rawRecord(1, "1", "A"), rawRecord(2, "1", "B")},
			unprocessed: unprocessed,
		}
		repo, slept := newTestRepository(client)

		// Act
		items, err := repo.FindByIDs(ctx, []valueobjects.ItemID{1, 2})

		// Assert
		assert.Nil(t, items)
		appErr := pkgerrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "UNPROCESSED_KEYS", appErr.Code)
		assert.Len(t, client.batchInputs, 9)
		assert.Len(t, *slept, 8)
	})

	t.Run("Should skip ids that are not in the table", func(t *testing.T) {
		// Arrange
		client := &fakeClient{records: []map[string]types.AttributeValue{
			rawRecord(5, "1", "Five"),
			rawRecord(10, "1", "Ten"),
		}}
		repo, _ := newTestRepository(client)

		// Act
		items, err := repo.FindByIDs(ctx, []valueobjects.ItemID{5, 10, 999})

		// Assert
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint32{5, 10}, idsOf(items))
	})

	t.Run("Should drop duplicate ids within a chunk", func(t *testing.T) {
		// Arrange
		client := &fakeClient{records: []map[string]types.AttributeValue{rawRecord(7, "1", "Seven")}}
		repo, _ := newTestRepository(client)

		// Act
		items, err := repo.FindByIDs(ctx, []valueobjects.ItemID{7, 7, 7})

		// Assert
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, []int{1}, client.batchSizes(testTable))
	})

	t.Run("Should retry a throttled batch request and then succeed", func(t *testing.T) {
		// Arrange
		client := &fakeClient{batchThrottles: 3, records: []map[string]types.AttributeValue{
			rawRecord(1, "1", "A"),
			rawRecord(2, "1", "B"),
		}}
		repo, slept := newTestRepository(client)

		// Act
		items, err := repo.FindByIDs(ctx, []valueobjects.ItemID{1, 2})

		// Assert
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint32{1, 2}, idsOf(items))
		assert.Equal(t, []int{2, 2, 2, 2}, client.batchSizes(testTable))
		assert.Len(t, *slept, 3)
	})

	t.Run("Should fail once batch throttling outlasts the retry budget", func(t *testing.T) {
		// Arrange
		client := &fakeClient{batchThrottles: 100, records: []map[string]types.AttributeValue{rawRecord(1, "1", "A")}}
		repo, slept := newTestRepository(client)

		// Act
		items, err := repo.FindByIDs(ctx, []valueobjects.ItemID{1})

		// Assert
		assert.Nil(t, items)
		appErr := pkgerrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "ProvisionedThroughputExceededException", appErr.Code)
		assert.Len(t, client.batchInputs, 9)
		assert.Len(t, *slept, 8)
	})

	t.Run("Should propagate store failures", func(t *testing.T) {
		// Arrange
		client := &fakeClient{batchErr: errors.New("connection reset")}
		repo, _ := newTestRepository(client)

		// Act
		_, err := repo.FindByIDs(ctx, []valueobjects.ItemID{1})

		// Assert
		assert.True(t, pkgerrors.IsInternal(err))
		assert.Equal(t, "DATABASE", pkgerrors.GetAppError(err).Code)
	})
}

func TestItemRepository_All(t *testing.T) {
	client := &fakeClient{pageSize: 1, records: []map[string]types.AttributeValue{
		rawRecord(1, "1", "A"),
		rawRecord(2, "", "B"),
	}}
	repo, _ := newTestRepository(client)

	items, err := repo.All(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{1, 2}, idsOf(items))
	assert.Nil(t, client.scanInputs[0].FilterExpression)
}

func TestRetryConfig_calculateDelay(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:   5,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}

	first := cfg.calculateDelay(0)
	assert.InDelta(t, float64(100*time.Millisecond), float64(first), float64(10*time.Millisecond))

	third := cfg.calculateDelay(2)
	assert.InDelta(t, float64(400*time.Millisecond), float64(third), float64(40*time.Millisecond))

	assert.Equal(t, time.Second, cfg.calculateDelay(10))
}

func TestRetryConfig_calculateDelay_LargeAttempts(t *testing.T) {
	cfg := DefaultRetryConfig()

	for _, attempt := range []int{37, 38, 40, 60, 99, 2000} {
		t.Run(fmt.Sprintf("Should cap attempt %d at MaxDelay", attempt), func(t *testing.T) {
			assert.Equal(t, cfg.MaxDelay, cfg.calculateDelay(attempt))
		})
	}
}
