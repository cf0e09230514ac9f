package dynamodb

import (
	"context"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// fakeClient is an in-memory API. Scan serves pages of pageSize records;
// BatchGetItem returns every requested key present in records unless
// unprocessed says otherwise for that call.
type fakeClient struct {
	mu sync.Mutex

	records  []map[string]types.AttributeValue
	pageSize int

	scanInputs  []*dynamodb.ScanInput
	batchInputs []*dynamodb.BatchGetItemInput

	// unprocessed maps a BatchGetItem call index to how many of its keys
	// are reported back as unprocessed
	unprocessed map[int]int

	scanErr  error
	batchErr error

	// scanThrottles and batchThrottles fail that many leading calls with a
	// throughput exception
	scanThrottles  int
	batchThrottles int
}

func throttlingError() error {
	return &smithy.GenericAPIError{
		Code:    "ProvisionedThroughputExceededException",
		Message: "rate exceeded",
		Fault:   smithy.FaultClient,
	}
}

func (f *fakeClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *params
	f.scanInputs = append(f.scanInputs, &copied)
	if f.scanThrottles > 0 {
		f.scanThrottles--
		return nil, throttlingError()
	}
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	start := 0
	if params.ExclusiveStartKey != nil {
		n, _ := strconv.Atoi(params.ExclusiveStartKey["cursor"].(*types.AttributeValueMemberN).Value)
		start = n
	}

	size := f.pageSize
	if size == 0 {
		size = len(f.records)
	}
	end := min(start+size, len(f.records))

	out := &dynamodb.ScanOutput{Items: f.records[start:end]}
	if end < len(f.records) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"cursor": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	return out, nil
}

func (f *fakeClient) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.batchInputs)
	f.batchInputs = append(f.batchInputs, params)
	if f.batchThrottles > 0 {
		f.batchThrottles--
		return nil, throttlingError()
	}
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	out := &dynamodb.BatchGetItemOutput{
		Responses:       map[string][]map[string]types.AttributeValue{},
		UnprocessedKeys: map[string]types.KeysAndAttributes{},
	}

	for table, req := range params.RequestItems {
		keys := req.Keys
		if n := f.unprocessed[call]; n > 0 {
			out.UnprocessedKeys[table] = types.KeysAndAttributes{Keys: keys[len(keys)-n:]}
			keys = keys[:len(keys)-n]
		}

		for _, key := range keys {
			id := key[AttrID].(*types.AttributeValueMemberN).Value
			for _, record := range f.records {
				if record[AttrID].(*types.AttributeValueMemberN).Value == id {
					out.Responses[table] = append(out.Responses[table], record)
				}
			}
		}
	}

	return out, nil
}

func (f *fakeClient) batchSizes(table string) []int {
	sizes := make([]int, 0, len(f.batchInputs))
	for _, in := range f.batchInputs {
		sizes = append(sizes, len(in.RequestItems[table].Keys))
	}
	return sizes
}

func rawRecord(id int, categoryID string, nameEN string) map[string]types.AttributeValue {
	record := map[string]types.AttributeValue{
		AttrID:               &types.AttributeValueMemberN{Value: strconv.Itoa(id)},
		AttrIcon:             &types.AttributeValueMemberS{Value: "/i/000000/000001.png"},
		"Name_de":            &types.AttributeValueMemberS{Value: nameEN + " de"},
		"Name_en":            &types.AttributeValueMemberS{Value: nameEN},
		"Name_fr":            &types.AttributeValueMemberS{Value: nameEN + " fr"},
		"Name_ja":            &types.AttributeValueMemberS{Value: nameEN + " ja"},
		AttrEorzeaDatabaseID: &types.AttributeValueMemberS{Value: "edb" + strconv.Itoa(id)},
	}
	if categoryID != "" {
		record[AttrCategory] = &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			AttrCategoryID:   &types.AttributeValueMemberN{Value: categoryID},
			AttrCategoryName: &types.AttributeValueMemberS{Value: "Category " + categoryID},
		}}
	}
	return record
}
