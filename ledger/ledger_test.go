package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is an in-memory DynamoDB table keyed by source and version.
type mockClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	puts  int
}

func newMockClient() *mockClient {
	return &mockClient{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *mockClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++

	src := params.Item["source"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := src + ":" + version

	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := params.ExpressionAttributeValues[":src"].(*types.AttributeValueMemberS).Value
	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["source"].(*types.AttributeValueMemberS).Value == src {
			items = append(items, item)
		}
	}

	version := func(item map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		if aws.ToBool(params.ScanIndexForward) {
			return int(version(a)) - int(version(b))
		}
		return int(version(b)) - int(version(a))
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func TestLedger_Append(t *testing.T) {
	ctx := context.Background()
	l := New(newMockClient(), "validations")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	_, ok, err := l.Latest(ctx, "s3://runs/a.fq")
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := l.Append(ctx, Entry{Source: "s3://runs/a.fq", Valid: true, Records: 100})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, fixed, first.CheckedAt)

	second, err := l.Append(ctx, Entry{
		Source:         "s3://runs/a.fq",
		Records:        99,
		Flagged:        2,
		Violations:     3,
		FirstViolation: "line 41: invalid identifier",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)

	other, err := l.Append(ctx, Entry{Source: "s3://runs/b.fq", Valid: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), other.Version, "versions are per source")

	latest, ok, err := l.Latest(ctx, "s3://runs/a.fq")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, latest)

	history, err := l.History(ctx, "s3://runs/a.fq", 0)
	require.NoError(t, err)
	assert.Equal(t, []Entry{second, first}, history)

	_, err = l.Append(ctx, Entry{})
	assert.Error(t, err)
}

func TestLedger_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	l := New(newMockClient(), "validations")

	const writers = 4
	versions := make([]uint64, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := l.Append(ctx, Entry{Source: "reads.fq", Records: i})
			assert.NoError(t, err)
			versions[i] = e.Version
		}()
	}
	wg.Wait()

	slices.Sort(versions)
	assert.Equal(t, []uint64{1, 2, 3, 4}, versions)
}

// conflictClient reports a conflict for every write.
type conflictClient struct {
	*mockClient
}

func (c conflictClient) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
}

func TestLedger_ConflictExhausted(t *testing.T) {
	c := conflictClient{newMockClient()}
	_, err := New(c, "validations").Append(context.Background(), Entry{Source: "reads.fq"})
	require.ErrorIs(t, err, ErrConcurrentModification)
	assert.Equal(t, maxAttempts, c.puts)
}

type failingClient struct {
	*mockClient
}

func (failingClient) Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return nil, errors.New("throttled")
}

func TestLedger_QueryError(t *testing.T) {
	_, err := New(failingClient{newMockClient()}, "validations").Append(context.Background(), Entry{Source: "reads.fq"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestUnmarshal(t *testing.T) {
	e := Entry{
		Source:     "reads.fq",
		Version:    7,
		CheckedAt:  time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
		Valid:      true,
		Records:    12,
		Violations: 0,
	}
	got, err := unmarshal(marshal(e))
	require.NoError(t, err)
	assert.Equal(t, e, got)

	for _, attr := range []string{"source", "version", "checked_at"} {
		t.Run(fmt.Sprintf("missing %s", attr), func(t *testing.T) {
			item := marshal(e)
			delete(item, attr)
			_, err := unmarshal(item)
			assert.Error(t, err)
		})
	}
}
