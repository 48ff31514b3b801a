package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConcurrentModification is returned when another writer took every
// version Append tried.
var ErrConcurrentModification = errors.New("ledger: concurrent modification detected")

// maxAttempts bounds the version races Append retries.
const maxAttempts = 5

// Entry is one validation run of a source.
type Entry struct {
	Source     string
	Version    uint64
	CheckedAt  time.Time
	Valid      bool
	Records    int
	Flagged    uint64
	Violations int
	// FirstViolation is the message of the first violation, if any.
	FirstViolation string
}

// Client is the subset of the DynamoDB API the ledger needs.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Ledger appends and reads validation entries.
type Ledger struct {
	client Client
	table  string
	now    func() time.Time
}

// New wraps an existing client.
func New(client Client, table string) *Ledger {
	return &Ledger{client: client, table: table, now: time.Now}
}

// Open creates a Ledger using the default AWS credential chain. An empty
// region or endpoint keeps the environment's setting.
func Open(ctx context.Context, table, region, endpoint string) (*Ledger, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("ledger: load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return New(client, table), nil
}

// Append stores e as the next version of e.Source and returns the stored
// entry. CheckedAt is set when zero.
func (l *Ledger) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.Source == "" {
		return Entry{}, errors.New("ledger: entry without source")
	}
	if e.CheckedAt.IsZero() {
		e.CheckedAt = l.now().UTC()
	}

	for range maxAttempts {
		latest, ok, err := l.Latest(ctx, e.Source)
		if err != nil {
			return Entry{}, err
		}
		e.Version = 1
		if ok {
			e.Version = latest.Version + 1
		}

		_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(l.table),
			Item:                marshal(e),
			ConditionExpression: aws.String("attribute_not_exists(version)"),
		})
		if err == nil {
			return e, nil
		}
		var condErr *types.ConditionalCheckFailedException
		if !errors.As(err, &condErr) {
			return Entry{}, fmt.Errorf("ledger: put entry: %w", err)
		}
	}
	return Entry{}, ErrConcurrentModification
}

// Latest returns the newest entry of source. ok is false when there is none.
func (l *Ledger) Latest(ctx context.Context, source string) (Entry, bool, error) {
	entries, err := l.History(ctx, source, 1)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[0], true, nil
}

// History returns up to limit entries of source, newest first. A limit of 0
// returns all of them.
func (l *Ledger) History(ctx context.Context, source string, limit int) ([]Entry, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(l.table),
		KeyConditionExpression: aws.String("#src = :src"),
		ExpressionAttributeNames: map[string]string{
			"#src": "source",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":src": &types.AttributeValueMemberS{Value: source},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	var out []Entry
	for {
		resp, err := l.client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("ledger: query: %w", err)
		}
		for _, item := range resp.Items {
			e, err := unmarshal(item)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		if len(resp.LastEvaluatedKey) == 0 || (limit > 0 && len(out) >= limit) {
			break
		}
		in.ExclusiveStartKey = resp.LastEvaluatedKey
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func marshal(e Entry) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"source":     &types.AttributeValueMemberS{Value: e.Source},
		"version":    &types.AttributeValueMemberN{Value: strconv.FormatUint(e.Version, 10)},
		"checked_at": &types.AttributeValueMemberS{Value: e.CheckedAt.Format(time.RFC3339Nano)},
		"valid":      &types.AttributeValueMemberBOOL{Value: e.Valid},
		"records":    &types.AttributeValueMemberN{Value: strconv.Itoa(e.Records)},
		"flagged":    &types.AttributeValueMemberN{Value: strconv.FormatUint(e.Flagged, 10)},
		"violations": &types.AttributeValueMemberN{Value: strconv.Itoa(e.Violations)},
	}
	if e.FirstViolation != "" {
		item["first_violation"] = &types.AttributeValueMemberS{Value: e.FirstViolation}
	}
	return item
}

func unmarshal(item map[string]types.AttributeValue) (Entry, error) {
	var (
		e   Entry
		err error
	)
	str := func(name string) string {
		if v, ok := item[name].(*types.AttributeValueMemberS); ok {
			return v.Value
		}
		if err == nil {
			err = fmt.Errorf("ledger: invalid %s attribute", name)
		}
		return ""
	}
	num := func(name string) uint64 {
		v, ok := item[name].(*types.AttributeValueMemberN)
		if !ok {
			if err == nil {
				err = fmt.Errorf("ledger: invalid %s attribute", name)
			}
			return 0
		}
		n, perr := strconv.ParseUint(v.Value, 10, 64)
		if perr != nil && err == nil {
			err = fmt.Errorf("ledger: parse %s: %w", name, perr)
		}
		return n
	}

	e.Source = str("source")
	e.Version = num("version")
	e.Records = int(num("records"))
	e.Flagged = num("flagged")
	e.Violations = int(num("violations"))
	if ts := str("checked_at"); err == nil {
		e.CheckedAt, err = time.Parse(time.RFC3339Nano, ts)
	}
	if v, ok := item["valid"].(*types.AttributeValueMemberBOOL); ok {
		e.Valid = v.Value
	}
	if v, ok := item["first_violation"].(*types.AttributeValueMemberS); ok {
		e.FirstViolation = v.Value
	}
	return e, err
}
