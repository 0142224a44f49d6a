package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/mindnest/internal/models"
)

const (
	JOURNAL_TABLE_NAME = "JournalEntries"

	maxBatchSize     = 25
	maxBatchRetries  = 3
	initialBatchWait = 500 * time.Millisecond
)

var ErrUnprocessedItems = errors.New("[DynamoDB] items left unprocessed after retries")

// DynamoDBAPI is the subset of the DynamoDB client the journal store uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// JournalStore keeps entries in a table keyed by user_id (partition) and
// sort_key (sort). The sort key is the zero-padded created_at followed by the
// entry id, so entries written in the same millisecond never collide and a
// user's history is still one query in either order.
type JournalStore struct {
	client    DynamoDBAPI
	table     string
	batchWait time.Duration
}

// journalItem is the stored shape of a journal entry.
type journalItem struct {
	models.JournalEntry
	SortKey string `dynamodbav:"sort_key"`
}

// SortKey returns the table sort key for entry.
func SortKey(entry models.JournalEntry) string {
	return fmt.Sprintf("%013d#%s", entry.CreatedAt, entry.EntryID)
}

func marshalEntry(entry models.JournalEntry) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(journalItem{JournalEntry: entry, SortKey: SortKey(entry)})
}

// dedupeByKey drops all but the last entry for each primary key.
// BatchWriteItem rejects a request that names the same key twice.
func dedupeByKey(entries []models.JournalEntry) []models.JournalEntry {
	last := make(map[[2]string]int, len(entries))
	for i, e := range entries {
		last[[2]string{e.UserID, SortKey(e)}] = i
	}
	if len(last) == len(entries) {
		return entries
	}

	out := make([]models.JournalEntry, 0, len(last))
	for i, e := range entries {
		if last[[2]string{e.UserID, SortKey(e)}] == i {
			out = append(out, e)
		}
	}
	slog.Warn("[DynamoDB] Dropped duplicate journal keys from batch",
		slog.Int("dropped", len(entries)-len(out)))
	return out
}

func NewJournalStore(client DynamoDBAPI) *JournalStore {
	return &JournalStore{
		client:    client,
		table:     JOURNAL_TABLE_NAME,
		batchWait: initialBatchWait,
	}
}

func (s *JournalStore) PutEntry(ctx context.Context, entry models.JournalEntry) error {
	item, err := marshalEntry(entry)
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to marshal journal entry: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to put journal entry: %w", err)
	}

	slog.Info("[DynamoDB] Stored journal entry",
		slog.String("entry_id", entry.EntryID))
	return nil
}

// BatchPutEntries writes entries in batches of 25, retrying unprocessed items
// with doubling backoff. Entries repeating a key are collapsed to the last one.
func (s *JournalStore) BatchPutEntries(ctx context.Context, entries []models.JournalEntry) error {
	entries = dedupeByKey(entries)
	for i := 0; i < len(entries); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := min(i+maxBatchSize, len(entries))
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, entry := range entries[i:end] {
			item, err := marshalEntry(entry)
			if err != nil {
				return fmt.Errorf("[DynamoDB] failed to marshal journal entry %s: %w", entry.EntryID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored journal entries",
		slog.Int("count", len(entries)))
	return nil
}

func (s *JournalStore) writeBatch(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			s.table: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to batch write journal entries: %w", err)
	}

	backoff := s.batchWait
	for retry := 0; len(out.UnprocessedItems) > 0 && retry < maxBatchRetries; retry++ {
		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.Int("retry_attempt", retry+1),
			slog.Int("remaining_items", len(out.UnprocessedItems[s.table])))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] failed to retry batch write: %w", err)
		}
	}

	if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
		slog.Error("[DynamoDB] Some items were not written even after retries",
			slog.Int("remaining_items", remaining))
		return fmt.Errorf("%w: %d", ErrUnprocessedItems, remaining)
	}
	return nil
}

// QueryEntries loads every entry for userID ordered by sort key, which is
// created_at with ties broken by entry id.
func (s *JournalStore) QueryEntries(ctx context.Context, userID string, ascending bool) ([]models.JournalEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(ascending),
	}

	var entries []models.JournalEntry
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] query for journal entries failed: %w", err)
		}

		var page []journalItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("[DynamoDB] unable to unmarshal journal page: %w", err)
		}
		for _, item := range page {
			entries = append(entries, item.JournalEntry)
		}
	}

	slog.Debug("[DynamoDB] Retrieved journal entries",
		slog.String("user_id", userID),
		slog.Int("count", len(entries)))
	return entries, nil
}
