package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConcurrentPublish is returned when another writer published a snapshot
// version concurrently.
var ErrConcurrentPublish = errors.New("concurrent snapshot publish detected")

// DDBClient is the subset of the DynamoDB API the pointer store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// PointerStore tracks the current snapshot blob per index name in a
// DynamoDB table, giving S3-backed deployments the atomic compare-and-swap
// publish that S3 itself lacks: snapshots are written under versioned names
// and the pointer row decides which one readers see.
//
// Table schema: partition key index_name (S), sort key version (N).
// Create with:
//
//	aws dynamodb create-table \
//	  --table-name succinct-snapshots \
//	  --attribute-definitions AttributeName=index_name,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=index_name,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type PointerStore struct {
	client    DDBClient
	tableName string
}

// NewPointerStore creates a snapshot pointer store over the given table.
func NewPointerStore(client DDBClient, tableName string) *PointerStore {
	return &PointerStore{
		client:    client,
		tableName: tableName,
	}
}

// Current returns the latest published version and snapshot blob name for
// an index. A zero version means nothing has been published yet.
func (p *PointerStore) Current(ctx context.Context, indexName string) (uint64, string, error) {
	resp, err := p.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(p.tableName),
		KeyConditionExpression: aws.String("index_name = :name"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: indexName},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query snapshot pointer: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in pointer table")
	}
	blobAttr, ok := item["blob_name"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid blob_name attribute in pointer table")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return 0, "", fmt.Errorf("parse snapshot version: %w", err)
	}
	return version, blobAttr.Value, nil
}

// Publish atomically records blobName as the next snapshot version of an
// index. It fails with ErrConcurrentPublish when another writer claimed the
// same version first.
func (p *PointerStore) Publish(ctx context.Context, indexName, blobName string) (uint64, error) {
	current, _, err := p.Current(ctx, indexName)
	if err != nil {
		return 0, err
	}
	next := current + 1

	_, err = p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(p.tableName),
		Item: map[string]types.AttributeValue{
			"index_name": &types.AttributeValueMemberS{Value: indexName},
			"version":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", next)},
			"blob_name":  &types.AttributeValueMemberS{Value: blobName},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentPublish
		}
		return 0, fmt.Errorf("publish snapshot version: %w", err)
	}
	return next, nil
}
