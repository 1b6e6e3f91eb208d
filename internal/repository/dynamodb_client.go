package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"application-generator/internal/domain"
)

const (
	pkPrefixDay = "DAY#"
	skPrefixGen = "GEN#"
	ttlDuration = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client writes generation records to a DynamoDB table. Records are
// partitioned by UTC day and sorted by creation time.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func dayPK(ts time.Time) string {
	return pkPrefixDay + ts.UTC().Format("2006-01-02")
}

func genSK(ts time.Time, id string) string {
	return skPrefixGen + ts.UTC().Format(time.RFC3339Nano) + "#" + id
}

// Record persists rec. Keys, creation time and TTL are derived when unset.
func (c *Client) Record(ctx context.Context, rec domain.GenerationRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("repository: Record: ID is required")
	}
	now := c.now().UTC()
	if rec.PK == "" {
		rec.PK = dayPK(now)
	}
	if rec.SK == "" {
		rec.SK = genSK(now, rec.ID)
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = now.Format(time.RFC3339)
	}
	if rec.TTL == 0 {
		rec.TTL = now.Add(ttlDuration).Unix()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                recordItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: Record: %w", err)
	}
	return nil
}

func recordItem(rec domain.GenerationRecord) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":                  &types.AttributeValueMemberS{Value: rec.PK},
		"SK":                  &types.AttributeValueMemberS{Value: rec.SK},
		"id":                  &types.AttributeValueMemberS{Value: rec.ID},
		"status":              &types.AttributeValueMemberS{Value: rec.Status},
		"model":               &types.AttributeValueMemberS{Value: rec.Model},
		"resumeChars":         &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.ResumeChars)},
		"jobDescriptionChars": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.JobDescriptionChars)},
		"durationMs":          &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.DurationMs)},
		"createdAt":           &types.AttributeValueMemberS{Value: rec.CreatedAt},
		"ttl":                 &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.TTL)},
	}
	// optional attributes
	if rec.CorrelationID != "" {
		item["correlationId"] = &types.AttributeValueMemberS{Value: rec.CorrelationID}
	}
	if rec.Reason != "" {
		item["reason"] = &types.AttributeValueMemberS{Value: rec.Reason}
	}
	return item
}

// Noop discards records. It is used when no table is configured.
type Noop struct{}

func (Noop) Record(context.Context, domain.GenerationRecord) error { return nil }
