package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/PabloGalante/wisdom-coach/internal/adapters/llm"
)

const (
	DefaultTableName  = "wisdom-coach-user-spend"
	DefaultDailyLimit = 1.0
	recordRetention   = 7 * 24 * time.Hour
)

// ItemAPI is the subset of the DynamoDB client used by the ledger.
type ItemAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// SpendLedger stores one spend record per user per UTC day.
type SpendLedger struct {
	client     ItemAPI
	tableName  string
	dailyLimit float64
	now        func() time.Time
}

type spendRecord struct {
	UserID     string  `dynamodbav:"user_id"`
	Date       string  `dynamodbav:"date"`
	Requests   int     `dynamodbav:"requests"`
	Cost       float64 `dynamodbav:"cost"`
	DailyLimit float64 `dynamodbav:"daily_limit"`
	CreatedAt  string  `dynamodbav:"created_at"`
	UpdatedAt  string  `dynamodbav:"updated_at"`
	TTL        int64   `dynamodbav:"ttl"`
}

// NewSpendLedger builds a ledger from the default AWS config chain.
func NewSpendLedger(ctx context.Context, tableName string, dailyLimit float64) (*SpendLedger, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSpendLedgerWithClient(dynamodb.NewFromConfig(cfg), tableName, dailyLimit), nil
}

// NewSpendLedgerWithClient builds a ledger on an existing client.
func NewSpendLedgerWithClient(client ItemAPI, tableName string, dailyLimit float64) *SpendLedger {
	if tableName == "" {
		tableName = DefaultTableName
	}
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &SpendLedger{
		client:     client,
		tableName:  tableName,
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

// CheckSpendLimit reports whether estimatedCost fits in today's budget.
func (l *SpendLedger) CheckSpendLimit(ctx context.Context, userID string, estimatedCost float64) (*llm.SpendCheck, error) {
	record, err := l.today(ctx, userID)
	if err != nil {
		return nil, err
	}

	check := &llm.SpendCheck{
		CurrentCost: record.Cost,
		DailyLimit:  record.DailyLimit,
		Remaining:   record.DailyLimit - record.Cost,
	}
	if record.Cost+estimatedCost > record.DailyLimit {
		check.Reason = fmt.Sprintf("daily limit exceeded: current $%.4f, request $%.4f, limit $%.4f",
			record.Cost, estimatedCost, record.DailyLimit)
		return check, nil
	}

	check.Allowed = true
	return check, nil
}

// RecordSpend adds cost to today's record.
func (l *SpendLedger) RecordSpend(ctx context.Context, userID string, cost float64) error {
	record, err := l.today(ctx, userID)
	if err != nil {
		return err
	}

	now := l.now().UTC()
	record.Requests++
	record.Cost += cost
	record.UpdatedAt = now.Format(time.RFC3339)
	record.TTL = now.Add(recordRetention).Unix()

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal spend record: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put spend record: %w", err)
	}
	return nil
}

// today loads the current record or a fresh one when none exists.
func (l *SpendLedger) today(ctx context.Context, userID string) (*spendRecord, error) {
	now := l.now().UTC()
	date := now.Format("2006-01-02")

	out, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
			"date":    &types.AttributeValueMemberS{Value: date},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get spend record: %w", err)
	}

	if out.Item == nil {
		ts := now.Format(time.RFC3339)
		return &spendRecord{
			UserID:     userID,
			Date:       date,
			DailyLimit: l.dailyLimit,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		}, nil
	}

	var record spendRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spend record: %w", err)
	}
	if record.DailyLimit <= 0 {
		record.DailyLimit = l.dailyLimit
	}
	return &record, nil
}
