package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/multierr"

	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/docvalue"
	"github.com/learninghub-api/internal/pkg/id"
)

// maxTransactItems is the DynamoDB limit on actions per TransactWriteItems call.
const maxTransactItems = 100

// API is the subset of the DynamoDB client the document store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store is a DocumentStore with one DynamoDB table per collection, keyed by "id".
// Filters run as Scan filter expressions; ordering is applied after the scan.
type Store struct {
	client API
	newID  func() string
}

var _ domain.DocumentStore = (*Store)(nil)

func NewStore(client API) *Store {
	return &Store{client: client, newID: id.New}
}

func (s *Store) Find(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(collection)}
	if len(q.Filters) > 0 {
		fe, err := buildFilterExpr(q.Filters)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
		}
		input.FilterExpression = aws.String(fe.Expr)
		input.ExpressionAttributeNames = fe.Names
		input.ExpressionAttributeValues = fe.Values
	}

	docs := make([]domain.Document, 0)
	p := dynamodb.NewScanPaginator(s.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, classify(err)
		}
		for _, item := range out.Items {
			doc, err := decodeItem(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docvalue.Order(docs, q.Order), nil
}

func (s *Store) Get(ctx context.Context, collection, docID string) (*domain.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(collection),
		Key:       strKey(keyAttr, docID),
	})
	if err != nil {
		return nil, classify(err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, docID, domain.ErrNotFound)
	}
	doc, err := decodeItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) Insert(ctx context.Context, collection, docID string, fields domain.Fields) (string, error) {
	if docID == "" {
		docID = s.newID()
	}
	item, err := encodeItem(docID, fields)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(collection),
		Item:      item,
	})
	if err != nil {
		return "", classify(err)
	}
	return docID, nil
}

// Update applies a SET expression guarded by attribute_exists so that a
// missing document is reported as NotFound instead of being created.
func (s *Store) Update(ctx context.Context, collection, docID string, fields domain.Fields) error {
	ue, err := buildUpdateExpr(fields.Without(keyAttr))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	ue.Names["#pk"] = keyAttr
	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(collection),
		Key:                       strKey(keyAttr, docID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("%s/%s: %w", collection, docID, classify(err))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, docID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(collection),
		Key:                      strKey(keyAttr, docID),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": keyAttr},
	})
	if err != nil {
		return fmt.Errorf("%s/%s: %w", collection, docID, classify(err))
	}
	return nil
}

// BatchInsert writes records with TransactWriteItems. Batches above the
// transaction limit are split into chunks; when a later chunk fails, the
// chunks already committed are deleted again before the error is returned.
func (s *Store) BatchInsert(ctx context.Context, collection string, records []domain.Fields) ([]string, error) {
	ids := make([]string, len(records))
	puts := make([]types.TransactWriteItem, len(records))
	for i, rec := range records {
		ids[i] = s.newID()
		item, err := encodeItem(ids[i], rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		puts[i] = types.TransactWriteItem{Put: &types.Put{
			TableName: aws.String(collection),
			Item:      item,
		}}
	}

	for start := 0; start < len(puts); start += maxTransactItems {
		end := min(start+maxTransactItems, len(puts))
		_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: puts[start:end],
		})
		if err != nil {
			return nil, s.rollback(ctx, collection, ids[:start], classify(err))
		}
	}
	return ids, nil
}

// rollback deletes already committed ids and returns cause combined with
// any compensation failure.
func (s *Store) rollback(ctx context.Context, collection string, committed []string, cause error) error {
	// Compensation must run even when ctx is already canceled.
	ctx = context.WithoutCancel(ctx)
	for start := 0; start < len(committed); start += maxTransactItems {
		end := min(start+maxTransactItems, len(committed))
		deletes := make([]types.TransactWriteItem, 0, end-start)
		for _, docID := range committed[start:end] {
			deletes = append(deletes, types.TransactWriteItem{Delete: &types.Delete{
				TableName: aws.String(collection),
				Key:       strKey(keyAttr, docID),
			}})
		}
		if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: deletes}); err != nil {
			cause = multierr.Append(cause, fmt.Errorf("rollback %s: %w", collection, err))
		}
	}
	return cause
}
