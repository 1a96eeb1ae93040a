// Package mongostore implements the DocumentStore on MongoDB.
//
// Each collection maps to a MongoDB collection of the same name and the
// document identifier is stored as a string _id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/multierr"

	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/id"
)

// codeIllegalOperation is returned by standalone servers for transactional writes.
const codeIllegalOperation = 20

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	newID  func() string
}

var _ domain.DocumentStore = (*Store)(nil)

// NewStore connects to uri and pings the server before returning.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName), newID: id.New}, nil
}

func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the secondary indexes used by filtered and ordered listings.
func (s *Store) EnsureIndexes(ctx context.Context, specs []domain.IndexSpec) error {
	for _, spec := range specs {
		dir := 1
		if spec.Desc {
			dir = -1
		}
		model := mongo.IndexModel{Keys: bson.D{{Key: spec.Field, Value: dir}}}
		if _, err := s.col(spec.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s.%s: %w", spec.Collection, spec.Field, err)
		}
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	filter := bson.D{}
	filtered := make(map[string]bool, len(q.Filters))
	for _, f := range q.Filters {
		filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
		filtered[f.Field] = true
	}

	opts := options.Find()
	if q.Order != nil {
		// Documents without the ordered field are excluded, as in the other drivers.
		if !filtered[q.Order.Field] {
			filter = append(filter, bson.E{Key: q.Order.Field, Value: bson.D{{Key: "$exists", Value: true}}})
		}
		dir := 1
		if q.Order.Direction == domain.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.Order.Field, Value: dir}})
	} else {
		opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}

	cursor, err := s.col(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	docs := make([]domain.Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, wrapError(err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err)
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, docID string) (*domain.Document, error) {
	var raw bson.M
	err := s.col(collection).FindOne(ctx, bson.D{{Key: "_id", Value: docID}}).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, docID, wrapError(err))
	}
	doc := fromBSON(raw)
	return &doc, nil
}

// Insert uses InsertOne for store-assigned ids and an upserting ReplaceOne for
// caller-assigned ones.
func (s *Store) Insert(ctx context.Context, collection, docID string, fields domain.Fields) (string, error) {
	explicit := docID != ""
	if !explicit {
		docID = s.newID()
	}
	doc, err := toBSON(docID, fields)
	if err != nil {
		return "", err
	}

	if explicit {
		_, err = s.col(collection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: docID}}, doc, options.Replace().SetUpsert(true))
	} else {
		_, err = s.col(collection).InsertOne(ctx, doc)
	}
	if err != nil {
		return "", wrapError(err)
	}
	return docID, nil
}

func (s *Store) Update(ctx context.Context, collection, docID string, fields domain.Fields) error {
	set := fields.Without(domain.FieldID)
	if len(set) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidDocument)
	}
	if _, err := bson.Marshal(set); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	res, err := s.col(collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: docID}}, bson.D{{Key: "$set", Value: bson.M(set)}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, docID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, docID string) error {
	res, err := s.col(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: docID}})
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, docID, domain.ErrNotFound)
	}
	return nil
}

// BatchInsert runs InsertMany inside a session transaction. Standalone
// servers reject transactions; there the inserted documents are deleted
// again if InsertMany fails part-way.
func (s *Store) BatchInsert(ctx context.Context, collection string, records []domain.Fields) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}
	ids := make([]string, len(records))
	docs := make([]any, len(records))
	for i, rec := range records {
		ids[i] = s.newID()
		doc, err := toBSON(ids[i], rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		docs[i] = doc
	}

	err := s.insertManyTx(ctx, collection, docs)
	if isTransactionUnsupported(err) {
		err = s.insertManyCompensated(ctx, collection, ids, docs)
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) insertManyTx(ctx context.Context, collection string, docs []any) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return wrapError(err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return s.col(collection).InsertMany(ctx, docs)
	})
	if err != nil && !isTransactionUnsupported(err) {
		return wrapError(err)
	}
	return err
}

func (s *Store) insertManyCompensated(ctx context.Context, collection string, ids []string, docs []any) error {
	_, err := s.col(collection).InsertMany(ctx, docs)
	if err == nil {
		return nil
	}
	err = wrapError(err)
	cleanup := context.WithoutCancel(ctx)
	if _, delErr := s.col(collection).DeleteMany(cleanup, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}); delErr != nil {
		err = multierr.Append(err, fmt.Errorf("rollback %s: %w", collection, delErr))
	}
	return err
}

func isTransactionUnsupported(err error) bool {
	var ce mongo.CommandError
	return errors.As(err, &ce) && ce.Code == codeIllegalOperation
}
