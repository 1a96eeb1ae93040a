package mongostore

import (
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/learninghub-api/internal/domain"
)

// wrapError maps driver errors onto the store sentinels.
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
}

// toBSON renders fields as a document with _id first and keys sorted.
// Values the encoder rejects are reported as ErrInvalidDocument before any write.
func toBSON(docID string, fields domain.Fields) (bson.D, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != domain.FieldID {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	doc := make(bson.D, 0, len(keys)+1)
	doc = append(doc, bson.E{Key: "_id", Value: docID})
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: fields[k]})
	}
	if _, err := bson.Marshal(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	return doc, nil
}

// fromBSON splits _id off a decoded document.
func fromBSON(raw bson.M) domain.Document {
	docID := fmt.Sprint(raw["_id"])
	fields := make(domain.Fields, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = plain(v)
	}
	return domain.Document{ID: docID, Fields: fields}
}

// plain converts nested bson.D/bson.M/bson.A into maps and slices that
// encode as ordinary JSON objects and arrays.
func plain(v any) any {
	switch t := v.(type) {
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}
