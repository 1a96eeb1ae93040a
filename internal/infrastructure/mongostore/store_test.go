package mongostore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learninghub-api/internal/domain"
)

// testStore connects to MONGO_TEST_URI (default localhost) and skips when no server answers.
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx := context.Background()
	s, err := NewStore(ctx, uri, "learning_hub_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	require.NoError(t, s.db.Drop(ctx))
	require.NoError(t, s.EnsureIndexes(ctx, []domain.IndexSpec{
		{Collection: "lessons", Field: "course_id"},
		{Collection: "notifications", Field: "created_at", Desc: true},
	}))

	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestStore_CRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	docID, err := s.Insert(ctx, "courses", "", domain.Fields{"title": "Go", "level": "beginner"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "courses", docID)
	require.NoError(t, err)
	assert.Equal(t, "Go", doc.Fields["title"])

	require.NoError(t, s.Update(ctx, "courses", docID, domain.Fields{"level": "advanced"}))
	doc, err = s.Get(ctx, "courses", docID)
	require.NoError(t, err)
	assert.Equal(t, "Go", doc.Fields["title"])
	assert.Equal(t, "advanced", doc.Fields["level"])

	require.NoError(t, s.Delete(ctx, "courses", docID))
	_, err = s.Get(ctx, "courses", docID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "courses", docID), domain.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, "courses", docID, domain.Fields{"a": 1}), domain.ErrNotFound)
}

func TestStore_InsertCallerAssignedIDReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "users", "1", domain.Fields{"name": "Ada", "role": "student"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "users", "1", domain.Fields{"name": "Grace"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "users", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.Fields{"name": "Grace"}, doc.Fields)
}

func TestStore_FindFilterAndOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, _ = s.Insert(ctx, "lessons", "", domain.Fields{"course_id": 1, "created_at": "2024-01-01T00:00:00.000000Z"})
	_, _ = s.Insert(ctx, "lessons", "", domain.Fields{"course_id": 1, "created_at": "2024-02-01T00:00:00.000000Z"})
	_, _ = s.Insert(ctx, "lessons", "", domain.Fields{"course_id": "1"})
	_, _ = s.Insert(ctx, "lessons", "", domain.Fields{"course_id": 1})

	docs, err := s.Find(ctx, "lessons", domain.Where("course_id", int64(1)))
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	ordered, err := s.Find(ctx, "lessons", domain.Where("course_id", int64(1)).OrderBy("created_at", domain.Desc))
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "2024-02-01T00:00:00.000000Z", ordered[0].Fields["created_at"])
}

func TestStore_BatchInsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ids, err := s.BatchInsert(ctx, "notifications", []domain.Fields{{"n": 1}, {"n": 2}})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	docs, err := s.Find(ctx, "notifications", domain.All())
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = s.BatchInsert(ctx, "notifications", []domain.Fields{{"n": 3}, {"bad": make(chan int)}})
	require.ErrorIs(t, err, domain.ErrInvalidDocument)

	docs, err = s.Find(ctx, "notifications", domain.All())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
