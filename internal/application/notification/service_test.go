package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/learninghub-api/internal/application/resource"
	"github.com/learninghub-api/internal/config"
	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/infrastructure/memstore"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishBroadcast(ctx context.Context, tmpl domain.BroadcastTemplate, recipients int) error {
	return m.Called(ctx, tmpl, recipients).Error(0)
}

// failingBatch rejects every batch write.
type failingBatch struct{ *memstore.Store }

func (f failingBatch) BatchInsert(context.Context, string, []domain.Fields) ([]string, error) {
	return nil, fmt.Errorf("%w: transaction cancelled", domain.ErrStoreUnavailable)
}

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store *memstore.Store, batch batchStore, pub Publisher) Service {
	t.Helper()
	policies := resource.NewPolicies(config.Collections{Users: "users", Notifications: "notifications"})
	clock := func() time.Time { return fixedNow }
	return NewService(ServiceDeps{
		Resource:        resource.NewService(store, policies.Notifications, resource.WithClock(clock)),
		Store:           batch,
		UsersCollection: "users",
		Publisher:       pub,
		Now:             clock,
	})
}

func seedUsers(t *testing.T, store *memstore.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := store.Insert(context.Background(), "users", id, domain.Fields{"name": "user " + id})
		require.NoError(t, err)
	}
}

func TestBroadcast_OneNotificationPerUser(t *testing.T) {
	store := memstore.New()
	seedUsers(t, store, "1", "2", "abc")
	svc := newTestService(t, store, store, nil)
	ctx := context.Background()

	res, err := svc.Broadcast(ctx, domain.BroadcastTemplate{Title: "Hi", Message: "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Len(t, res.NotificationIDs, 3)

	for _, id := range res.NotificationIDs {
		n, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Hi", n["title"])
		assert.Equal(t, "announcement", n["type"])
		assert.Equal(t, false, n["is_read"])
		assert.Equal(t, "2024-05-01T08:00:00.000000Z", n["created_at"])
	}

	forOne, err := svc.List(ctx, "1")
	require.NoError(t, err)
	require.Len(t, forOne, 1)
	assert.Equal(t, int64(1), forOne[0]["user_id"])
}

func TestBroadcast_NoUsers(t *testing.T) {
	store := memstore.New()
	pub := &mockPublisher{}
	svc := newTestService(t, store, store, pub)

	res, err := svc.Broadcast(context.Background(), domain.BroadcastTemplate{Title: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.NotificationIDs)
	pub.AssertNotCalled(t, "PublishBroadcast", mock.Anything, mock.Anything, mock.Anything)
}

func TestBroadcast_FailureLeavesNothingVisible(t *testing.T) {
	store := memstore.New()
	seedUsers(t, store, "1", "2")
	pub := &mockPublisher{}
	svc := newTestService(t, store, failingBatch{store}, pub)
	ctx := context.Background()

	_, err := svc.Broadcast(ctx, domain.BroadcastTemplate{Title: "Hi"})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
	pub.AssertNotCalled(t, "PublishBroadcast", mock.Anything, mock.Anything, mock.Anything)
}

func TestBroadcast_PublishesAfterCommit(t *testing.T) {
	store := memstore.New()
	seedUsers(t, store, "1", "2")
	pub := &mockPublisher{}
	pub.On("PublishBroadcast", mock.Anything, domain.BroadcastTemplate{Title: "Hi", Message: "m", Type: "promo"}, 2).Return(nil)
	svc := newTestService(t, store, store, pub)

	_, err := svc.Broadcast(context.Background(), domain.BroadcastTemplate{Title: "Hi", Message: "m", Type: "promo"})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestBroadcast_PublishFailureIsNotFatal(t *testing.T) {
	store := memstore.New()
	seedUsers(t, store, "1")
	pub := &mockPublisher{}
	pub.On("PublishBroadcast", mock.Anything, mock.Anything, 1).Return(errors.New("sns down"))
	svc := newTestService(t, store, store, pub)

	res, err := svc.Broadcast(context.Background(), domain.BroadcastTemplate{Title: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}

func TestMarkAsRead(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store, store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Fields{"user_id": 1, "title": "Hi"})
	require.NoError(t, err)
	id := created["id"].(string)

	require.NoError(t, svc.MarkAsRead(ctx, id))
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, true, got["is_read"])

	assert.ErrorIs(t, svc.MarkAsRead(ctx, "missing"), domain.ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store, store, nil)
	ctx := context.Background()
	_, _ = store.Insert(ctx, "notifications", "old", domain.Fields{"created_at": "2024-01-01T00:00:00.000000Z"})
	_, _ = store.Insert(ctx, "notifications", "new", domain.Fields{"created_at": "2024-04-01T00:00:00.000000Z"})

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0]["id"])
}

func TestUserRef(t *testing.T) {
	assert.Equal(t, int64(42), UserRef("42"))
	assert.Equal(t, "01HXYZ", UserRef("01HXYZ"))
}
