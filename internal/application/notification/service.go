package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/learninghub-api/internal/application/resource"
	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/logger"
)

// Service is the notifications resource plus its two extra operations.
type Service interface {
	resource.Service
	MarkAsRead(ctx context.Context, id string) error
	// Broadcast creates one notification per user in a single all-or-nothing batch.
	Broadcast(ctx context.Context, tmpl domain.BroadcastTemplate) (*domain.BroadcastResult, error)
}

type batchStore interface {
	Find(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error)
	BatchInsert(ctx context.Context, collection string, records []domain.Fields) ([]string, error)
}

// Publisher announces a committed broadcast to an external channel.
type Publisher interface {
	PublishBroadcast(ctx context.Context, tmpl domain.BroadcastTemplate, recipients int) error
}

type service struct {
	resource.Service
	store     batchStore
	users     string
	publisher Publisher
	log       *logger.Logger
	now       func() time.Time
}

type ServiceDeps struct {
	Resource        resource.Service
	Store           batchStore
	UsersCollection string
	// Publisher is optional.
	Publisher Publisher
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		Service:   deps.Resource,
		store:     deps.Store,
		users:     deps.UsersCollection,
		publisher: deps.Publisher,
		log:       deps.Logger,
		now:       deps.Now,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) MarkAsRead(ctx context.Context, id string) error {
	_, err := s.Update(ctx, id, domain.Fields{domain.FieldIsRead: true})
	return err
}

func (s *service) Broadcast(ctx context.Context, tmpl domain.BroadcastTemplate) (*domain.BroadcastResult, error) {
	if tmpl.Type == "" {
		tmpl.Type = domain.DefaultNotificationType
	}

	users, err := s.store.Find(ctx, s.users, domain.All())
	if err != nil {
		return nil, fmt.Errorf("broadcast: list users: %w", err)
	}

	ts := s.now().UTC().Format(domain.TimestampLayout)
	records := make([]domain.Fields, 0, len(users))
	for _, u := range users {
		records = append(records, domain.Fields{
			domain.FieldUserID:    UserRef(u.ID),
			domain.FieldTitle:     tmpl.Title,
			domain.FieldMessage:   tmpl.Message,
			domain.FieldType:      tmpl.Type,
			domain.FieldIsRead:    false,
			domain.FieldCreatedAt: ts,
			domain.FieldUpdatedAt: ts,
		})
	}

	ids := []string{}
	if len(records) > 0 {
		ids, err = s.store.BatchInsert(ctx, s.Policy().Collection, records)
		if err != nil {
			return nil, fmt.Errorf("broadcast: %w", err)
		}
	}

	if s.publisher != nil && len(ids) > 0 {
		if err := s.publisher.PublishBroadcast(ctx, tmpl, len(ids)); err != nil {
			s.log.Error(s.log.WithField(ctx, "recipients", len(ids)), "broadcast announcement failed", err)
		}
	}
	return &domain.BroadcastResult{Count: len(ids), NotificationIDs: ids}, nil
}

// UserRef is the user_id stored on a notification for a user document id:
// the integer value when the id is numeric, the id itself otherwise.
func UserRef(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
