// Package catalog assembles one access service per resource over a shared store.
package catalog

import (
	"time"

	"github.com/learninghub-api/internal/application/notification"
	"github.com/learninghub-api/internal/application/resource"
	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/logger"
)

// Catalog holds the access service of every resource.
type Catalog struct {
	Courses       resource.Service
	Lessons       resource.Service
	Quizzes       resource.Service
	QuizQuestions resource.Service
	Users         resource.Service
	QuizResults   resource.Service
	UserProgress  resource.Service
	Notifications notification.Service
}

type Options struct {
	// Publisher is optional.
	Publisher notification.Publisher
	Logger    *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// New builds every service over store. The store handle is shared, never global.
func New(store domain.DocumentStore, p resource.Policies, opts Options) *Catalog {
	var ropts []resource.Option
	if opts.Now != nil {
		ropts = append(ropts, resource.WithClock(opts.Now))
	}
	svc := func(pol resource.Policy) resource.Service {
		return resource.NewService(store, pol, ropts...)
	}

	return &Catalog{
		Courses:       svc(p.Courses),
		Lessons:       svc(p.Lessons),
		Quizzes:       svc(p.Quizzes),
		QuizQuestions: svc(p.QuizQuestions),
		Users:         svc(p.Users),
		QuizResults:   svc(p.QuizResults),
		UserProgress:  svc(p.UserProgress),
		Notifications: notification.NewService(notification.ServiceDeps{
			Resource:        svc(p.Notifications),
			Store:           store,
			UsersCollection: p.Users.Collection,
			Publisher:       opts.Publisher,
			Logger:          opts.Logger,
			Now:             opts.Now,
		}),
	}
}
