package resource

import (
	"github.com/learninghub-api/internal/config"
	"github.com/learninghub-api/internal/domain"
)

// Verb pairs the base and past forms used in response messages.
type Verb struct {
	Base string
	Past string
}

var (
	verbCreate = Verb{Base: "create", Past: "created"}
	verbSubmit = Verb{Base: "submit", Past: "submitted"}
	verbUpdate = Verb{Base: "update", Past: "updated"}
)

// Policy is the per-resource row of the access table: which collection the
// resource lives in and which behaviours apply on top of plain CRUD.
type Policy struct {
	// Singular and Plural name the resource in messages ("course", "courses").
	Singular string
	Plural   string
	// CreateVerb overrides "create" in creation messages.
	CreateVerb Verb

	Collection string
	// Redact lists fields never returned to callers.
	Redact []string
	// SyncStatus stamps sync_status = 1 on creation.
	SyncStatus bool
	// ForeignKey is the numeric field matched by reference listings.
	ForeignKey string
	// SearchFields are matched case-insensitively by Search.
	SearchFields []string
	// Defaults fill fields absent from a creation payload.
	Defaults domain.Fields
	// Order sorts every listing.
	Order *domain.Order
}

// Policies is the full access table.
type Policies struct {
	Courses       Policy
	Lessons       Policy
	Quizzes       Policy
	QuizQuestions Policy
	Users         Policy
	QuizResults   Policy
	UserProgress  Policy
	Notifications Policy
}

// NewPolicies builds the access table over the configured collection names.
func NewPolicies(c config.Collections) Policies {
	return Policies{
		Courses: Policy{
			Singular:     "course",
			Plural:       "courses",
			Collection:   c.Courses,
			SearchFields: []string{"title", "description"},
		},
		Lessons: Policy{
			Singular:   "lesson",
			Plural:     "lessons",
			Collection: c.Lessons,
			ForeignKey: "course_id",
		},
		Quizzes: Policy{
			Singular:   "quiz",
			Plural:     "quizzes",
			Collection: c.Quizzes,
		},
		QuizQuestions: Policy{
			Singular:   "quiz question",
			Plural:     "quiz questions",
			Collection: c.QuizQuestions,
			ForeignKey: "quiz_id",
		},
		Users: Policy{
			Singular:   "user",
			Plural:     "users",
			Collection: c.Users,
			Redact:     []string{domain.FieldPassword},
		},
		QuizResults: Policy{
			Singular:   "quiz result",
			Plural:     "quiz results",
			CreateVerb: verbSubmit,
			Collection: c.QuizResults,
			SyncStatus: true,
			ForeignKey: domain.FieldUserID,
		},
		UserProgress: Policy{
			Singular:   "progress",
			Plural:     "progress",
			CreateVerb: verbUpdate,
			Collection: c.UserProgress,
			SyncStatus: true,
			ForeignKey: domain.FieldUserID,
		},
		Notifications: Policy{
			Singular:   "notification",
			Plural:     "notifications",
			Collection: c.Notifications,
			ForeignKey: domain.FieldUserID,
			Defaults: domain.Fields{
				domain.FieldType:   domain.DefaultNotificationType,
				domain.FieldIsRead: false,
			},
			Order: &domain.Order{Field: domain.FieldCreatedAt, Direction: domain.Desc},
		},
	}
}

// All returns every policy, in route order.
func (p Policies) All() []Policy {
	return []Policy{
		p.Courses, p.Lessons, p.Quizzes, p.QuizQuestions,
		p.Users, p.QuizResults, p.UserProgress, p.Notifications,
	}
}

// Indexes lists the secondary indexes the policies query by.
func (p Policies) Indexes() []domain.IndexSpec {
	var specs []domain.IndexSpec
	for _, pol := range p.All() {
		if pol.ForeignKey != "" {
			specs = append(specs, domain.IndexSpec{Collection: pol.Collection, Field: pol.ForeignKey})
		}
		if pol.Order != nil {
			specs = append(specs, domain.IndexSpec{
				Collection: pol.Collection,
				Field:      pol.Order.Field,
				Desc:       pol.Order.Direction == domain.Desc,
			})
		}
	}
	return specs
}
