package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_EmptyCollection(t *testing.T) {
	env := List(nil)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"count":0,"data":[]}`, string(raw))
	assert.Equal(t, OutcomeOK, env.Outcome)
}

func TestList_CountMatchesData(t *testing.T) {
	env := List([]Fields{{"id": "a"}, {"id": "b"}})

	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	assert.Len(t, env.Data, 2)
}

func TestFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome Outcome
		errText string
		message string
	}{
		{
			name:    "not found",
			err:     fmt.Errorf("courses/9: %w", ErrNotFound),
			outcome: OutcomeNotFound,
			errText: "Course not found",
		},
		{
			name:    "store unavailable",
			err:     fmt.Errorf("%w: dial tcp: refused", ErrStoreUnavailable),
			outcome: OutcomeFailed,
			errText: "Failed to fetch course",
			message: "store unavailable: dial tcp: refused",
		},
		{
			name:    "bad request",
			err:     fmt.Errorf("%w: unexpected EOF", ErrBadRequest),
			outcome: OutcomeInvalid,
			errText: "Failed to fetch course",
			message: "bad request: unexpected EOF",
		},
		{
			name:    "unclassified",
			err:     errors.New("boom"),
			outcome: OutcomeFailed,
			errText: "Failed to fetch course",
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Failure(tt.err, "Course not found", "Failed to fetch course")

			assert.False(t, env.Success)
			assert.Equal(t, tt.outcome, env.Outcome)
			assert.Equal(t, tt.errText, env.Error)
			assert.Equal(t, tt.message, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestFailure_NotFoundOmitsMessage(t *testing.T) {
	raw, err := json.Marshal(Failure(ErrNotFound, "Lesson not found", "Failed to fetch lesson"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Lesson not found"}`, string(raw))
}

func TestDocument_MergedIDWins(t *testing.T) {
	doc := Document{ID: "abc", Fields: Fields{"id": "stale", "title": "Go"}}

	merged := doc.Merged()

	assert.Equal(t, "abc", merged["id"])
	assert.Equal(t, "Go", merged["title"])
	assert.Equal(t, "stale", doc.Fields["id"], "source fields must not be mutated")
}

func TestFields_Without(t *testing.T) {
	f := Fields{"name": "Ada", "password": "secret"}

	out := f.Without(FieldPassword)

	assert.NotContains(t, out, "password")
	assert.Contains(t, f, "password")
}

func TestQuery_WhereDoesNotAlias(t *testing.T) {
	base := Where("course_id", 1)
	a := base.Where("published", true)
	b := base.Where("published", false)

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, true, a.Filters[1].Value)
	assert.Equal(t, false, b.Filters[1].Value)
}
