// Package seed loads a fixture of sample documents into the resource collections.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/multierr"

	"github.com/learninghub-api/internal/application/resource"
	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/logger"
)

//go:embed fixture.json
var embedded []byte

// Resource keys, in load order.
const (
	KeyUsers         = "users"
	KeyCourses       = "courses"
	KeyLessons       = "lessons"
	KeyQuizzes       = "quizzes"
	KeyQuizQuestions = "quiz_questions"
	KeyNotifications = "notifications"
	KeyQuizResults   = "quiz_results"
	KeyUserProgress  = "user_progress"
)

var loadOrder = []string{
	KeyUsers, KeyCourses, KeyLessons, KeyQuizzes,
	KeyQuizQuestions, KeyNotifications, KeyQuizResults, KeyUserProgress,
}

// Fixture maps a resource key to the documents to load. Every document carries its id.
type Fixture map[string][]domain.Fields

// Source locates a fixture: a local path, or a bucket and key on S3.
type Source struct {
	Path   string
	Bucket string
	Key    string
}

func (s Source) IsS3() bool { return s.Bucket != "" }

// ParseSource accepts "", a filesystem path or "s3://bucket/key".
func ParseSource(raw string) (Source, error) {
	if !strings.HasPrefix(raw, "s3://") {
		return Source{Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Source{}, fmt.Errorf("parse seed source: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Source{}, fmt.Errorf("seed source %q: want s3://bucket/key", raw)
	}
	return Source{Bucket: u.Host, Key: key}, nil
}

// Embedded returns the fixture compiled into the binary.
func Embedded() (Fixture, error) {
	return Decode(bytes.NewReader(embedded))
}

// Decode reads a JSON fixture. Integers decode as int64 so that foreign keys
// keep their numeric type.
func Decode(r io.Reader) (Fixture, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string][]map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	fx := make(Fixture, len(raw))
	for key, docs := range raw {
		out := make([]domain.Fields, 0, len(docs))
		for _, d := range docs {
			out = append(out, domain.Fields(numbers(d).(map[string]any)))
		}
		fx[key] = out
	}
	return fx, nil
}

func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
		return t
	}
	return v
}

// Run writes every fixture document through its resource service under the
// document's own id. It keeps going after a failed document and returns the
// count written per key together with every failure.
func Run(ctx context.Context, services map[string]resource.Service, fx Fixture, logg *logger.Logger) (map[string]int, error) {
	for key := range fx {
		if _, ok := services[key]; !ok {
			return nil, fmt.Errorf("fixture key %q has no resource", key)
		}
	}

	written := make(map[string]int, len(fx))
	var errs error
	for _, key := range loadOrder {
		docs, ok := fx[key]
		if !ok {
			continue
		}
		svc := services[key]
		for i, doc := range docs {
			docID := documentID(doc)
			if docID == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s[%d]: missing id", key, i))
				continue
			}
			if _, err := svc.CreateWithID(ctx, docID, doc); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s/%s: %w", key, docID, err))
				continue
			}
			written[key]++
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"resource":  key,
			"documents": written[key],
		}), "seeded resource")
	}
	return written, errs
}

func documentID(doc domain.Fields) string {
	switch v := doc[domain.FieldID].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
