package handler

import (
	"net/http"
	"time"
)

const (
	apiVersion = "1.0.0"
	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

type healthBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type indexBody struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type notFoundBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HealthHandler serves the liveness, index and fallback routes.
type HealthHandler struct {
	now func() time.Time
}

func NewHealthHandler(now func() time.Time) *HealthHandler {
	if now == nil {
		now = time.Now
	}
	return &HealthHandler{now: now}
}

func (h *HealthHandler) stamp() string {
	return h.now().UTC().Format(timeLayout)
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{
		Status:    "OK",
		Message:   "Learning Hub API is running",
		Timestamp: h.stamp(),
		Version:   apiVersion,
	})
}

func (h *HealthHandler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, indexBody{
		Message: "Welcome to Learning Hub API",
		Version: apiVersion,
		Endpoints: map[string]string{
			"health":        "/health",
			"courses":       "/api/courses",
			"lessons":       "/api/lessons",
			"quizzes":       "/api/quizzes",
			"quizQuestions": "/api/quiz-questions",
			"users":         "/api/users",
			"progress":      "/api/user-progress",
			"quizResults":   "/api/quiz-results",
			"notifications": "/api/notifications",
		},
	})
}

func (h *HealthHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundBody{
		Error:     "Not Found",
		Message:   "Route " + r.URL.RequestURI() + " not found",
		Timestamp: h.stamp(),
	})
}

func (h *HealthHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, notFoundBody{
		Error:     "Method Not Allowed",
		Message:   "Method " + r.Method + " not allowed on " + r.URL.Path,
		Timestamp: h.stamp(),
	})
}
