package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/learninghub-api/internal/config"
	"github.com/learninghub-api/internal/pkg/logger"
	"github.com/learninghub-api/internal/transport/http/handler"
	appmiddleware "github.com/learninghub-api/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(appmiddleware.Logging(logg))
	r.Use(appmiddleware.Recoverer(logg))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthH := handler.NewHealthHandler(deps.Now)
	r.Get("/", healthH.Index)
	r.Get("/health", healthH.Health)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFound(healthH.NotFound)
	r.MethodNotAllowed(healthH.MethodNotAllowed)

	s := deps.Services
	courses := handler.NewResourceHandler(s.Courses, "", logg)
	lessons := handler.NewResourceHandler(s.Lessons, "courseId", logg)
	quizzes := handler.NewResourceHandler(s.Quizzes, "", logg)
	questions := handler.NewResourceHandler(s.QuizQuestions, "quizId", logg)
	users := handler.NewResourceHandler(s.Users, "", logg)
	results := handler.NewResourceHandler(s.QuizResults, "", logg)
	progress := handler.NewResourceHandler(s.UserProgress, "", logg)
	notifs := handler.NewResourceHandler(s.Notifications, "", logg)
	notifX := handler.NewNotificationHandler(s.Notifications, logg)

	broadcastMw := func(next http.Handler) http.Handler { return next }
	if deps.BroadcastLimiter != nil {
		broadcastMw = deps.BroadcastLimiter.Limit
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/courses", func(r chi.Router) {
			r.Get("/search/{query}", courses.Search)
			crud(r, courses)
		})
		r.Route("/lessons", func(r chi.Router) { crud(r, lessons) })
		r.Route("/quizzes", func(r chi.Router) { crud(r, quizzes) })
		r.Route("/quiz-questions", func(r chi.Router) { crud(r, questions) })
		r.Route("/users", func(r chi.Router) { crud(r, users) })
		// Both prefixes serve the same routes: quiz results at the root,
		// user progress under /progress.
		progressRoutes := func(r chi.Router) {
			r.Get("/user/{userId}", results.ListByRef)
			r.Route("/progress", func(r chi.Router) {
				r.Get("/user/{userId}", progress.ListByRef)
				crud(r, progress)
			})
			crud(r, results)
		}
		r.Route("/quiz-results", progressRoutes)
		r.Route("/user-progress", progressRoutes)
		r.Route("/notifications", func(r chi.Router) {
			r.With(broadcastMw).Post("/broadcast", notifX.Broadcast)
			r.Get("/user/{userId}", notifs.ListByRef)
			r.Put("/{id}/read", notifX.MarkAsRead)
			crud(r, notifs)
		})
	})

	return r
}

func crud(r chi.Router, h *handler.ResourceHandler) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}
