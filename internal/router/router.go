package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"classroom-backend/internal/handlers"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/websocket"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Courses    *handlers.CourseHandler
	Quizzes    *handlers.QuizHandler
	Attempts   *handlers.AttemptHandler
	Coursework *handlers.CourseworkHandler
	Lab        *handlers.LabHandler
	Generate   *handlers.GenerateHandler
	Jobs       *handlers.JobHandler
	Uploads    *handlers.UploadHandler
	Glue       *handlers.GlueHandler
}

// New builds the HTTP surface. ctx bounds the background sweeper of the
// in-process auth limiter.
func New(
	ctx context.Context,
	jwtAuth *middleware.JWTAuth,
	redisClient *redis.Client,
	h Handlers,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(ctx, 10, time.Minute)
	// Generation and simulated endpoints (20 req/min per user, counted in Redis)
	generateLimiter := middleware.NewRedisRateLimiter(redisClient, "generate", 20, time.Minute)

	teacher := middleware.RequireRole(models.RoleTeacher)
	student := middleware.RequireRole(models.RoleStudent)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", h.Auth.Logout)
			})
		})

		// Uploaded files have random names and are linked from submissions.
		r.Get("/files/*", h.Uploads.Serve)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Get("/me", h.Auth.Me)

			// ──── Courses ────
			r.Route("/courses", func(r chi.Router) {
				r.With(teacher).Post("/", h.Courses.Create)
				r.Get("/", h.Courses.List)
				r.Get("/{id}", h.Courses.Get)
				r.With(student).Post("/{id}/enroll", h.Courses.Enroll)
			})
			r.Get("/enrollments", h.Courses.Enrolled)

			// ──── Quizzes ────
			r.Route("/quizzes", func(r chi.Router) {
				r.With(student).Get("/catalog", h.Quizzes.Catalog)
				r.With(student).Post("/{id}/attempts", h.Attempts.Start)

				r.Group(func(r chi.Router) {
					r.Use(teacher)
					r.Post("/", h.Quizzes.Create)
					r.Get("/mine", h.Quizzes.ListMine)
					r.Put("/{id}/publish", h.Quizzes.Publish)
					r.Get("/{id}/attempts", h.Quizzes.Attempts)
				})
			})

			r.Route("/attempts", func(r chi.Router) {
				r.Get("/{id}", h.Attempts.Get)
				r.Put("/{id}/answers", h.Attempts.SelectAnswer)
				r.Post("/{id}/submit", h.Attempts.Submit)
				r.Get("/{id}/review", h.Attempts.Review)
				r.Post("/{id}/reset", h.Attempts.Reset)
				r.Delete("/{id}", h.Attempts.Cancel)
			})

			// ──── Assignments ────
			r.Route("/assignments", func(r chi.Router) {
				r.With(teacher).Post("/", h.Coursework.Create)
				r.Get("/", h.Coursework.List)
				r.Get("/{id}", h.Coursework.Get)
				r.With(student).Post("/{id}/submissions", h.Coursework.Submit)
				r.With(teacher).Get("/{id}/submissions", h.Coursework.ListSubmissions)
			})

			r.Route("/submissions", func(r chi.Router) {
				r.Use(teacher)
				r.Put("/{id}/grade", h.Coursework.Grade)
				r.With(generateLimiter.Middleware).Post("/{id}/ai-feedback", h.Coursework.SuggestFeedback)
			})

			// ──── Coding Lab ────
			r.Route("/lab", func(r chi.Router) {
				r.With(teacher).Post("/problems", h.Lab.CreateProblem)
				r.Get("/problems", h.Lab.ListProblems)
				r.With(student).Post("/problems/{id}/submissions", h.Lab.Submit)
				r.With(teacher).Get("/problems/{id}/submissions", h.Lab.ListSubmissions)
				r.With(teacher).Put("/submissions/{id}/grade", h.Lab.Grade)
			})

			// ──── Generation ────
			r.Route("/generate", func(r chi.Router) {
				r.Use(teacher)
				r.Use(generateLimiter.Middleware)
				r.Post("/quiz", h.Generate.Quiz)
				r.Post("/assignment", h.Generate.Assignment)
				r.Post("/coding-problem", h.Generate.Problem)
			})
			r.Get("/jobs/{id}", h.Jobs.Get)

			r.Post("/uploads", h.Uploads.Upload)

			// ──── Simulated endpoints ────
			r.Group(func(r chi.Router) {
				r.Use(generateLimiter.Middleware)
				r.Post("/check-plagiarism", h.Glue.CheckPlagiarism)
				r.Post("/generate-lesson-plan", h.Glue.GenerateLessonPlan)
			})

			r.Route("/lesson-plans", func(r chi.Router) {
				r.Use(teacher)
				r.Post("/", h.Glue.SaveLessonPlan)
				r.Get("/", h.Glue.ListLessonPlans)
			})
		})
	})

	return r
}
