package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"classroom-backend/internal/blobstore"
	"classroom-backend/internal/config"
	"classroom-backend/internal/database"
	"classroom-backend/internal/docstore"
	"classroom-backend/internal/generation"
	"classroom-backend/internal/handlers"
	"classroom-backend/internal/logger"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/repository"
	"classroom-backend/internal/router"
	"classroom-backend/internal/services"
	"classroom-backend/internal/websocket"
	"classroom-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger.Setup(cfg.Env, cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Msg("🚀 Starting Classroom Backend...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Document Store ────
	var store docstore.Store
	switch cfg.StoreDriver {
	case "memory":
		store = docstore.NewMemoryStore()
		log.Warn().Msg("✓ Using in-memory store; data is lost on restart")
	default:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("✗ PostgreSQL connection failed")
		}
		defer pool.Close()
		log.Info().Msg("✓ PostgreSQL connected")

		if err := database.RunMigrations(ctx, pool, "migrations"); err != nil {
			log.Fatal().Err(err).Msg("✗ Database migration failed")
		}
		log.Info().Msg("✓ Database migrations applied")
		store = docstore.NewPostgresStore(pool)
	}

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Redis connection failed")
	}
	defer redisClients.Close()
	log.Info().Msg("✓ Redis connected")

	// ──── Step 4: Initialize Gemini Client ────
	gemini, err := generation.NewGeminiGenerator(ctx, generation.GeminiConfig{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		RequestsPerMinute: cfg.GeminiRequestsPerMin,
		ConcurrentReqs:    cfg.GeminiConcurrentReqs,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Gemini client initialization failed")
	}
	defer gemini.Close()
	format, err := generation.NewQuizFormat(cfg.GenerationFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Unknown generation format")
	}
	generator := generation.NewService(gemini, format)
	log.Info().Str("model", cfg.GeminiModel).Str("format", cfg.GenerationFormat).Msg("✓ Gemini client initialized")

	blobs, err := blobstore.NewLocalStore(cfg.StoragePath, cfg.PublicBaseURL+"/api/v1/files")
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Upload storage unavailable")
	}

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(store)
	courseRepo := repository.NewCourseRepo(store)
	enrollmentRepo := repository.NewEnrollmentRepo(store)
	quizRepo := repository.NewQuizRepo(store)
	attemptRepo := repository.NewAttemptRepo(store)
	assignmentRepo := repository.NewAssignmentRepo(store)
	submissionRepo := repository.NewSubmissionRepo(store)
	labRepo := repository.NewLabRepo(store)
	lessonPlanRepo := repository.NewLessonPlanRepo(store)
	jobRepo := repository.NewJobRepo(store)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	notifier := services.NewRedisNotifier(redisClients.Queue)

	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)
	courseService := services.NewCourseService(courseRepo, enrollmentRepo)
	quizService := services.NewQuizService(quizRepo, attemptRepo, courseService)
	catalogService := services.NewCatalogService(enrollmentRepo, quizRepo, attemptRepo)
	attemptService := services.NewAttemptService(ctx, quizRepo, enrollmentRepo, attemptRepo, notifier, cfg.AllowLateStart)
	courseworkService := services.NewCourseworkService(
		assignmentRepo,
		submissionRepo,
		enrollmentRepo,
		courseService,
		generator,
		blobs,
		services.NewFileExtractService(services.DefaultMaxExtractChars),
	)
	labService := services.NewLabService(labRepo, enrollmentRepo, courseService)
	glueService := services.NewGlueService(cfg.GlueDelay, courseworkService, lessonPlanRepo)
	jobService := services.NewJobService(jobRepo, services.NewRedisQueue(redisClients.Queue), courseService)

	// ──── Step 5: Start Job Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		generator,
		jobRepo,
		worker.Drafts{
			Quizzes:    quizService,
			Coursework: courseworkService,
			Lab:        labService,
			Courses:    courseService,
		},
		notifier,
		cfg.WorkerCount,
	)
	workerPool.Start(ctx)
	log.Info().Int("workers", cfg.WorkerCount).Msg("✓ Worker pool started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(ctx, redisClients.PubSub, jwtAuth, cfg.FrontendURL)
	log.Info().Msg("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(ctx, jwtAuth, redisClients.Queue, router.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Courses:    handlers.NewCourseHandler(courseService),
		Quizzes:    handlers.NewQuizHandler(quizService, catalogService),
		Attempts:   handlers.NewAttemptHandler(attemptService),
		Coursework: handlers.NewCourseworkHandler(courseworkService),
		Lab:        handlers.NewLabHandler(labService),
		Generate:   handlers.NewGenerateHandler(jobService),
		Jobs:       handlers.NewJobHandler(jobService),
		Uploads:    handlers.NewUploadHandler(blobs),
		Glue:       handlers.NewGlueHandler(glueService),
	}, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Msgf("✓ Classroom Backend ready on http://localhost:%s", cfg.Port)
	log.Info().Msgf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Info().Msgf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := serve(ctx, server, server.ListenAndServe, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Server error")
	}

	stop()

	// In-flight requests have finished; only now stop the sessions they used.
	attemptService.Shutdown()
	workerPool.Wait()
	log.Info().Msg("Stopped")
}

// serve runs listen until ctx is done, then shuts the server down. It returns
// only once Shutdown has drained in-flight requests or the grace period ran
// out.
func serve(ctx context.Context, server *http.Server, listen func() error, grace time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), grace)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown failed")
		}
	}()

	err := listen()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	cancel()
	<-drained
	return err
}
