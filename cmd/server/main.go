package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"saasadmin/internal/cache"
	"saasadmin/internal/config"
	"saasadmin/internal/jobs"
	"saasadmin/internal/repository"
	"saasadmin/internal/service"
	"saasadmin/internal/transport/rest"
	"saasadmin/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()
	cfg := config.Load()

	// MongoDB connection; decimals are stored as Decimal128
	mongoClient, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetRegistry(repository.NewRegistry()))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)
	repository.EnsureIndexes(ctx, db)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	formRepo := repository.NewFormRepo(db)
	submissionRepo := repository.NewSubmissionRepo(db)
	counters := repository.NewCounterRepo(db)

	// Initialize caches
	formCache := cache.NewFormCache(rdb, cfg.FormCacheTTL)
	scoreBoard := cache.NewScoreBoard(rdb)
	submitLock := cache.NewSubmitLock(rdb, cfg.SubmitLockTTL)

	// Initialize services
	authSvc, err := service.NewAuthService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize auth:", err)
	}
	formSvc := service.NewFormService(formRepo, counters, formCache)
	submissionSvc := service.NewSubmissionService(formSvc, submissionRepo, counters, submitLock, scoreBoard)
	recalcSvc := service.NewRecalculationService(formRepo, submissionRepo, scoreBoard, cfg.Engine)

	// Background jobs share the Redis instance
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer asynqClient.Close()
	formSvc.SetRecalcScheduler(jobs.NewEnqueuer(asynqClient))

	worker, workerMux := jobs.NewWorker(cfg.RedisAddr, cfg.WorkerConcurrency, jobs.NewHandler(recalcSvc))
	if err := worker.Start(workerMux); err != nil {
		log.Fatal("Failed to start job worker:", err)
	}
	log.Printf("Job worker started (concurrency %d)", cfg.WorkerConcurrency)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	formSvc.SetBroadcaster(wsHub)
	submissionSvc.SetBroadcaster(wsHub)
	recalcSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:          authSvc,
		FormService:          formSvc,
		SubmissionService:    submissionSvc,
		RecalculationService: recalcSvc,
		WSHub:                wsHub,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Printf("Admin auth: username=%s organization=%d", cfg.AdminUsername, cfg.AdminOrganizationID)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/forms")
		log.Println("  POST /v1/forms/{formId}/publish")
		log.Println("  POST /v1/forms/{formId}/rules")
		log.Println("  GET  /v1/forms/{formId}/leaderboard")
		log.Println("  GET  /v1/public/forms/{publicKey}")
		log.Println("  POST /v1/public/forms/{publicKey}/submissions")
		log.Println("  WS   /v1/ws/forms/{formId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	worker.Shutdown()

	log.Println("Server exited")
}
