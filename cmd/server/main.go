package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/ribotflowdeveloper-hub/ribotflow-sub005/configs"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/api/handlers"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/api/middleware"
	job "github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/jobs"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/queue"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/repository"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/service"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/pkg/httpclient"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewScheduledPostRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	outbound := httpclient.New()

	mediaService := service.NewMediaService(*cfg, outbound)
	linkedinService := service.NewLinkedinService(*cfg, credentialRepo, outbound, mediaService)
	facebookService := service.NewFacebookService(*cfg, credentialRepo, outbound, mediaService)
	instagramService := service.NewInstagramService(*cfg, credentialRepo, outbound, mediaService)
	notificationService := service.NewNotificationService(notificationRepo, cfg.NotifyTimeZone)
	postService := service.NewPostService(postRepo)

	registry := service.Registry{
		models.ProviderLinkedin:  linkedinService,
		models.ProviderFacebook:  facebookService,
		models.ProviderInstagram: instagramService,
	}

	queueW := queue.NewQueue(postRepo, credentialRepo, notificationService, registry)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	jobHandler := handlers.NewJobHandler(*cfg, queueW)
	app.Post("/jobs/publish-scheduled", jobHandler.PublishScheduled)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, client)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/retry", post.RetryPost)

	notification := handlers.NewNotificationHandler(notificationService)
	api.Get("/notifications", notification.ListNotifications)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(credentialRepo, linkedinService, facebookService, instagramService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h01m00s", func() {
		if _, _, err := queueW.PublishDuePosts(context.Background()); err != nil {
			log.Printf("Publish sweep failed: %v", err)
		}
	})
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
