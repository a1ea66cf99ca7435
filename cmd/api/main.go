package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/habitquest/habitquest-engine/internal/adapters/ai"
	"github.com/habitquest/habitquest-engine/internal/adapters/cache"
	adapterHTTP "github.com/habitquest/habitquest-engine/internal/adapters/handler/http"
	"github.com/habitquest/habitquest-engine/internal/adapters/repository"
	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/services"
	"github.com/habitquest/habitquest-engine/internal/core/workers"
)

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment.")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	serverPort := os.Getenv("PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is not set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The user and follow repositories map unique-violation errors through
	// lib/pq, so they get their own connection on that driver.
	pqDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to open database: %v", err)
	}
	defer pqDB.Close()
	if err := pqDB.Ping(); err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}

	log.Println("Database connected successfully.")

	redisClient, err := cache.NewRedisClient(
		os.Getenv("REDIS_HOST"),
		os.Getenv("REDIS_PORT"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis connected successfully.")
	}

	userRepo := repository.NewPostgresUserRepository(pqDB)
	followRepo := repository.NewPostgresFollowRepository(pqDB)

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	var habitCache services.HabitCacheInvalidator
	if redisClient != nil {
		cached := repository.NewCachedHabitRepository(habitRepo, redisClient)
		habitRepo = cached
		habitCache = cached
	}
	challengeRepo := repository.NewPostgresChallengeRepository(db)
	completionRepo := repository.NewPostgresCompletionRepository(db)
	badgeRepo := repository.NewPostgresBadgeRepository(db)
	completionStore := repository.NewPostgresCompletionStore(db)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := badgeRepo.Seed(seedCtx, domain.SeedBadges); err != nil {
		log.Fatalf("Critical: Failed to seed badges: %v", err)
	}
	cancelSeed()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	badgeWorker := workers.NewBadgeWorker(badgeRepo, completionRepo, completionStore, nil)
	badgeWorker.Start(ctx)

	var generator services.TextGenerator
	if apiKey := os.Getenv("AI_API_KEY"); apiKey != "" {
		generator = ai.NewClient(os.Getenv("AI_BASE_URL"), apiKey, os.Getenv("AI_MODEL"))
		log.Println("AI generation enabled.")
	} else {
		log.Println("AI_API_KEY not set, recommendation routes will return 503.")
	}

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, "habitquest-engine", 24*time.Hour, userRepo)
	habitService := services.NewHabitService(habitRepo)
	challengeService := services.NewChallengeService(challengeRepo)
	completionService := services.NewCompletionService(completionStore, badgeWorker, habitCache, nil)
	profileService := services.NewProfileService(userRepo, habitRepo, completionRepo, badgeRepo, completionStore, nil)
	socialService := services.NewSocialService(followRepo, userRepo)
	recommendService := services.NewRecommendService(generator, habitRepo, challengeRepo)

	devMode, _ := strconv.ParseBool(os.Getenv("DEV_MODE"))
	if devMode {
		log.Println("Dev mode enabled: /api/v1/dev routes are mounted.")
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService, completionService, recommendService),
		ChallengeHandler: adapterHTTP.NewChallengeHandler(challengeService, completionService, recommendService),
		ProfileHandler:   adapterHTTP.NewProfileHandler(profileService),
		SocialHandler:    adapterHTTP.NewSocialHandler(socialService),
		DevHandler:       adapterHTTP.NewDevHandler(profileService),
		TokenService:     tokenService,
		DB:               db,
		Redis:            redisClient,
		StartTime:        startTime,
		DevMode:          devMode,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("HabitQuest Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
