package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/grovelab/grove-engine/internal/adapters/cache"
	adapterHTTP "github.com/grovelab/grove-engine/internal/adapters/handler/http"
	"github.com/grovelab/grove-engine/internal/adapters/repository"
	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/grovelab/grove-engine/internal/core/services"
	"github.com/grovelab/grove-engine/internal/core/workers"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	serverPort := envOr("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is not set")
	}
	jwtIssuer := envOr("JWT_ISSUER", "grove-engine")

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

	log.Println("Database connected successfully.")

	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	redisClient, err := cache.NewRedisClient(
		envOr("REDIS_HOST", "localhost"),
		envOr("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		redisDB,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	}

	userRepo := repository.NewPostgresUserRepository(db)
	habitRepo := repository.NewPostgresHabitRepository(db)
	missionRepo := repository.NewPostgresMissionRepository(db)

	var gardenRepo domain.GardenRepository = repository.NewPostgresGardenRepository(db)
	if redisClient != nil {
		gardenRepo = repository.NewCachedGardenRepository(gardenRepo, redisClient)
	}

	atomic := repository.NewSqlxAtomic(db)
	clock := domain.SystemClock()

	tokenService := services.NewTokenService(jwtSecret, jwtIssuer, 72*time.Hour, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	missionService := services.NewMissionService(missionRepo, habitRepo, userRepo, atomic, clock)
	habitService := services.NewHabitService(habitRepo, missionRepo, missionService, atomic, clock)
	gardenService := services.NewGardenService(gardenRepo, userRepo, atomic, clock)
	statsService := services.NewStatsService(habitRepo, clock)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	rolloverWorker := workers.NewRolloverWorker(missionService, clock)
	rolloverWorker.Start(workerCtx)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(authService),
		HabitHandler:   adapterHTTP.NewHabitHandler(habitService),
		MissionHandler: adapterHTTP.NewMissionHandler(missionService),
		GardenHandler:  adapterHTTP.NewGardenHandler(gardenService),
		StatsHandler:   adapterHTTP.NewStatsHandler(statsService),
		TokenService:   tokenService,
		Tracker:        rolloverWorker,
		DB:             db,
		Redis:          redisClient,
		StartTime:      startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Grove Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
