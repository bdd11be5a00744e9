package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/auth"
	"github.com/BuzzLyutic/taskboard-api/internal/config"
	"github.com/BuzzLyutic/taskboard-api/internal/handler"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
	"github.com/BuzzLyutic/taskboard-api/internal/service"
	"github.com/BuzzLyutic/taskboard-api/internal/worker"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env нужен только для локальной разработки
	godotenv.Load()

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем БД
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("Failed to ping the Database.")
	}
	logger.Info("Successfully connected to the Database!")

	// Сборка слоев: repo -> service -> handler
	tokens := auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour)

	taskRepo := repo.NewTaskRepo(pool)
	userRepo := repo.NewUserRepo(pool)

	taskService := service.NewTaskService(taskRepo)
	authService := service.NewAuthService(userRepo, tokens)

	taskHandler := handler.NewTaskHandler(taskService, logger, cfg.IsDevelopment())
	authHandler := handler.NewAuthHandler(authService, logger, cfg.IsDevelopment())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, "route not found")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(tokens.Authenticate)
		r.Post("/", taskHandler.Create)
		r.Get("/", taskHandler.List)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	r.Route("/api/stats", func(r chi.Router) {
		r.Use(tokens.Authenticate)
		r.Use(auth.RequireAdmin)
		r.Get("/", taskHandler.Stats)
	})

	// Фоновые напоминания о дедлайнах
	ctx, cancelWorkers := context.WithCancel(context.Background())
	reminderPool := worker.NewPool(pool, logger, cfg.WorkerCount)
	reminderPool.Start(ctx)

	srv := http.Server{ // Создаем сервер
		Addr: ":" + cfg.Port,
		Handler: r,
		ReadTimeout: 10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func ()  { // Запуск сервера и обработка ошибок
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	cancelWorkers()
	reminderPool.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped succsessfully!")
}
