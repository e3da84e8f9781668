package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gerfey/planit/internal/auth"
	"github.com/gerfey/planit/internal/server"
	"github.com/gerfey/planit/pkg/api"
	"github.com/gerfey/planit/pkg/config"
	"github.com/gerfey/planit/pkg/logger"
)

const (
	version = "v1.0.0"

	shutdownTimeoutSec = 5
	redisPingTimeout   = 3 * time.Second
)

func main() {
	log := logger.DefaultLogger()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	log = logger.NewLogger(os.Stdout, logger.ParseLevel(cfg.Log.Level), "PlanIt")
	log.Infof("Запуск сервера PlanIt версии %s (окружение: %s)", version, cfg.Env)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, err := server.NewPostgresRepository(
		cfg.Database.Driver,
		cfg.Database.GetDSN(cfg.IsProduction()),
		server.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		},
		log,
	)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer repo.Close()

	if initErr := repo.InitSchema(); initErr != nil {
		log.Errorf("Ошибка инициализации схемы базы данных: %v", initErr)

		return
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		pingErr := redisClient.Ping(ctx).Err()
		cancel()
		if pingErr != nil {
			log.Errorf("Ошибка подключения к Redis %s: %v", cfg.Redis.Addr, pingErr)

			return
		}
		log.Infof("Счетчики лимита запросов хранятся в Redis %s", cfg.Redis.Addr)
	}

	rateLimiter, err := api.NewRateLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		log.Errorf("Ошибка создания лимитера запросов: %v", err)

		return
	}

	var metrics *api.Metrics
	if cfg.Metrics.Enabled {
		metrics = api.NewMetrics()
		metrics.RegisterDB(repo.DB())
	}

	tokenManager := auth.NewJWTManager(cfg.Auth.JWTSecret)

	userService := server.NewUserService(repo, log)
	taskService := server.NewTaskService(repo, log)

	handler := api.NewHandler(tokenManager, userService, taskService, log, api.Options{
		TokenTTL:         cfg.Auth.TokenTTL,
		ConcealOwnership: cfg.Auth.ConcealOwnership,
		Limiter:          rateLimiter,
		Metrics:          metrics,
		TrustedProxies:   cfg.Server.TrustedProxies,
		TrustedPlatform:  cfg.Server.TrustedPlatform,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.WithCORS(handler.InitRoutes(), cfg.CORS),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Сервер запущен на %s", srv.Addr)

		if serverErr := srv.ListenAndServe(); serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
			log.Fatalf("Ошибка запуска сервера: %v", serverErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infof("Завершение работы сервера...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeoutSec*time.Second)
	defer cancel()

	if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
		log.Errorf("Ошибка при завершении работы сервера: %v", shutdownErr)
	}

	log.Infof("Сервер остановлен")
}
