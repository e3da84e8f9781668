package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/gerfey/planit/internal/auth"
	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/pkg/logger"
)

const DefaultTokenDuration = 24 * time.Hour

type Options struct {
	TokenTTL time.Duration
	// ConcealOwnership - отвечать 404 на чужую задачу вместо 403
	ConcealOwnership bool
	Limiter          *limiter.Limiter
	Metrics          *Metrics
	// TrustedProxies - адреса и подсети прокси; без них ClientIP берется из адреса соединения
	TrustedProxies  []string
	TrustedPlatform string
}

type Handler struct {
	tokenManager     auth.TokenManager
	userService      UserService
	taskService      TaskService
	logger           logger.Logger
	tokenTTL         time.Duration
	concealOwnership bool
	limiter          *limiter.Limiter
	metrics          *Metrics
	trustedProxies   []string
	trustedPlatform  string
}

func NewHandler(
	tokenManager auth.TokenManager,
	userService UserService,
	taskService TaskService,
	logger logger.Logger,
	opts Options,
) *Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenDuration
	}

	return &Handler{
		tokenManager:     tokenManager,
		userService:      userService,
		taskService:      taskService,
		logger:           logger,
		tokenTTL:         opts.TokenTTL,
		concealOwnership: opts.ConcealOwnership,
		limiter:          opts.Limiter,
		metrics:          opts.Metrics,
		trustedProxies:   opts.TrustedProxies,
		trustedPlatform:  opts.TrustedPlatform,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	if err := RegisterValidators(); err != nil {
		h.logger.Errorf("Ошибка регистрации валидаторов: %v", err)
	}

	router := gin.New()

	// лимитер считает запросы по ClientIP, заголовкам клиента верить нельзя
	if err := router.SetTrustedProxies(h.trustedProxies); err != nil {
		h.logger.Errorf("Ошибка настройки доверенных прокси: %v", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.TrustedPlatform = h.trustedPlatform

	router.Use(h.requestLogger())
	if h.metrics != nil {
		router.Use(h.metrics.middleware())
	}
	router.Use(gin.CustomRecovery(h.recoveryHandler))
	router.Use(h.errorMiddleware())

	router.NoRoute(h.noRoute)

	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.rateLimitMiddleware(), h.register)
		authGroup.POST("/login", h.rateLimitMiddleware(), h.login)
		authGroup.GET("/verify", h.verify)
	}

	tasks := router.Group("/tasks", h.authMiddleware())
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.PUT("/:id", h.taskOwnershipMiddleware(), h.updateTask)
		tasks.DELETE("/:id", h.taskOwnershipMiddleware(), h.deleteTask)
	}

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
