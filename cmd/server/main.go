package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/config"
	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/domain/product"
	"github.com/keymint/keymint-api/internal/handler"
	"github.com/keymint/keymint-api/internal/handler/middleware"
	"github.com/keymint/keymint-api/internal/service"
	"github.com/keymint/keymint-api/internal/storage/jsonfile"
	"github.com/keymint/keymint-api/internal/storage/postgres"
	"github.com/keymint/keymint-api/internal/storage/redis"
	"github.com/keymint/keymint-api/internal/util"
	"github.com/keymint/keymint-api/internal/worker"
	"github.com/keymint/keymint-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()

	sugarLogger.Info("Starting keymint...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		keyRepo     key.Repository
		productRepo product.Repository
	)

	switch cfg.Storage.Driver {
	case "postgres":
		dbPool, err := postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbPool.Close()

		keyRepo = postgres.NewKeyRepository(dbPool, appLogger)
		productRepo = postgres.NewProductRepository(dbPool, appLogger)

	case "file", "":
		var sealKey []byte
		if cfg.Storage.File.SealKey != "" {
			sealKey, err = util.SealKeyFromHex(cfg.Storage.File.SealKey)
			if err != nil {
				sugarLogger.Fatalf("Invalid storage seal key: %v", err)
			}
			sugarLogger.Info("Store files will be sealed at rest")
		}

		keyRepo = jsonfile.NewKeyRepository(cfg.Storage.File.KeysPath, sealKey, appLogger)
		productRepo = jsonfile.NewProductRepository(cfg.Storage.File.ProductsPath, sealKey, appLogger)

	default:
		sugarLogger.Fatalf("Unknown storage driver: %s", cfg.Storage.Driver)
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		sugarLogger.Warn("Redis address not configured; rate limiting and background workers are disabled")
	}

	productService := service.NewProductService(productRepo, appLogger)
	keyService := service.NewKeyService(keyRepo, productService, appLogger)
	claimService := service.NewClaimService(keyRepo, productService, appLogger)

	var authService *service.AuthService
	if cfg.Auth.JWTSecret != "" {
		authService, err = service.NewAuthService(&cfg.Auth, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to initialize auth service: %v", err)
		}
	} else {
		sugarLogger.Warn("auth.jwtSecret not configured; session token and dashboard routes are disabled")
	}

	healthHandler := handler.NewHealthHandler(keyRepo, redisClient, appLogger)
	claimHandler := handler.NewClaimHandler(claimService, appLogger)
	keyHandler := handler.NewKeyHandler(keyService, appLogger)
	productHandler := handler.NewProductHandler(productService, appLogger)

	adminKeyAuth := middleware.AdminKeyAuthMiddleware(cfg.Auth.AdminKeyHash, appLogger)
	errorMiddleware := middleware.ErrorHandlerMiddleware(appLogger)

	router := gin.New()
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		appLogger.Error(logMsg, zap.Stack("stack"))

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}))

	corsConfig := cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-API-KEY",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))
	router.Use(errorMiddleware)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Key redemption is the only public route.
	claimRoute := router.Group("")
	if redisClient != nil {
		claimRoute.Use(middleware.RateLimitMiddleware(redisClient, &cfg.RateLimit, appLogger))
	}
	claimRoute.POST("/claim_key", claimHandler.Claim)

	admin := router.Group("")
	admin.Use(adminKeyAuth)
	{
		admin.POST("/create_key", keyHandler.Create)
		admin.POST("/delete_key", keyHandler.Delete)
		admin.POST("/reset_hwid", keyHandler.ResetHWID)
		admin.POST("/create_product", productHandler.Create)
		admin.POST("/delete_product", productHandler.Delete)
	}

	if authService != nil {
		authHandler := handler.NewAuthHandler(authService, appLogger)
		dashboardHandler := handler.NewDashboardHandler(keyService, appLogger)
		authMiddleware := middleware.AuthMiddleware(authService, appLogger)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/auth/token", adminKeyAuth, authHandler.Token)

			dashboardRoutes := apiV1.Group("/dashboard")
			dashboardRoutes.Use(authMiddleware)
			{
				dashboardRoutes.GET("/summary", dashboardHandler.GetSummary)
			}
		}
	}

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	if cfg.Worker.Enabled && redisClient != nil {
		g.Go(func() error {
			if err := worker.RunWorkers(groupCtx, cfg, keyRepo, appLogger); err != nil {
				sugarLogger.Error("Asynq worker failed", zap.Error(err))
				return fmt.Errorf("asynq worker error: %w", err)
			}
			sugarLogger.Info("Asynq workers finished gracefully.")
			return nil
		})
	}

	sugarLogger.Info("Application started. Waiting for interrupt signal (Ctrl+C) or component error...")

	waitErr := g.Wait()

	sugarLogger.Info("Shutdown sequence finished.")

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) {
			sugarLogger.Info("Shutdown reason: Context canceled (likely due to OS signal).")
		} else if errors.Is(waitErr, http.ErrServerClosed) {
			sugarLogger.Info("Shutdown reason: HTTP server closed normally.")
		} else {
			sugarLogger.Errorf("Application shutdown finished with unexpected error: %v", waitErr)
		}
	} else {
		sugarLogger.Info("Application shutdown successfully (all components finished without errors).")
	}

	sugarLogger.Info("Application exiting now.")
}
