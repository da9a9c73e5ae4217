package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/controllers"
	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/metrics"
	"github.com/kendall-kelly/laundrybear-api/middleware"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/kendall-kelly/laundrybear-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := logger.Init(cfg.GoEnv, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Get().Sync()
	logger.Get().Info("starting LaundryBear management API", "env", cfg.GoEnv)

	if err := utils.RegisterValidators(); err != nil {
		logger.Get().Fatal("failed to register validators", "error", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		logger.Get().Fatal("failed to connect to database", "error", err)
	}

	// Auto-migrate database models
	if err := models.AutoMigrate(config.GetDB()); err != nil {
		logger.Get().Fatal("failed to migrate database", "error", err)
	}
	logger.Get().Info("database migration completed")

	ctx := context.Background()

	if cfg.AdminUsername != "" {
		auth := services.NewAuthService(config.GetDB(), cfg, nil)
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			logger.Get().Fatal("failed to seed admin account", "error", err, "username", cfg.AdminUsername)
		}
	}

	if _, err := services.InitTokenStore(ctx, cfg.RedisURL); err != nil {
		logger.Get().Fatal("failed to initialize token store", "error", err)
	}

	publisher := services.InitEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Get().Error("failed to close event publisher", "error", err)
		}
	}()

	if cfg.UsesS3() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			logger.Get().Fatal("failed to initialize S3", "error", err)
		}
		services.InitImageService(s3Service)
		logger.Get().Info("shop logos stored in S3", "bucket", cfg.AWSS3Bucket)
	} else {
		utils.UploadDir = cfg.UploadDir
		services.InitLocalImageService(cfg.UploadDir)
		logger.Get().Info("shop logos stored on local disk", "dir", cfg.UploadDir)
	}

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	logger.Get().Info("server listening", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Get().Fatal("failed to start server", "error", err)
	}
}

// setupRouter builds the engine with every route and the global middleware
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(metrics.Default()),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	router.GET("/metrics", gin.WrapH(metrics.Default().Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		controllers.RegisterManagementRoutes(v1.Group("/management"),
			middleware.EnsureValidToken(cfg, services.GetTokenStore()),
			middleware.RequireScope(services.ManagementScope),
			middleware.RequireRole(models.RoleAdmin),
		)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "LaundryBear management API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		logger.Get().Error("database ping failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
