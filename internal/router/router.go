// Package router 组装中间件、服务和HTTP路由
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/weiwangfds/pdftoolkit/config"
	_ "github.com/weiwangfds/pdftoolkit/docs" // swagger docs
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/handler"
	"github.com/weiwangfds/pdftoolkit/internal/middleware"
	"github.com/weiwangfds/pdftoolkit/internal/response"
	"github.com/weiwangfds/pdftoolkit/internal/service/adsense"
	fileservice "github.com/weiwangfds/pdftoolkit/internal/service/file"
	storageservice "github.com/weiwangfds/pdftoolkit/internal/service/storage"
	"github.com/weiwangfds/pdftoolkit/internal/service/traffic"
	"github.com/weiwangfds/pdftoolkit/internal/service/user"
	"github.com/weiwangfds/pdftoolkit/internal/version"
	"gorm.io/gorm"
)

// Router 路由配置
type Router struct {
	engine *gin.Engine
	db     *gorm.DB
}

// NewRouter 创建路由实例
func NewRouter(db *gorm.DB, cfg *config.Config) (*Router, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()
	// multipart 超出部分写入临时文件
	engine.MaxMultipartMemory = 32 << 20

	// 初始化服务
	local, err := storageservice.NewLocalProvider(cfg.File.StoragePath)
	if err != nil {
		return nil, err
	}
	storageConfigService := storageservice.NewConfigService(db, local)
	fileService := fileservice.NewFileService(db, cfg.File, storageConfigService)
	userService := user.NewUserService(db, cfg.Auth)
	adsenseService := adsense.NewAdSenseService(db, userService)
	trafficService := traffic.NewTrafficService(db)

	// 初始化处理器
	fileHandler := handler.NewFileHandler(fileService)
	userHandler := handler.NewUserHandler(userService)
	adsenseHandler := handler.NewAdSenseHandler(adsenseService)
	trafficHandler := handler.NewTrafficHandler(trafficService)
	toolHandler := handler.NewToolHandler(fileService, cfg.Tools)
	storageHandler := handler.NewStorageHandler(storageConfigService)

	// 使用中间件
	loggerMiddleware := middleware.NewLoggerMiddleware()
	engine.Use(middleware.RequestID())
	engine.Use(loggerMiddleware.Logger())
	engine.Use(loggerMiddleware.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.Language())

	// 配置CORS
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", handler.FileIDHeader, middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.Auth([]byte(cfg.Auth.JWTSecret)))

	// Swagger文档路由
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireAdmin(userService)

	// API路由组
	api := engine.Group("/api/v1")
	{
		// 基础信息接口
		api.GET("/info", func(c *gin.Context) {
			response.Success(c, gin.H{
				"service": version.ServiceName,
				"version": version.Version,
				"commit":  version.Commit,
				"status":  "running",
			})
		})

		// 数据库状态检查
		api.GET("/db/status", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := database.Ping(ctx, db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "error",
					"error":  "Database ping failed",
				})
				return
			}
			migration, _ := database.MigrationVersion(ctx, db, cfg.Database.Driver)
			c.JSON(http.StatusOK, gin.H{
				"status":            "ok",
				"driver":            cfg.Database.Driver,
				"migration_version": migration,
			})
		})

		// 用户资料与角色
		users := api.Group("/users")
		{
			users.GET("/me/profile", requireAuth, userHandler.GetMyProfile)
			users.PUT("/me/profile", requireAuth, userHandler.SaveMyProfile)
			users.GET("/me/role", userHandler.GetMyRole)
			users.GET("/me/is-admin", userHandler.IsAdmin)
			users.GET("/:principal/profile", requireAuth, userHandler.GetProfile)
		}

		// 用户文件
		files := api.Group("/files", requireAuth)
		{
			files.POST("", fileHandler.UploadFile)
			files.GET("", fileHandler.ListFiles)
			files.GET("/stats", fileHandler.GetFileStats)
			files.GET("/:id", fileHandler.GetFile)
			files.GET("/:id/download", fileHandler.DownloadFile)
			files.DELETE("/:id", fileHandler.DeleteFile)
		}

		// 广告配置与收益
		ads := api.Group("/adsense")
		{
			ads.GET("/config", adsenseHandler.GetConfig)
			ads.PUT("/config", requireAdmin, adsenseHandler.UpdateConfig)
			ads.POST("/metrics", requireAdmin, adsenseHandler.RecordMetrics)
			ads.GET("/metrics", adsenseHandler.GetAllMetrics)
			ads.GET("/metrics/range", adsenseHandler.GetRange)
			ads.GET("/metrics/aggregate", adsenseHandler.Aggregate)
			ads.GET("/metrics/:date", adsenseHandler.GetMetrics)
		}

		// 访问量
		api.GET("/traffic", trafficHandler.GetTraffic)
		api.POST("/traffic/increment", trafficHandler.Increment)

		// PDF工具
		tools := api.Group("/tools")
		{
			tools.POST("/merge", toolHandler.MergePDF)
			tools.POST("/split", toolHandler.SplitPDF)
			tools.POST("/compress", toolHandler.CompressPDF)
			tools.POST("/rotate", toolHandler.RotatePDF)
			tools.POST("/protect", toolHandler.ProtectPDF)
			tools.POST("/image-to-pdf", toolHandler.ImageToPDF)
			tools.POST("/excel/sheets", toolHandler.ExcelSheets)
			tools.POST("/excel-to-pdf", toolHandler.ExcelToPDF)
			tools.POST("/word-to-pdf", toolHandler.WordToPDF)
			tools.POST("/powerpoint-to-pdf", toolHandler.PowerPointToPDF)
		}

		// 管理接口
		admin := api.Group("/admin", requireAdmin)
		{
			admin.PUT("/users/:principal/role", userHandler.AssignRole)

			storage := admin.Group("/storage/configs")
			{
				storage.POST("", storageHandler.CreateConfig)
				storage.GET("", storageHandler.ListConfigs)
				storage.GET("/active", storageHandler.GetActiveConfig)
				storage.GET("/:id", storageHandler.GetConfig)
				storage.PUT("/:id", storageHandler.UpdateConfig)
				storage.DELETE("/:id", storageHandler.DeleteConfig)
				storage.POST("/:id/activate", storageHandler.ActivateConfig)
				storage.POST("/:id/test", storageHandler.TestConfig)
				storage.POST("/:id/toggle", storageHandler.ToggleConfig)
			}
		}
	}

	return &Router{
		engine: engine,
		db:     db,
	}, nil
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
