package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lifehex/lifehex/config"
	"github.com/lifehex/lifehex/controllers"
	"github.com/lifehex/lifehex/habit"
	"github.com/lifehex/lifehex/middleware"
	"github.com/lifehex/lifehex/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svc *habit.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	checkinController := controllers.NewCheckinController(svc)
	dashboardController := controllers.NewDashboardController(svc)
	categoryController := controllers.NewCategoryController(svc)

	api := r.Group("/api/v1")

	// Category set is public and identical for every user.
	api.GET("/categories", categoryController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	writes := protected.Group("")
	writes.Use(middleware.RateLimitMiddleware())
	writes.POST("/checkins", checkinController.Record)
	writes.DELETE("/checkins/:categoryID/:day", checkinController.Remove)
	writes.POST("/streaks/:categoryID/recompute", checkinController.RecomputeStreak)

	protected.GET("/streaks/:categoryID", checkinController.GetStreak)
	protected.GET("/dashboard", dashboardController.Get)
	protected.GET("/analytics/rollups", dashboardController.Rollups)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
