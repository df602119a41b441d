package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ritmoapp/ritmo-engine/internal/adapters/handler/http/middleware"
)

type RouterDependencies struct {
	FlowHandler     *FlowHandler
	ScheduleHandler *ScheduleHandler
	SessionHandler  *SessionHandler
	MasteryHandler  *MasteryHandler
	WorkingHandler  *WorkingHandler
	PomodoroHandler *PomodoroHandler
	ProgressHandler *ProgressHandler
	SnapshotHandler *SnapshotHandler
	DayHooks        middleware.DayBoundaryHooks
	DB              *sqlx.DB
	Redis           *redis.Client
	StartTime       time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if deps.Redis != nil {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, 100, 1*time.Minute))
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		if deps.DB == nil {
			dbStatus = "in-memory"
		} else if err := deps.DB.Ping(); err != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "connected"
		if deps.Redis == nil {
			redisStatus = "disabled"
		} else if deps.Redis.Ping(c.Request.Context()).Err() != nil {
			redisStatus = "unreachable"
		}

		statusCode := 200
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")

	if deps.DayHooks != nil {
		apiV1.Use(middleware.DailyResetMiddleware(deps.DayHooks))
	}

	deps.FlowHandler.RegisterRoutes(apiV1)
	deps.ScheduleHandler.RegisterRoutes(apiV1)
	deps.SessionHandler.RegisterRoutes(apiV1)
	deps.MasteryHandler.RegisterRoutes(apiV1)
	deps.WorkingHandler.RegisterRoutes(apiV1)
	deps.PomodoroHandler.RegisterRoutes(apiV1)
	deps.ProgressHandler.RegisterRoutes(apiV1)
	deps.SnapshotHandler.RegisterRoutes(apiV1)

	return router
}
