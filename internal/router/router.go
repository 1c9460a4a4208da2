package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/codequesthq/codequest-backend/internal/config"
	"github.com/codequesthq/codequest-backend/internal/handler"
	"github.com/codequesthq/codequest-backend/internal/middleware"
	"github.com/codequesthq/codequest-backend/internal/response"
	"github.com/codequesthq/codequest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Competition   *handler.CompetitionHandler
	StudentPortal *handler.StudentPortalHandler
	Grading       *handler.GradingHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/teacher/login", handlers.Auth.TeacherLogin)
	}

	// ─── 2. Student Group (Student JWT) ────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/me", handlers.Auth.GetStudentProfile)
		studentAPI.GET("/competitions", handlers.StudentPortal.ListCompetitions)
		studentAPI.GET("/competitions/:id", handlers.StudentPortal.GetCompetition)
		studentAPI.POST("/competitions/:id/join", handlers.StudentPortal.Join)
		studentAPI.POST("/competitions/:id/submit", handlers.StudentPortal.Submit)
		studentAPI.GET("/competitions/:id/result", handlers.StudentPortal.MyResult)
	}

	// ─── 3. Teacher Group (Teacher/Admin JWT) ──────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/me", handlers.Auth.GetTeacherProfile)

		teacherAPI.POST("/competitions", handlers.Competition.Create)
		teacherAPI.GET("/competitions", handlers.Competition.List)
		teacherAPI.GET("/competitions/:id", handlers.Competition.Get)
		teacherAPI.PATCH("/competitions/:id", handlers.Competition.Update)
		teacherAPI.DELETE("/competitions/:id", handlers.Competition.Delete)
		teacherAPI.POST("/competitions/:id/refresh-cache", handlers.Competition.RefreshCache)
		teacherAPI.GET("/competitions/:id/stats", handlers.Competition.Stats)
		teacherAPI.GET("/competitions/:id/leaderboard", handlers.Competition.Leaderboard)

		teacherAPI.POST("/competitions/:id/students/:studentId/grade", handlers.Grading.GradeManual)
		teacherAPI.POST("/competitions/:id/students/:studentId/grade/auto", handlers.Grading.GradeAuto)
		teacherAPI.GET("/competitions/:id/students/:studentId/result", handlers.Grading.GetResult)
		teacherAPI.POST("/competitions/:id/disqualify", handlers.Grading.Disqualify)
		teacherAPI.GET("/competitions/:id/disqualifications", handlers.Grading.ListDisqualifications)
	}

	// ─── 4. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/competitions/:id/stream", handlers.WS.CompetitionStream)
	}

	return router
}
