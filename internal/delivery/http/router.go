package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/auth"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/level"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/middleware"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/progress"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/statistics"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers/video"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type Options struct {
	AllowOrigins []string
	HealthChecks map[string]controllers.HealthCheck
}

func InitRoutes(l logger.Log, u service.Collection, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     opts.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Content-Language"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler(opts.HealthChecks)
	authMiddleware := middleware.NewAuthMiddlewareProvider(l, u.AuthService)
	authController := auth.NewAuthHandler(l, u.AuthService)
	levelQuery := level.NewQueryHandler(l, u.CatalogService)
	levelManagement := level.NewManagementHandler(l, u.CatalogService)
	videoController := video.NewVideoHandler(l, u.CatalogService)
	progressController := progress.NewProgressHandler(l, u.ProgressService)
	statisticsController := statistics.NewStatisticsHandler(l, u.StatisticsService, u.ReportService)

	r.GET("/status", statusController.Status)
	r.GET("/healthz", statusController.Healthz)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l), middleware.Language())
	{
		v1.GET("/status", statusController.Status)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authController.Register)
			authGroup.POST("/login", authController.Login)
		}

		v1.GET("/welcome-video", levelQuery.WelcomeVideo)
		v1.GET("/levels", authMiddleware.OptionalAuth, levelQuery.ListLevels)
		v1.GET("/levels/search", levelQuery.SearchLevels)
		v1.GET("/levels/:level_id", authMiddleware.OptionalAuth, levelQuery.Level)

		client := v1.Group("", authMiddleware.AuthMiddleware)
		{
			client.GET("/me", authController.Me)

			client.GET("/videos/:video_id/questions", videoController.VideoQuestions)
			client.POST("/questions/:question_id/submit", progressController.SubmitAnswer)

			client.GET("/users/:user_id", authController.User)
			client.PUT("/users/:user_id", authController.UpdateUser)
			client.PUT("/users/:user_id/picture", authController.UploadPicture)
			client.GET("/users/:user_id/questions/:question_id/answer", progressController.Answer)
			client.GET("/users/:user_id/levels", progressController.UserLevels)
			client.POST("/users/:user_id/levels/:level_id/purchase", progressController.Purchase)
			client.PATCH("/users/:user_id/levels/:level_id/videos/:video_id/complete", progressController.CompleteVideo)
			client.GET("/users/:user_id/levels/:level_id/progress", progressController.LevelProgress)

			client.POST("/exams/:level_id/initial", progressController.SubmitExam(string(models.ExamInitial)))
			client.POST("/exams/:level_id/final", progressController.SubmitExam(string(models.ExamFinal)))
			client.GET("/exams/:level_id/users/:user_id", progressController.ExamResults)

			client.GET("/report", statisticsController.Report)
		}

		admin := v1.Group("", authMiddleware.AuthMiddleware, middleware.RequireRoles(models.AdminRole))
		{
			admin.POST("/welcome-video", levelManagement.SetWelcomeVideo)

			admin.POST("/levels", levelManagement.CreateLevel)
			admin.PUT("/levels/:level_id", levelManagement.UpdateLevel)
			admin.DELETE("/levels/:level_id", levelManagement.DeleteLevel)
			admin.PUT("/levels/:level_id/image", levelManagement.UploadLevelImage)
			admin.POST("/levels/:level_id/videos", videoController.AddVideo)
			admin.PATCH("/levels/:level_id/videos/swap", videoController.SwapVideos)

			admin.PUT("/videos/:video_id", videoController.UpdateVideo)
			admin.DELETE("/videos/:video_id", videoController.DeleteVideo)
			admin.POST("/videos/:video_id/questions", videoController.AddQuestion)
			admin.PUT("/questions/:question_id", videoController.UpdateQuestion)
			admin.DELETE("/questions/:question_id", videoController.DeleteQuestion)

			adminOnly := admin.Group("/admin")
			{
				adminOnly.GET("/levels", levelQuery.ListLevels)
				adminOnly.GET("/videos", videoController.AllVideos)
				adminOnly.GET("/questions", videoController.AllQuestions)
				adminOnly.GET("/questions/:question_id/answers", progressController.QuestionAnswers)
				adminOnly.GET("/exams", progressController.AllExamResults)
				adminOnly.GET("/users", authController.ListUsers)
				adminOnly.DELETE("/users/:user_id", authController.DeleteUser)
				adminOnly.POST("/users/:user_id/reset-password", authController.ResetPassword)
				adminOnly.POST("/users/:user_id/levels/:level_id/assign", progressController.Assign)
				adminOnly.GET("/statistics", statisticsController.Platform)
				adminOnly.GET("/users/:user_id/statistics", statisticsController.User)
			}
		}
	}
	return r
}
