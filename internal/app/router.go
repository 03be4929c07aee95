package app

import (
	"edu_assess_backend/docs"
	"edu_assess_backend/internal/config"
	"edu_assess_backend/internal/middleware"
	"edu_assess_backend/internal/model"
	"edu_assess_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
	}
}

// 学生/通用 授权接口
func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 课程
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)
	rg.POST("/courses/:id/enroll", c.course.Enroll)
	rg.GET("/enrollments", c.course.MyEnrollments)
	rg.GET("/courses/:id/topics", c.course.ListTopics)
	rg.GET("/courses/:id/assessments", c.assessment.ListCourseAssessments)
	rg.GET("/topics/:topicId/subtopics", c.course.ListSubtopics)

	// 测评作答
	rg.GET("/assessments/:id", c.assessment.GetAssessment)
	rg.GET("/assessments/:id/questions", c.assessment.StudentQuestions)
	rg.POST("/assessments/:id/attempts", c.attempt.StartAttempt)
	rg.GET("/attempts/:attemptId", c.attempt.GetAttempt)
	rg.POST("/attempts/:attemptId/submit", c.attempt.SubmitBatch)
	rg.POST("/attempts/:attemptId/answers", c.attempt.SubmitAnswer)
	rg.GET("/attempts/:attemptId/next", c.attempt.NextQuestion)

	// 学习表现
	rg.GET("/performance", c.performance.MyPerformance)
}

// 教师相关接口
func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.PUT("/courses/:courseId", c.course.UpdateCourse)
		instructor.POST("/courses/:courseId/topics", c.course.CreateTopic)
		instructor.POST("/topics/:topicId/subtopics", c.course.CreateSubtopic)

		instructor.POST("/courses/:courseId/assessments", c.assessment.CreateAssessment)
		instructor.PUT("/assessments/:id", c.assessment.UpdateAssessment)
		instructor.PUT("/assessments/:id/publish", c.assessment.SetPublished)
		instructor.POST("/assessments/:id/questions", c.assessment.CreateQuestion)
		instructor.GET("/assessments/:id/questions", c.assessment.ListQuestions)
		instructor.DELETE("/assessments/:id/questions/:questionId", c.assessment.DeleteQuestion)
		instructor.GET("/assessments/:id/attempts", c.attempt.ListAssessmentAttempts)

		instructor.POST("/courses/:courseId/bank", c.assessment.CreateBankEntry)
		instructor.GET("/courses/:courseId/bank", c.assessment.ListBank)
		instructor.PUT("/courses/:courseId/bank/:questionId", c.assessment.UpdateBankEntry)
		instructor.DELETE("/courses/:courseId/bank/:questionId", c.assessment.DeleteBankEntry)

		instructor.GET("/students/:studentId/performance", c.performance.StudentPerformance)
	}
}
