package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursegpa/internal/app/controllers"
	"github.com/yigit/coursegpa/internal/app/models/dto"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	courseController *controllers.CourseController,
	courseStream gin.HandlerFunc,
) {
	// API version group
	v1 := router.Group("/api/v1")

	courses := v1.Group("/courses")
	{
		courses.POST("", courseController.CreateCourse)
		courses.GET("", courseController.GetAllCourses)
		courses.DELETE("", courseController.DeleteCourse)
		courses.GET("/search", courseController.SearchCourses)
		courses.GET("/gpa", courseController.GetGPA)
		courses.GET("/grades", courseController.GetGradeScale)
		courses.GET("/ws", courseStream)
	}

	// Health check endpoints (public)
	router.GET("/healthz", courseController.Health)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found").
				WithSeverity(dto.ErrorSeverityWarning),
		))
	})
}
