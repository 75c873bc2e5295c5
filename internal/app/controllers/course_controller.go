package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/coursegpa/internal/app/models/dto"
	"github.com/yigit/coursegpa/internal/app/repositories"
	"github.com/yigit/coursegpa/internal/app/services"
	"github.com/yigit/coursegpa/internal/middleware"
	"github.com/yigit/coursegpa/internal/pkg/apperrors"
)

// CourseController handles course record and GPA endpoints
type CourseController struct {
	courseService services.CourseService
	driver        string
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController. driver is reported by
// the health endpoint.
func NewCourseController(courseService services.CourseService, driver string, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		driver:        driver,
		logger:        logger.With().Str("component", "course_controller").Logger(),
	}
}

// nameQuery reads the required name query parameter. Names may hold any
// character, including '/', so they never travel as a path segment.
func nameQuery(ctx *gin.Context) (string, bool) {
	name, ok := ctx.GetQuery("name")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("name query parameter is required"))
		return "", false
	}
	return name, true
}

// CreateCourse handles course creation
// @Summary Add a course record
// @Description Stores a course. A name that is already stored leaves the store unchanged and answers 200 with inserted=false and id=-1.
// @Tags courses
// @Accept json
// @Produce json
// @Param request body dto.CreateCourseRequest true "Course record"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCourseResponse} "Course created successfully"
// @Success 200 {object} dto.APIResponse{data=dto.CreateCourseResponse} "Course name already exists"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 503 {object} dto.ErrorResponse "Course store unavailable"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.courseService.InsertCourse(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if id == repositories.DuplicateRowID {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
			dto.CreateCourseResponse{ID: id, Inserted: false},
			"Course name already exists, nothing inserted",
		))
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(
		dto.CreateCourseResponse{ID: id, Inserted: true},
		"Course created successfully",
	))
}

// GetAllCourses lists every course
// @Summary List courses
// @Description Returns all stored courses in insertion order
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses retrieved successfully"
// @Failure 503 {object} dto.ErrorResponse "Course store unavailable"
// @Router /courses [get]
func (c *CourseController) GetAllCourses(ctx *gin.Context) {
	courses, err := c.courseService.ListCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseResponses(courses), ""))
}

// SearchCourses finds courses by exact name
// @Summary Find courses by name
// @Description Returns the courses whose name matches exactly after trimming
// @Tags courses
// @Produce json
// @Param name query string true "Course name"
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Matching courses"
// @Failure 400 {object} dto.ErrorResponse "Missing name parameter"
// @Failure 503 {object} dto.ErrorResponse "Course store unavailable"
// @Router /courses/search [get]
func (c *CourseController) SearchCourses(ctx *gin.Context) {
	name, ok := nameQuery(ctx)
	if !ok {
		return
	}

	courses, err := c.courseService.FindCourses(ctx.Request.Context(), name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseResponses(courses), ""))
}

// DeleteCourse removes courses by name
// @Summary Delete courses by name
// @Description Removes every course with this name. An unknown name still answers 200 with removed=0.
// @Tags courses
// @Produce json
// @Param name query string true "Course name"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteCourseResponse} "Delete outcome"
// @Failure 400 {object} dto.ErrorResponse "Missing name parameter"
// @Failure 503 {object} dto.ErrorResponse "Course store unavailable"
// @Router /courses [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	name, ok := nameQuery(ctx)
	if !ok {
		return
	}
	name = strings.TrimSpace(name)

	removed, err := c.courseService.DeleteCourse(ctx.Request.Context(), name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Course deleted"
	if removed == 0 {
		message = "No course with that name"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		dto.DeleteCourseResponse{CourseName: name, Removed: removed},
		message,
	))
}

// GetGPA computes the GPA over every stored course
// @Summary Compute GPA
// @Description Credit-weighted GPA over recognized grades, raw and rounded to 2 decimals
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.GPAResult} "GPA"
// @Failure 503 {object} dto.ErrorResponse "Course store unavailable"
// @Router /courses/gpa [get]
func (c *CourseController) GetGPA(ctx *gin.Context) {
	result, err := c.courseService.CalculateGPA(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, ""))
}

// GetGradeScale returns the letter grade scale
// @Summary Letter grade scale
// @Description Recognized letter grades with their quality points, highest first
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.GradeScaleResponse} "Grade scale"
// @Router /courses/grades [get]
func (c *CourseController) GetGradeScale(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewGradeScaleResponse(), ""))
}

// Health handles GET /healthz
func (c *CourseController) Health(ctx *gin.Context) {
	if err := c.courseService.Ping(ctx.Request.Context()); err != nil {
		c.logger.Warn().Err(err).Msg("Health check failed")
		ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{
			Success:   false,
			Data:      dto.HealthResponse{Status: "degraded", Database: "unreachable", Driver: c.driver},
			Error:     dto.NewErrorDetail(dto.ErrorCodeStorageFault, "Course store unavailable"),
			Timestamp: time.Now(),
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		dto.HealthResponse{Status: "ok", Database: "reachable", Driver: c.driver}, "",
	))
}
