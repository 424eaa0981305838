package controllers

import (
	"edulearn/backend/config"
	"edulearn/backend/middleware"
	"edulearn/backend/models"
	"edulearn/backend/store"
	"edulearn/backend/utils"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewCoursesController(s *store.Store, cfg *config.Config, log *utils.Logger) *CoursesController {
	return &CoursesController{Store: s, Cfg: cfg, Log: log}
}

// ListCourses godoc
// @Summary List courses
// @Description Paged course catalog, or up to 5 matching titles when suggest=true
// @Tags courses
// @Produce json
// @Param search query string false "Case-insensitive title search"
// @Param published query bool false "Filter by published state"
// @Param isPaid query bool false "Filter by pricing"
// @Param sort query string false "field,ASC|DESC" default(createdAt,DESC)
// @Param page query int false "Page number" default(1)
// @Param suggest query bool false "Return titles only"
// @Success 200 {object} utils.PaginatedResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	filter := store.CourseFilter{
		Search:    c.Query("search"),
		Published: boolQuery(c, "published"),
		Paid:      boolQuery(c, "isPaid"),
	}

	ctx := c.UserContext()
	if c.Query("suggest") == "true" {
		titles, err := cc.Store.SuggestTitles(ctx, filter)
		if err != nil {
			cc.Log.Error("Suggest titles failed", "error", err)
			return utils.InternalServerError(c, "Could not query database")
		}
		if titles == nil {
			titles = []string{}
		}
		return c.JSON(titles)
	}

	sortField, sortOrder, _ := strings.Cut(c.Query("sort", "createdAt,DESC"), ",")
	filter.SortField = strings.TrimSpace(sortField)
	filter.Desc = strings.EqualFold(strings.TrimSpace(sortOrder), "DESC")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	filter.Page = page

	courses, total, err := cc.Store.ListCourses(ctx, filter)
	if err != nil {
		cc.Log.Error("List courses failed", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for i := range courses {
		result = append(result, courseSummary(&courses[i]))
	}
	return utils.Paginate(c, result, total, page, store.CoursesPerPage)
}

// GetCourseDetails godoc
// @Summary Get course details
// @Description Returns a course with its ordered lessons, their quizzes and the teacher
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := cc.Store.CourseDetails(c.UserContext(), uint(courseID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		cc.Log.Error("Load course failed", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	details := courseSummary(course)
	lessons := make([]fiber.Map, 0, len(course.Lessons))
	for _, l := range course.Lessons {
		quizzes := make([]fiber.Map, 0, len(l.Quizzes))
		for _, q := range l.Quizzes {
			quizzes = append(quizzes, fiber.Map{
				"id":            q.ID,
				"question":      q.Question,
				"options":       q.Options,
				"correctAnswer": q.CorrectAnswer,
				"isAIgenerated": q.IsAIGenerated,
			})
		}
		lessons = append(lessons, fiber.Map{
			"id":      l.ID,
			"title":   l.Title,
			"content": l.Content,
			"order":   l.SequenceOrder,
			"quizzes": quizzes,
		})
	}
	details["lessons"] = lessons

	return utils.Success(c, fiber.StatusOK, details)
}

// Enroll godoc
// @Summary Enroll the caller in a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	ctx := c.UserContext()
	course, err := cc.Store.CourseDetails(ctx, uint(courseID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		cc.Log.Error("Load course failed", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}
	if !course.IsPublished {
		return utils.NotFound(c, "Course not found")
	}
	if _, err := cc.Store.UserByID(ctx, identity.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.Store.Enroll(ctx, course.ID, identity.UserID); err != nil {
		cc.Log.Error("Enroll failed", "course_id", course.ID, "error", err)
		return utils.InternalServerError(c, "Could not enroll")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":  "Enrolled successfully",
		"courseId": course.ID,
	})
}

func courseSummary(course *models.Course) fiber.Map {
	out := fiber.Map{
		"id":          course.ID,
		"title":       course.Title,
		"category":    course.Category,
		"description": course.Description,
		"image":       course.Image,
		"isPublished": course.IsPublished,
		"isPaid":      course.IsPaid,
		"createdAt":   course.CreatedAt,
		"teacher":     nil,
	}
	if course.Teacher != nil {
		out["teacher"] = fiber.Map{
			"id":    course.Teacher.ID,
			"name":  course.Teacher.Name,
			"image": course.Teacher.Image,
		}
	}
	return out
}

func hasLesson(lessons []models.Lesson, id uint) bool {
	for _, l := range lessons {
		if l.ID == id {
			return true
		}
	}
	return false
}

// boolQuery reads "true"/"false"; anything else means no filter.
func boolQuery(c *fiber.Ctx, key string) *bool {
	var v bool
	switch c.Query(key) {
	case "true":
		v = true
	case "false":
		v = false
	default:
		return nil
	}
	return &v
}
