package controllers

import (
	"edulearn/backend/config"
	"edulearn/backend/middleware"
	"edulearn/backend/store"
	"edulearn/backend/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewUserController(s *store.Store, cfg *config.Config, log *utils.Logger) *UserController {
	return &UserController{Store: s, Cfg: cfg, Log: log}
}

type LastVisitedRequest struct {
	CourseID uint  `json:"courseId"`
	LessonID *uint `json:"lessonId"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	user, err := uc.Store.UserByID(c.UserContext(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "User not found")
		}
		uc.Log.Error("Load profile failed", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"role":              user.Role,
		"provider":          user.Provider,
		"image":             user.Image,
		"lastVisitedCourse": user.LastVisitedCourseID,
		"lastVisitedLesson": user.LastVisitedLessonID,
		"createdAt":         user.CreatedAt,
	})
}

// UpdateLastVisited godoc
// @Summary Remember the last opened course and lesson
// @Tags users
// @Accept json
// @Produce json
// @Param input body LastVisitedRequest true "Course and optional lesson"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/last-visited [post]
func (uc *UserController) UpdateLastVisited(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input LastVisitedRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.CourseID == 0 {
		return utils.BadRequest(c, "courseId is required")
	}

	ctx := c.UserContext()
	course, err := uc.Store.CourseDetails(ctx, input.CourseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		uc.Log.Error("Load course failed", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}
	if input.LessonID != nil && !hasLesson(course.Lessons, *input.LessonID) {
		return utils.NotFound(c, "Lesson not found")
	}

	user, err := uc.Store.UpdateLastVisited(ctx, identity.UserID, input.CourseID, input.LessonID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "User not found")
		}
		uc.Log.Error("Update last visited failed", "error", err)
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lastVisitedCourse": user.LastVisitedCourseID,
		"lastVisitedLesson": user.LastVisitedLessonID,
	})
}
