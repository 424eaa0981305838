package routes

import (
	"edulearn/backend/chatbot"
	"edulearn/backend/config"
	"edulearn/backend/controllers"
	"edulearn/backend/middleware"
	"edulearn/backend/store"
	"edulearn/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, s *store.Store, bot *chatbot.Bot, cfg *config.Config, log *utils.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(s, cfg, log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuth(cfg)

	// Chatbot routes
	chatbotController := controllers.NewChatbotController(bot, cfg, log)
	app.Post("/api/chatbot", optionalAuth, chatbotController.Chat)
	app.All("/api/chatbot", chatbotController.MethodNotAllowed)

	// User routes
	userController := controllers.NewUserController(s, cfg, log)
	user := app.Group("/api/user", authMiddleware)
	user.Get("/profile", userController.GetProfile)
	user.Post("/last-visited", userController.UpdateLastVisited)

	// Courses routes
	coursesController := controllers.NewCoursesController(s, cfg, log)
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Post("/:id/enroll", authMiddleware, coursesController.Enroll)
}
