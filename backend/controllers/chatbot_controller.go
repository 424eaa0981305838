package controllers

import (
	"edulearn/backend/chatbot"
	"edulearn/backend/config"
	"edulearn/backend/middleware"
	"edulearn/backend/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ChatbotController struct {
	Bot *chatbot.Bot
	Cfg *config.Config
	Log *utils.Logger
}

func NewChatbotController(bot *chatbot.Bot, cfg *config.Config, log *utils.Logger) *ChatbotController {
	return &ChatbotController{Bot: bot, Cfg: cfg, Log: log}
}

type ChatRequest struct {
	Message string `json:"message"`
}

// Chat godoc
// @Summary Talk to the EduLearn assistant
// @Description Answers catalog questions, generates courses for teachers, and falls back to an AI answer
// @Tags chatbot
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Chat message"
// @Success 200 {object} utils.ChatResponse
// @Failure 400 {object} utils.ChatError
// @Failure 401 {object} utils.ChatError
// @Failure 403 {object} utils.ChatError
// @Failure 409 {object} utils.ChatError
// @Failure 500 {object} utils.ChatError
// @Router /chatbot [post]
func (cc *ChatbotController) Chat(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if cc.Cfg.ChatRequireSession && identity == nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var input ChatRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	req := chatbot.Request{Message: input.Message}
	if identity != nil && identity.Email != "" {
		req.Caller = &chatbot.Caller{Email: identity.Email}
	}

	reply, err := cc.Bot.Reply(c.UserContext(), req)
	if err != nil {
		return cc.fail(c, err)
	}
	return utils.Reply(c, reply)
}

func (cc *ChatbotController) MethodNotAllowed(c *fiber.Ctx) error {
	return utils.Fail(c, fiber.StatusMethodNotAllowed, "Only POST allowed")
}

func (cc *ChatbotController) fail(c *fiber.Ctx, err error) error {
	var formatErr *chatbot.FormatError
	switch {
	case errors.Is(err, chatbot.ErrMissingMessage):
		return utils.Fail(c, fiber.StatusBadRequest, "Missing message")
	case errors.As(err, &formatErr):
		return utils.Fail(c, fiber.StatusBadRequest, formatErr.Hint)
	case errors.Is(err, chatbot.ErrUnauthorized):
		return utils.Fail(c, fiber.StatusUnauthorized, "Unauthorized. Please log in as a teacher.")
	case errors.Is(err, chatbot.ErrForbidden):
		return utils.Fail(c, fiber.StatusForbidden, "Access denied. Only teachers can create courses.")
	case errors.Is(err, chatbot.ErrDuplicateGeneration):
		return utils.Fail(c, fiber.StatusConflict, "This course is already being generated. Please wait.")
	case errors.Is(err, chatbot.ErrAnswerFailed):
		cc.Log.Error("AI fallback failed", "error", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "AI call failed.")
	default:
		cc.Log.Error("Chatbot error", "error", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Server error")
	}
}
