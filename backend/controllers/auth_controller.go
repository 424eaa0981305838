package controllers

import (
	"edulearn/backend/config"
	"edulearn/backend/models"
	"edulearn/backend/store"
	"edulearn/backend/utils"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAuthController(s *store.Store, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Store: s, Cfg: cfg, Log: log}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Email and password are required")
	}
	if input.Role == "" {
		input.Role = models.RoleTeacher
	}
	if !models.ValidRole(input.Role) {
		return utils.BadRequest(c, "Role must be teacher or student")
	}

	ctx := c.UserContext()
	if _, err := ac.Store.UserByEmail(ctx, input.Email); err == nil {
		return utils.Conflict(c, "Email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		ac.Log.Error("Lookup user failed", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		Provider:     models.ProviderEmail,
	}
	if err := ac.Store.CreateUser(ctx, &user); err != nil {
		ac.Log.Error("Create user failed", "error", err)
		return utils.InternalServerError(c, "Could not create user")
	}

	return ac.session(c, fiber.StatusCreated, &user)
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	user, err := ac.Store.UserByEmail(c.UserContext(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		ac.Log.Error("Lookup user failed", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	// accounts created through an external provider have no password
	if user.PasswordHash == "" {
		return utils.Unauthorized(c, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	return ac.session(c, fiber.StatusOK, user)
}

func (ac *AuthController) session(c *fiber.Ctx, status int, user *models.User) error {
	token, err := utils.GenerateJWTToken(user.ID, user.Email, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.Status(status).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
