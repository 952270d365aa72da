package httpapi

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/logging"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const (
	actionLogin    = "login"
	actionRegister = "register"
)

type handler struct {
	auth   AuthService
	logger logging.Logger
}

type authRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type registerResponse struct {
	Message string   `json:"message"`
	User    userView `json:"user"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userResponse struct {
	User userView `json:"user"`
}

func toView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Role: u.Role}
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

// action serves the single-endpoint form: POST /auth {"action": ...}.
func (h *handler) action(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	switch req.Action {
	case actionLogin:
		return h.doLogin(c, req)
	case actionRegister:
		return h.doRegister(c, req)
	default:
		return writeError(c, h.logger, fmt.Errorf("%w: unknown action", common.ErrValidation))
	}
}

func (h *handler) register(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return h.doRegister(c, req)
}

func (h *handler) login(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return h.doLogin(c, req)
}

func (h *handler) doRegister(c *fiber.Ctx, req authRequest) error {
	u, err := h.auth.Register(c.UserContext(), req.Email, req.Password, req.Role)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(registerResponse{Message: "User created", User: toView(u)})
}

func (h *handler) doLogin(c *fiber.Ctx, req authRequest) error {
	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(loginResponse{Token: res.Token, User: toView(res.User)})
}

func (h *handler) whoAmI(c *fiber.Ctx) error {
	u, err := h.auth.WhoAmI(c.UserContext(), TokenFromRequest(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(userResponse{User: toView(u)})
}

func (h *handler) methodNotAllowed(c *fiber.Ctx) error {
	return writeError(c, h.logger, common.ErrMethodNotAllowed)
}

func parseRequest(c *fiber.Ctx) (authRequest, error) {
	var req authRequest
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	// Bodies are JSON whatever the Content-Type says.
	if err := c.App().Config().JSONDecoder(body, &req); err != nil {
		return req, fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return req, nil
}
