package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/server/http/dto"
	"github.com/polkiloo/freshcart/internal/server/http/middleware"
)

// AuthHandler serves sign-up, sign-in and staff account creation.
type AuthHandler struct {
	facade AuthFacade
}

func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

type credentialsFunc func(ctx context.Context, login, password string) (string, error)

// Register handles POST /api/user/register. Missing credentials are a client
// error here rather than a failed login.
func (h *AuthHandler) Register(c *gin.Context) {
	h.startSession(c, h.facade.Register, domainErrors.ErrInvalidCredentials)
}

// Login handles POST /api/user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	h.startSession(c, h.facade.Authenticate)
}

// startSession binds credentials, runs fn and hands the token back as a
// cookie and an Authorization header. Errors listed in asBadRequest answer 400.
func (h *AuthHandler) startSession(c *gin.Context, fn credentialsFunc, asBadRequest ...error) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := fn(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		for _, target := range asBadRequest {
			if errors.Is(err, target) {
				badRequest(c, err.Error())
				return
			}
		}
		abortWithError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.Status(http.StatusOK)
}

// CreateUser handles POST /api/admin/users.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	user, err := h.facade.CreateUser(c.Request.Context(), req.Login, req.Password, model.Role(req.Role))
	switch {
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		badRequest(c, err.Error())
	case err != nil:
		abortWithError(c, err)
	default:
		c.JSON(http.StatusCreated, dto.UserResponse{
			ID:        user.ID,
			Login:     user.Login,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
		})
	}
}
