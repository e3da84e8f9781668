package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gerfey/planit/internal/crypto"
	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/internal/server"
)

//go:generate mockgen -destination=mock_services.go -package=api github.com/gerfey/planit/pkg/api TaskService,UserService

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

func (h *Handler) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindingError(err, msgCredentialsRequired))

		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var weakErr *server.WeakPasswordError

		switch {
		case errors.As(err, &weakErr):
			abortWithError(c, NewError(http.StatusBadRequest, msgWeakPassword, weakErr.Rules...))
		case errors.Is(err, server.ErrInvalidUsername):
			abortWithError(c, NewError(http.StatusBadRequest, msgInvalidUsername))
		case errors.Is(err, crypto.ErrPasswordTooLong):
			abortWithError(c, NewError(http.StatusBadRequest, msgPasswordTooLong))
		case errors.Is(err, server.ErrUserAlreadyExists):
			abortWithError(c, NewError(http.StatusBadRequest, msgUsernameTaken))
		default:
			abortWithError(c, err)
		}

		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.Username, h.tokenTTL)
	if err != nil {
		abortWithError(c, err)

		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		Message: "User registered successfully",
		User:    user.ToPublic(),
		Token:   token,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindingError(err, msgCredentialsRequired))

		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, server.ErrInvalidCredentials) {
			abortWithError(c, NewError(http.StatusUnauthorized, msgInvalidCredentials))

			return
		}

		abortWithError(c, err)

		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.Username, h.tokenTTL)
	if err != nil {
		abortWithError(c, err)

		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		User:    user.ToPublic(),
		Token:   token,
	})
}

// verify перечитывает пользователя из базы, а не доверяет claims.
func (h *Handler) verify(c *gin.Context) {
	claims, err := h.parseToken(c)
	if err != nil {
		abortWithError(c, err)

		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, server.ErrUserNotFound) {
			abortWithError(c, NewError(http.StatusUnauthorized, msgUserNotFound))

			return
		}

		abortWithError(c, err)

		return
	}

	c.JSON(http.StatusOK, models.VerifyResponse{User: user.ToPublic()})
}
