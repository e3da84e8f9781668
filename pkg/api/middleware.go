package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gerfey/planit/internal/auth"
	"github.com/gerfey/planit/internal/server"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxTaskID   = "task_id"
)

// UUID тоже подходит под этот шаблон.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if !requestIDPattern.MatchString(requestID) {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		h.logger.Infof("[%s] %s %s %d %s", requestID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// bearerToken достает токен из заголовка "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	const bearerPrefix = "Bearer "

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}

func (h *Handler) parseToken(c *gin.Context) (*auth.UserClaims, error) {
	token, ok := bearerToken(c)
	if !ok {
		return nil, NewError(http.StatusUnauthorized, msgNoToken)
	}

	claims, err := h.tokenManager.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			h.logger.Debugf("Истек срок действия токена: %s %s", c.Request.Method, c.Request.URL.Path)
		}

		return nil, NewError(http.StatusUnauthorized, msgInvalidToken)
	}

	return claims, nil
}

func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := h.parseToken(c)
		if err != nil {
			abortWithError(c, err)

			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// taskOwnershipMiddleware пропускает запрос, только если задача :id принадлежит текущему пользователю.
func (h *Handler) taskOwnershipMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || taskID <= 0 {
			abortWithError(c, NewError(http.StatusBadRequest, msgInvalidTaskID))

			return
		}

		userID, ok := getUserID(c)
		if !ok {
			abortWithError(c, NewError(http.StatusUnauthorized, msgNoToken))

			return
		}

		err = h.taskService.Authorize(c.Request.Context(), taskID, userID)
		switch {
		case err == nil:
		case errors.Is(err, server.ErrTaskNotFound):
			abortWithError(c, NewError(http.StatusNotFound, msgTaskNotFound))

			return
		case errors.Is(err, server.ErrNotTaskOwner):
			if h.concealOwnership {
				abortWithError(c, NewError(http.StatusNotFound, msgTaskNotFound))
			} else {
				abortWithError(c, NewError(http.StatusForbidden, msgNotTaskOwner))
			}

			return
		default:
			abortWithError(c, err)

			return
		}

		c.Set(ctxTaskID, taskID)
		c.Next()
	}
}

func getUserID(c *gin.Context) (int64, bool) {
	userID, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}

	id, ok := userID.(int64)

	return id, ok
}

func getTaskID(c *gin.Context) int64 {
	return c.GetInt64(ctxTaskID)
}
