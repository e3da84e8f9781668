package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gerfey/planit/internal/models"
)

const (
	msgCredentialsRequired = "Username and password are required"
	msgWeakPassword        = "Password does not meet requirements"
	msgPasswordTooLong     = "Password must be at most 72 bytes long"
	msgInvalidUsername     = "Username must not be blank or longer than 50 characters"
	msgUsernameTaken       = "Username already exists"
	msgInvalidCredentials  = "Invalid credentials"
	msgNoToken             = "No token provided"
	msgInvalidToken        = "Invalid token"
	msgUserNotFound        = "User not found"

	msgInvalidStatus      = "Status must be either 'Pending' or 'Completed'"
	msgTaskFieldsRequired = "Title and due date are required"
	msgInvalidDueDate     = "Due date must be a valid date (YYYY-MM-DD)"
	msgTitleLength        = "Title must be between 1 and 255 characters"
	msgInvalidBody        = "Invalid request body"
	msgInvalidTaskID      = "Invalid task id"
	msgTaskNotFound       = "Task not found"
	msgNotTaskOwner       = "Not authorized to modify this task"
	msgDuplicateTask      = "Task with this title already exists"
	msgNoFieldsToUpdate   = "No valid fields provided for update"

	msgTooManyRequests = "Too many requests, please try again later"
	msgRouteNotFound   = "Route not found"
	msgInternal        = "Internal Server Error"
)

// Error - ошибка с HTTP-статусом, которую errorMiddleware отдает клиенту как есть.
type Error struct {
	Status  int
	Message string
	Details []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewError(status int, message string, details ...string) *Error {
	return &Error{
		Status:  status,
		Message: message,
		Details: details,
	}
}

func errorResponse(status int, message string, details []string) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.ErrorBody{
			Message: message,
			Status:  status,
			Details: details,
		},
	}
}

// abortWithError кладет ошибку в контекст и прерывает цепочку.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func (h *Handler) errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var apiErr *Error
		if errors.As(err, &apiErr) {
			c.JSON(apiErr.Status, errorResponse(apiErr.Status, apiErr.Message, apiErr.Details))

			return
		}

		h.logger.Errorf("Необработанная ошибка %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, errorResponse(http.StatusInternalServerError, msgInternal, nil))
	}
}

func (h *Handler) recoveryHandler(c *gin.Context, recovered any) {
	h.logger.Errorf("Паника при обработке %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(http.StatusInternalServerError, msgInternal, nil))
}

func (h *Handler) noRoute(c *gin.Context) {
	abortWithError(c, NewError(http.StatusNotFound, msgRouteNotFound))
}
