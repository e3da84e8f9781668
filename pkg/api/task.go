package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/internal/server"
)

type TaskService interface {
	List(ctx context.Context, userID int64, status string) ([]*models.Task, error)
	Create(ctx context.Context, task models.NewTask) (*models.Task, error)
	Authorize(ctx context.Context, taskID, userID int64) error
	Update(ctx context.Context, taskID, userID int64, update models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, taskID, userID int64) (*models.Task, error)
}

// taskError переводит ошибки сервиса задач в ответы API.
func taskError(err error) error {
	switch {
	case errors.Is(err, server.ErrInvalidStatus):
		return NewError(http.StatusBadRequest, msgInvalidStatus)
	case errors.Is(err, server.ErrNoFieldsToUpdate):
		return NewError(http.StatusBadRequest, msgNoFieldsToUpdate)
	case errors.Is(err, models.ErrInvalidDate):
		return NewError(http.StatusBadRequest, msgInvalidDueDate)
	case errors.Is(err, server.ErrTaskNotFound):
		return NewError(http.StatusNotFound, msgTaskNotFound)
	case errors.Is(err, server.ErrDuplicateTask):
		return NewError(http.StatusConflict, msgDuplicateTask)
	}

	return err
}

func (h *Handler) listTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		abortWithError(c, NewError(http.StatusUnauthorized, msgNoToken))

		return
	}

	var query models.ListTasksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithError(c, NewError(http.StatusBadRequest, msgInvalidStatus))

		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), userID, query.Status)
	if err != nil {
		abortWithError(c, taskError(err))

		return
	}

	if tasks == nil {
		tasks = []*models.Task{}
	}

	c.JSON(http.StatusOK, models.TasksResponse{
		Message: "Tasks retrieved successfully",
		Tasks:   tasks,
	})
}

func (h *Handler) createTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		abortWithError(c, NewError(http.StatusUnauthorized, msgNoToken))

		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindingError(err, msgTaskFieldsRequired))

		return
	}

	newTask, err := req.ToNewTask(userID)
	if err != nil {
		abortWithError(c, taskError(err))

		return
	}

	task, err := h.taskService.Create(c.Request.Context(), newTask)
	if err != nil {
		abortWithError(c, taskError(err))

		return
	}

	c.JSON(http.StatusCreated, models.TaskResponse{
		Message: "Task created successfully",
		Task:    task,
	})
}

func (h *Handler) updateTask(c *gin.Context) {
	userID, _ := getUserID(c)
	taskID := getTaskID(c)

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindingError(err, msgNoFieldsToUpdate))

		return
	}

	update, err := req.ToTaskUpdate()
	if err != nil {
		abortWithError(c, taskError(err))

		return
	}

	task, err := h.taskService.Update(c.Request.Context(), taskID, userID, update)
	if err != nil {
		abortWithError(c, taskError(err))

		return
	}

	c.JSON(http.StatusOK, models.TaskResponse{
		Message: "Task updated successfully",
		Task:    task,
	})
}

func (h *Handler) deleteTask(c *gin.Context) {
	userID, _ := getUserID(c)
	taskID := getTaskID(c)

	task, err := h.taskService.Delete(c.Request.Context(), taskID, userID)
	if err != nil {
		abortWithError(c, taskError(err))

		return
	}

	c.JSON(http.StatusOK, models.TaskResponse{
		Message: "Task deleted successfully",
		Task:    task,
	})
}
