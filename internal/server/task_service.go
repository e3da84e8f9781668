package server

import (
	"context"
	"errors"

	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/pkg/logger"
)

//go:generate mockgen -destination=mock_task_repository.go -package=server github.com/gerfey/planit/internal/server TaskRepository

var (
	ErrDuplicateTask    = errors.New("задача с таким названием уже существует")
	ErrNoFieldsToUpdate = errors.New("нет полей для обновления")
	ErrNotTaskOwner     = errors.New("задача принадлежит другому пользователю")
	ErrInvalidStatus    = errors.New("недопустимый статус задачи")
)

type TaskRepository interface {
	CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64, status *models.TaskStatus) ([]*models.Task, error)
	GetTaskOwner(ctx context.Context, id int64) (int64, error)
	UpdateTask(ctx context.Context, id, userID int64, update models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id, userID int64) (*models.Task, error)
}

type TaskService struct {
	repo   TaskRepository
	logger logger.Logger
}

func NewTaskService(repo TaskRepository, logger logger.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// List возвращает задачи пользователя; пустой status - без фильтра.
func (s *TaskService) List(ctx context.Context, userID int64, status string) ([]*models.Task, error) {
	var filter *models.TaskStatus
	if status != "" {
		st := models.TaskStatus(status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		filter = &st
	}

	return s.repo.ListTasks(ctx, userID, filter)
}

func (s *TaskService) Create(ctx context.Context, task models.NewTask) (*models.Task, error) {
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if !task.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicateTask
		}

		return nil, err
	}

	s.logger.Debugf("Пользователь %d создал задачу %d", task.UserID, created.ID)

	return created, nil
}

// Authorize проверяет, что задача существует и принадлежит userID.
func (s *TaskService) Authorize(ctx context.Context, taskID, userID int64) error {
	ownerID, err := s.repo.GetTaskOwner(ctx, taskID)
	if err != nil {
		return err
	}

	if ownerID != userID {
		s.logger.Warnf("Пользователь %d обратился к чужой задаче %d", userID, taskID)

		return ErrNotTaskOwner
	}

	return nil
}

func (s *TaskService) Update(ctx context.Context, taskID, userID int64, update models.TaskUpdate) (*models.Task, error) {
	if update.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.repo.UpdateTask(ctx, taskID, userID, update)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicateTask
		}

		return nil, err
	}

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID int64) (*models.Task, error) {
	task, err := s.repo.DeleteTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("Пользователь %d удалил задачу %d", userID, taskID)

	return task, nil
}
