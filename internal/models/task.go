package models

import (
	"errors"
	"time"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "Pending"
	TaskCompleted TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskCompleted
}

// Toggle возвращает противоположный статус
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskCompleted {
		return TaskPending
	}

	return TaskCompleted
}

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("неверный формат даты")

type Task struct {
	ID          int64      `json:"id"          db:"id"`
	Title       string     `json:"title"       db:"title"`
	Description *string    `json:"description" db:"description"`
	DueDate     time.Time  `json:"due_date"    db:"due_date"`
	Status      TaskStatus `json:"status"      db:"status"`
	UserID      int64      `json:"user_id"     db:"user_id"`
	CreatedAt   time.Time  `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"  db:"updated_at"`
}

// ParseDueDate принимает YYYY-MM-DD или RFC 3339 и отбрасывает время суток.
func ParseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

type CreateTaskRequest struct {
	Title       string     `json:"title"       binding:"required,max=255"`
	Description *string    `json:"description"`
	DueDate     string     `json:"due_date"    binding:"required,taskdate"`
	Status      TaskStatus `json:"status"      binding:"omitempty,taskstatus"`
}

// UpdateTaskRequest - частичное обновление, nil означает "не менять"
type UpdateTaskRequest struct {
	Title       *string     `json:"title"       binding:"omitempty,min=1,max=255"`
	Description *string     `json:"description"`
	DueDate     *string     `json:"due_date"    binding:"omitempty,taskdate"`
	Status      *TaskStatus `json:"status"      binding:"omitempty,taskstatus"`
}

type ListTasksQuery struct {
	Status string `form:"status"`
}

type NewTask struct {
	Title       string
	Description *string
	DueDate     time.Time
	Status      TaskStatus
	UserID      int64
}

type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *TaskStatus
}

func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil && u.Status == nil
}

// ToNewTask переводит запрос в модель; дата и статус уже проверены валидатором.
func (r *CreateTaskRequest) ToNewTask(userID int64) (NewTask, error) {
	dueDate, err := ParseDueDate(r.DueDate)
	if err != nil {
		return NewTask{}, err
	}

	status := r.Status
	if status == "" {
		status = TaskPending
	}

	return NewTask{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     dueDate,
		Status:      status,
		UserID:      userID,
	}, nil
}

func (r *UpdateTaskRequest) ToTaskUpdate() (TaskUpdate, error) {
	update := TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}

	if r.DueDate != nil {
		dueDate, err := ParseDueDate(*r.DueDate)
		if err != nil {
			return TaskUpdate{}, err
		}
		update.DueDate = &dueDate
	}

	return update, nil
}
