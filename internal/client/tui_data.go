package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/gerfey/planit/internal/models"
)

var (
	errTitleRequired = errors.New("название задачи обязательно")
	errInvalidDate   = errors.New("срок должен быть датой в формате ГГГГ-ММ-ДД")
	errNoChanges     = errors.New("нет изменений для сохранения")
)

// taskInput - значения полей формы задачи.
type taskInput struct {
	Title       string
	Description string
	DueDate     string
	Status      models.TaskStatus
}

func (in taskInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errTitleRequired
	}

	if _, err := models.ParseDueDate(strings.TrimSpace(in.DueDate)); err != nil {
		return errInvalidDate
	}

	return nil
}

func buildCreateRequest(in taskInput) (models.CreateTaskRequest, error) {
	if err := in.validate(); err != nil {
		return models.CreateTaskRequest{}, err
	}

	req := models.CreateTaskRequest{
		Title:   strings.TrimSpace(in.Title),
		DueDate: strings.TrimSpace(in.DueDate),
		Status:  in.Status,
	}

	if description := strings.TrimSpace(in.Description); description != "" {
		req.Description = &description
	}

	return req, nil
}

// buildUpdateRequest отправляет на сервер только измененные поля.
func buildUpdateRequest(task *models.Task, in taskInput) (models.UpdateTaskRequest, error) {
	if err := in.validate(); err != nil {
		return models.UpdateTaskRequest{}, err
	}

	var req models.UpdateTaskRequest
	changed := false

	if title := strings.TrimSpace(in.Title); title != task.Title {
		req.Title = &title
		changed = true
	}

	current := ""
	if task.Description != nil {
		current = *task.Description
	}
	if description := strings.TrimSpace(in.Description); description != current {
		req.Description = &description
		changed = true
	}

	if dueDate := strings.TrimSpace(in.DueDate); dueDate != formatDate(task.DueDate) {
		req.DueDate = &dueDate
		changed = true
	}

	if in.Status != task.Status {
		status := in.Status
		req.Status = &status
		changed = true
	}

	if !changed {
		return req, errNoChanges
	}

	return req, nil
}

// loadTasks - единственное место, где список запрашивается у сервера целиком.
func (t *TUI) loadTasks(filter models.TaskStatus) {
	ctx, cancel := t.requestContext()
	defer cancel()

	tasks, err := t.client.ListTasks(ctx, filter)
	if err != nil {
		if t.sessionExpired(err) {
			return
		}
		t.showError(fmt.Sprintf("Ошибка загрузки задач: %v", err))

		return
	}

	t.tasks.reset(filter, tasks)
	t.updateTaskTable()
}

func (t *TUI) updateTaskTable() {
	table := t.taskTable
	if table == nil {
		return
	}
	table.Clear()

	for column, title := range []string{"ID", "Название", "Срок", "Статус"} {
		table.SetCell(0, column, tview.NewTableCell(title).SetTextColor(tcell.ColorYellow).SetSelectable(false))
	}

	for i := range t.tasks.count() {
		task := t.tasks.at(i)
		row := i + 1
		table.SetCell(row, idColumn, tview.NewTableCell(strconv.FormatInt(task.ID, 10)))
		table.SetCell(row, titleColumn, tview.NewTableCell(task.Title).SetExpansion(1))
		table.SetCell(row, dueDateColumn, tview.NewTableCell(formatDate(task.DueDate)))
		table.SetCell(row, statusColumn, tview.NewTableCell(string(task.Status)).SetTextColor(statusColor(task.Status)))
	}

	if t.tasks.count() == 0 {
		table.SetCell(1, titleColumn, tview.NewTableCell("Задач нет").SetTextColor(tcell.ColorGray).SetSelectable(false))
	}
}

func statusColor(status models.TaskStatus) tcell.Color {
	if status == models.TaskCompleted {
		return tcell.ColorGreen
	}

	return tcell.ColorWhite
}

func (t *TUI) selectedTask() *models.Task {
	if t.taskTable == nil {
		return nil
	}

	row, _ := t.taskTable.GetSelection()

	return t.tasks.at(row - 1)
}

func (t *TUI) createTask(in taskInput) {
	req, err := buildCreateRequest(in)
	if err != nil {
		t.showError(err.Error())

		return
	}

	ctx, cancel := t.requestContext()
	defer cancel()

	task, err := t.client.CreateTask(ctx, req)
	if err != nil {
		if t.sessionExpired(err) {
			return
		}
		t.showError(fmt.Sprintf("Ошибка создания задачи: %v", err))

		return
	}

	t.tasks.add(task)
	t.updateTaskTable()
	t.closeTaskForm()
}

func (t *TUI) updateTask(task *models.Task, in taskInput) {
	req, err := buildUpdateRequest(task, in)
	if errors.Is(err, errNoChanges) {
		t.closeTaskForm()

		return
	}
	if err != nil {
		t.showError(err.Error())

		return
	}

	if t.saveTask(task.ID, req) {
		t.closeTaskForm()
	}
}

func (t *TUI) toggleSelectedTask() {
	task := t.selectedTask()
	if task == nil {
		return
	}

	status := task.Status.Toggle()
	t.saveTask(task.ID, models.UpdateTaskRequest{Status: &status})
}

func (t *TUI) saveTask(id int64, req models.UpdateTaskRequest) bool {
	ctx, cancel := t.requestContext()
	defer cancel()

	updated, err := t.client.UpdateTask(ctx, id, req)
	if err != nil {
		if t.sessionExpired(err) {
			return false
		}
		t.showError(fmt.Sprintf("Ошибка обновления задачи: %v", err))

		return false
	}

	t.tasks.replace(updated)
	t.updateTaskTable()

	return true
}

func (t *TUI) deleteSelectedTask() {
	task := t.selectedTask()
	if task == nil {
		return
	}

	t.showConfirm(fmt.Sprintf("Удалить задачу %q?", task.Title), "Удалить", func() {
		ctx, cancel := t.requestContext()
		defer cancel()

		if _, err := t.client.DeleteTask(ctx, task.ID); err != nil {
			if t.sessionExpired(err) {
				return
			}
			t.showError(fmt.Sprintf("Ошибка удаления задачи: %v", err))

			return
		}

		t.tasks.remove(task.ID)
		t.updateTaskTable()
		t.showInfo(fmt.Sprintf("Задача %q удалена", task.Title))
	})
}
