package client

import "github.com/gerfey/planit/internal/models"

// taskList - локальная копия задач под текущим фильтром.
// После изменений список правится на месте, без повторного запроса к серверу.
type taskList struct {
	filter models.TaskStatus
	tasks  []*models.Task
}

func (l *taskList) reset(filter models.TaskStatus, tasks []*models.Task) {
	l.filter = filter
	l.tasks = tasks
}

func (l *taskList) matches(task *models.Task) bool {
	return l.filter == "" || task.Status == l.filter
}

// add ставит новую задачу в начало, как при сортировке по created_at DESC.
func (l *taskList) add(task *models.Task) {
	if !l.matches(task) {
		return
	}

	l.tasks = append([]*models.Task{task}, l.tasks...)
}

// replace обновляет задачу; если она перестала подходить под фильтр, убирает ее.
func (l *taskList) replace(task *models.Task) {
	for i, t := range l.tasks {
		if t.ID != task.ID {
			continue
		}

		if !l.matches(task) {
			l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)

			return
		}

		l.tasks[i] = task

		return
	}
}

func (l *taskList) remove(id int64) {
	for i, t := range l.tasks {
		if t.ID == id {
			l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)

			return
		}
	}
}

func (l *taskList) at(index int) *models.Task {
	if index < 0 || index >= len(l.tasks) {
		return nil
	}

	return l.tasks[index]
}

func (l *taskList) count() int {
	return len(l.tasks)
}

func (l *taskList) clear() {
	l.filter = ""
	l.tasks = nil
}
