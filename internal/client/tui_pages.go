package client

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/gerfey/planit/internal/models"
)

const (
	buttonAreaHeight = 3
	filterAreaHeight = 3
	headerHeight     = 1
)

var (
	filterLabels   = []string{"Все", string(models.TaskPending), string(models.TaskCompleted)}
	filterStatuses = []models.TaskStatus{"", models.TaskPending, models.TaskCompleted}
	statusOptions  = []string{string(models.TaskPending), string(models.TaskCompleted)}
)

func (t *TUI) createMainPage() tview.Primitive {
	flex := tview.NewFlex().SetDirection(tview.FlexRow)

	t.header = tview.NewTextView().SetDynamicColors(true)

	table := tview.NewTable().
		SetBorders(true).
		SetSelectable(true, false).
		SetFixed(1, 0)
	t.taskTable = table
	t.updateTaskTable()

	table.SetSelectedFunc(func(row, _ int) {
		if task := t.tasks.at(row - 1); task != nil {
			t.showTaskForm(task)
		}
	})

	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'a':
			t.showTaskForm(nil)
		case 't':
			t.toggleSelectedTask()
		case 'd':
			t.deleteSelectedTask()
		default:
			return event
		}

		return nil
	})

	t.filterDropDown = tview.NewDropDown().
		SetLabel("Фильтр").
		SetOptions(filterLabels, func(_ string, index int) {
			if index < 0 || index >= len(filterStatuses) || t.client.GetAuthToken() == "" {
				return
			}
			if filterStatuses[index] != t.tasks.filter {
				t.loadTasks(filterStatuses[index])
			}
		})
	t.filterDropDown.SetCurrentOption(0)
	filterForm := tview.NewForm().SetHorizontal(true).AddFormItem(t.filterDropDown)

	buttons := tview.NewForm().SetHorizontal(true)
	buttons.AddButton("Добавить", func() {
		t.showTaskForm(nil)
	})
	buttons.AddButton("Изменить", func() {
		if task := t.selectedTask(); task != nil {
			t.showTaskForm(task)
		}
	})
	buttons.AddButton("Статус", t.toggleSelectedTask)
	buttons.AddButton("Удалить", t.deleteSelectedTask)
	buttons.AddButton("Выход", t.logout)

	flex.AddItem(t.header, headerHeight, 0, false).
		AddItem(filterForm, filterAreaHeight, 0, false).
		AddItem(table, 0, 1, true).
		AddItem(buttons, buttonAreaHeight, 0, false)

	flex.SetTitle("PlanIt - Задачи").SetBorder(true)

	return flex
}

func (t *TUI) refreshHeader() {
	if t.header == nil {
		return
	}

	t.header.SetText(fmt.Sprintf(
		"Пользователь: [green]%s[white]  (a - добавить, Enter - изменить, t - статус, d - удалить)",
		t.config.Username,
	))
}

// showTaskForm открывает форму создания (task == nil) или редактирования задачи.
func (t *TUI) showTaskForm(task *models.Task) {
	form := tview.NewForm()

	title, description, dueDate := "", "", time.Now().Format(models.DateLayout)
	statusIndex := 0
	if task != nil {
		title = task.Title
		if task.Description != nil {
			description = *task.Description
		}
		dueDate = formatDate(task.DueDate)
		if task.Status == models.TaskCompleted {
			statusIndex = 1
		}
	}

	form.AddInputField("Название", title, longFieldWidth, nil, nil)
	form.AddTextArea("Описание", description, longFieldWidth, textAreaHeight, 0, nil)
	form.AddInputField("Срок (ГГГГ-ММ-ДД)", dueDate, dateFieldWidth, nil, nil)
	form.AddDropDown("Статус", statusOptions, statusIndex, nil)

	form.AddButton("Сохранить", func() {
		input := taskInput{
			Title:       fieldText(form, "Название"),
			DueDate:     fieldText(form, "Срок (ГГГГ-ММ-ДД)"),
			Status:      models.TaskStatus(statusOptions[dropDownIndex(form, "Статус")]),
			Description: textAreaText(form, "Описание"),
		}

		if task == nil {
			t.createTask(input)
		} else {
			t.updateTask(task, input)
		}
	})

	form.AddButton("Отмена", t.closeTaskForm)

	formTitle := "Новая задача"
	if task != nil {
		formTitle = "Редактирование задачи"
	}
	form.SetTitle(formTitle).SetBorder(true)

	t.pages.AddPage(pageTaskForm, centered(form, formWidth, formHeight), true, true)
}

func (t *TUI) closeTaskForm() {
	t.pages.RemovePage(pageTaskForm)
	t.pages.SwitchToPage(pageMain)
}

func textAreaText(form *tview.Form, label string) string {
	if item := form.GetFormItemByLabel(label); item != nil {
		if area, ok := item.(*tview.TextArea); ok {
			return area.GetText()
		}
	}

	return ""
}

func dropDownIndex(form *tview.Form, label string) int {
	if item := form.GetFormItemByLabel(label); item != nil {
		if dropDown, ok := item.(*tview.DropDown); ok {
			if index, _ := dropDown.GetCurrentOption(); index >= 0 {
				return index
			}
		}
	}

	return 0
}
