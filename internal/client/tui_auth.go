package client

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/gerfey/planit/internal/models"
)

// logout только забывает токен локально: сервер токены не отзывает.
func (t *TUI) logout() {
	t.clearSession()

	if err := t.saveConfig(); err != nil {
		t.showError(fmt.Sprintf("Ошибка при сохранении конфигурации: %v", err))
	}

	t.pages.SwitchToPage(pageLogin)
}

func (t *TUI) clearSession() {
	t.config.Token = ""
	t.config.Username = ""
	t.client.SetAuthToken("")
	t.tasks.clear()
}

// sessionExpired возвращает на вход, если сервер отверг токен.
func (t *TUI) sessionExpired(err error) bool {
	if !IsUnauthorized(err) {
		return false
	}

	t.logout()
	t.showError("Сессия истекла, войдите снова")

	return true
}

func (t *TUI) startSession(user *models.PublicUser) {
	t.config.Token = t.client.GetAuthToken()
	t.config.Username = user.Username
	if err := t.saveConfig(); err != nil {
		t.showError(fmt.Sprintf("Ошибка сохранения конфигурации: %v", err))
	}

	t.filterDropDown.SetCurrentOption(0)
	t.refreshHeader()
	t.loadTasks("")
	t.pages.SwitchToPage(pageMain)
}

func (t *TUI) createLoginPage() tview.Primitive {
	loginForm := tview.NewForm()

	loginForm.AddInputField("Сервер", t.config.ServerURL, standardFieldWidth, nil, t.switchServer)
	loginForm.AddInputField("Имя пользователя", "", standardFieldWidth, nil, nil)
	loginForm.AddPasswordField("Пароль", "", standardFieldWidth, '*', nil)

	loginForm.AddButton("Войти", func() {
		username := fieldText(loginForm, "Имя пользователя")
		password := fieldText(loginForm, "Пароль")

		if username == "" || password == "" {
			t.showError("Имя пользователя и пароль не могут быть пустыми")

			return
		}

		ctx, cancel := t.requestContext()
		defer cancel()

		user, err := t.client.Login(ctx, username, password)
		if err != nil {
			t.showError(fmt.Sprintf("Ошибка входа: %v", err))

			return
		}

		clearField(loginForm, "Пароль")
		t.startSession(user)
	})

	loginForm.AddButton("Регистрация", func() {
		t.pages.SwitchToPage(pageRegister)
	})

	loginForm.SetTitle("PlanIt - Вход").SetBorder(true)

	return loginForm
}

func (t *TUI) createRegisterPage() tview.Primitive {
	registerForm := tview.NewForm()

	registerForm.AddInputField("Сервер", t.config.ServerURL, standardFieldWidth, nil, t.switchServer)
	registerForm.AddInputField("Имя пользователя", "", standardFieldWidth, nil, nil)
	registerForm.AddPasswordField("Пароль", "", standardFieldWidth, '*', nil)
	registerForm.AddPasswordField("Подтверждение пароля", "", standardFieldWidth, '*', nil)

	registerForm.AddButton("Зарегистрироваться", func() {
		username := fieldText(registerForm, "Имя пользователя")
		password := fieldText(registerForm, "Пароль")

		if msg := validateRegistration(username, password, fieldText(registerForm, "Подтверждение пароля")); msg != "" {
			t.showError(msg)

			return
		}

		ctx, cancel := t.requestContext()
		defer cancel()

		user, err := t.client.Register(ctx, username, password)
		if err != nil {
			t.showError(fmt.Sprintf("Ошибка регистрации: %v", err))

			return
		}

		clearField(registerForm, "Пароль")
		clearField(registerForm, "Подтверждение пароля")
		t.startSession(user)
	})

	registerForm.AddButton("Назад", func() {
		t.pages.SwitchToPage(pageLogin)
	})

	registerForm.SetTitle("PlanIt - Регистрация").SetBorder(true)

	return registerForm
}

// validateRegistration возвращает текст ошибки или пустую строку.
func validateRegistration(username, password, confirmPassword string) string {
	if username == "" || password == "" {
		return "Имя пользователя и пароль не могут быть пустыми"
	}

	if password != confirmPassword {
		return "Пароли не совпадают"
	}

	return ""
}

func fieldText(form *tview.Form, label string) string {
	if item := form.GetFormItemByLabel(label); item != nil {
		if field, ok := item.(*tview.InputField); ok {
			return field.GetText()
		}
	}

	return ""
}

func clearField(form *tview.Form, label string) {
	if item := form.GetFormItemByLabel(label); item != nil {
		if field, ok := item.(*tview.InputField); ok {
			field.SetText("")
		}
	}
}
