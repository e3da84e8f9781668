package client

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rivo/tview"

	"github.com/gerfey/planit/internal/models"
)

const (
	standardFieldWidth = 30
	longFieldWidth     = 50
	dateFieldWidth     = 12
	textAreaHeight     = 5

	idColumn      = 0
	titleColumn   = 1
	dueDateColumn = 2
	statusColumn  = 3

	formWidth  = 70
	formHeight = 20

	requestTimeout = 10 * time.Second

	DefaultServerURL = "http://localhost:3000"
)

const (
	pageLogin    = "login"
	pageRegister = "register"
	pageMain     = "main"
	pageTaskForm = "taskForm"
	pageDialog   = "dialog"
)

// Config - сохраняемая между запусками сессия клиента.
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	Username  string `json:"username"`
}

type TUI struct {
	app            *tview.Application
	pages          *tview.Pages
	client         *Client
	config         *Config
	configPath     string
	tasks          taskList
	taskTable      *tview.Table
	header         *tview.TextView
	filterDropDown *tview.DropDown
}

func NewTUI(configPath string) (*TUI, error) {
	tui := &TUI{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		configPath: configPath,
		config: &Config{
			ServerURL: DefaultServerURL,
		},
	}

	if err := tui.loadConfig(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	tui.client = NewClient(tui.config.ServerURL)
	tui.client.SetAuthToken(tui.config.Token)
	tui.client.SetUsername(tui.config.Username)

	return tui, nil
}

func (t *TUI) loadConfig() error {
	data, err := os.ReadFile(t.configPath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, t.config)
}

func (t *TUI) saveConfig() error {
	dir := filepath.Dir(t.configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(t.config)
	if err != nil {
		return err
	}

	return os.WriteFile(t.configPath, data, 0600)
}

func (t *TUI) Run() error {
	t.initPages()

	t.pages.SwitchToPage(t.startPage())

	return t.app.SetRoot(t.pages, true).EnableMouse(true).Run()
}

// startPage проверяет сохраненный токен через /auth/verify.
func (t *TUI) startPage() string {
	if t.config.Token == "" {
		return pageLogin
	}

	ctx, cancel := t.requestContext()
	defer cancel()

	if _, err := t.client.Verify(ctx); err != nil {
		t.clearSession()

		return pageLogin
	}

	t.refreshHeader()
	t.loadTasks("")

	return pageMain
}

func (t *TUI) initPages() {
	t.pages.AddPage(pageLogin, t.createLoginPage(), true, true)
	t.pages.AddPage(pageRegister, t.createRegisterPage(), true, false)
	t.pages.AddPage(pageMain, t.createMainPage(), true, false)
}

func (t *TUI) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// switchServer пересоздает клиент при смене адреса на формах входа.
func (t *TUI) switchServer(serverURL string) {
	t.config.ServerURL = serverURL
	t.client = NewClient(serverURL)
}

func formatDate(d time.Time) string {
	return d.UTC().Format(models.DateLayout)
}
