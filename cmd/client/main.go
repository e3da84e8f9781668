package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gerfey/planit/internal/client"
)

const (
	configDir      = ".planit"
	configFileName = "session.json"
)

func main() {
	configPath, err := getConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка определения пути конфигурации: %v\n", err)
		os.Exit(1)
	}

	if errTUI := runTUI(configPath); errTUI != nil {
		fmt.Fprintf(os.Stderr, "Ошибка при работе приложения: %v\n", errTUI)
		os.Exit(1)
	}
}

func runTUI(configPath string) error {
	if os.Getenv("TERM") == "" {
		if err := os.Setenv("TERM", "xterm-256color"); err != nil {
			return fmt.Errorf("ошибка установки переменной окружения TERM: %w", err)
		}
	}

	tui, err := client.NewTUI(configPath)
	if err != nil {
		return fmt.Errorf("ошибка инициализации TUI: %w", err)
	}

	if runErr := tui.Run(); runErr != nil {
		return fmt.Errorf("ошибка запуска TUI: %w", runErr)
	}

	return nil
}

// PLANIT_CONFIG позволяет держать несколько сессий на одной машине.
func getConfigPath() (string, error) {
	if path := os.Getenv("PLANIT_CONFIG"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("ошибка определения домашней директории: %w", err)
	}

	return filepath.Join(homeDir, configDir, configFileName), nil
}
