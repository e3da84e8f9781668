package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"
)

//go:generate mockgen -destination=mock_logger.go -package=logger github.com/gerfey/planit/pkg/logger Logger

// Level представляет уровень логирования
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"fatal":   LevelFatal,
}

// String возвращает строковое представление уровня логирования
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel преобразует значение из конфигурации в Level. Неизвестные значения дают LevelInfo.
func ParseLevel(value string) Level {
	if lvl, ok := levelNames[strings.TrimSpace(strings.ToLower(value))]; ok {
		return lvl
	}

	return LevelInfo
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

type logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	prefix string
	exit   func(code int)
}

func NewLogger(out io.Writer, level Level, prefix string) Logger {
	return &logger{
		out:    out,
		level:  level,
		prefix: prefix,
		exit:   os.Exit,
	}
}

// DefaultLogger возвращает логгер по умолчанию
func DefaultLogger() Logger {
	return NewLogger(os.Stdout, LevelInfo, "PlanIt")
}

func (l *logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

func (l *logger) Infof(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *logger) Warnf(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *logger) Errorf(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Fatalf логирует сообщение с уровнем Fatal и завершает программу
func (l *logger) Fatalf(format string, args ...any) {
	l.log(LevelFatal, format, args...)
	l.exit(1)
}

func (l *logger) log(level Level, format string, args ...any) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "???"
		line = 0
	}

	msg := fmt.Sprintf(
		"%s [%s] %s:%d %s: %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		level.String(),
		path.Base(file),
		line,
		l.prefix,
		fmt.Sprintf(format, args...),
	)

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprint(l.out, msg)
}
