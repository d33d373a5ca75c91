package logging

import (
	"fmt"
	"os"
	"sync"
)

// Компоненты, которые пишут в собственные логгеры
const (
	ComponentWorld = "world"
	ComponentAPI   = "api"
)

// LoggerManager раздаёт логгеры компонентов и задаёт им общий уровень консоли
type LoggerManager struct {
	mu           sync.Mutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager()
	})
	return globalManager
}

func newLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers:      make(map[string]*Logger),
		consoleLevel: INFO,
	}
}

// Logger возвращает логгер компонента. Если файл лога открыть не удалось,
// компонент пишет только в консоль.
func (lm *LoggerManager) Logger(component string) *Logger {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, ok := lm.loggers[component]; ok {
		return logger
	}

	logger, err := NewLogger(component)
	if err != nil {
		Warn("Логгер %s без файла: %v", component, err)
		logger = NewWriterLogger(component, os.Stdout, lm.consoleLevel)
	}
	logger.minConsoleLevel = lm.consoleLevel

	lm.loggers[component] = logger
	return logger
}

// SetConsoleLevel задаёт уровень консоли для созданных и будущих логгеров.
// Вызывается при старте, до того как компоненты начнут писать.
func (lm *LoggerManager) SetConsoleLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.consoleLevel = level
	for _, logger := range lm.loggers {
		logger.minConsoleLevel = level
	}
}

// CloseAll закрывает все логгеры и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", component, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	return lastErr
}

func GetWorldLogger() *Logger {
	return GetLoggerManager().Logger(ComponentWorld)
}

func GetAPILogger() *Logger {
	return GetLoggerManager().Logger(ComponentAPI)
}
