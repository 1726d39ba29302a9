package logger

import (
	"sync"

	"gitlab.com/otp-2025.net/internal/adapter/logging"
	"gitlab.com/otp-2025.net/internal/config"
	"gitlab.com/otp-2025.net/internal/core/ports/primary"
)

var (
	mu     sync.RWMutex
	Logger primary.Logger = logging.NewNopLogger()
)

// Init replaces the process-wide logger with one built from cfg
func Init(cfg *config.LogConfig) error {
	l, err := logging.NewZapLogger(cfg)
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

func Set(l primary.Logger) {
	mu.Lock()
	defer mu.Unlock()
	Logger = l
}

func L() primary.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return Logger
}

func Info(msg string, args ...interface{}) {
	L().Info(msg, args...)
}
