package logger

import (
	"sync"
)

// Log levels accepted in config.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats accepted in config.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process logger. Only the first call configures it;
// later calls return the same instance regardless of arguments.
func Get(level, format string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, format)
	})
	return globalLogger
}
