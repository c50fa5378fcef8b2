// Package logger provides the process wide zap logger.
//
// Components get a child logger with Named so every line carries the
// component (and for thermostats the device) it came from.
package logger

import "sync"

// Level names accepted in the log.level config field.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the singleton logger. Only the level of the first call is used,
// later calls get the same instance whatever level they ask for.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}
