package logging

import (
	"fmt"
	"log"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
)

var currentLevel = InfoLevel

// SetLevel sets the minimum level of criticality for messages to be emitted
func SetLevel(level int) {
	currentLevel = level
}

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "TRACE"
	}
}

func logf(level int, format string, args ...interface{}) {
	if level < currentLevel {
		return
	}
	log.Printf("[%s] %s", LogLevelToString(level), fmt.Sprintf(format, args...))
}

// Trace logs a trace message
func Trace(format string, args ...interface{}) {
	logf(TraceLevel, format, args...)
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	logf(DebugLevel, format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	logf(InfoLevel, format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	logf(WarnLevel, format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	logf(ErrorLevel, format, args...)
}
