package logger

import (
	"io"
	"os"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
	"github.com/charmbracelet/log"
)

var logger *log.Logger
var logFile io.Closer

// Init opens the log file named by log.file. verbose forces debug level.
func Init(verbose bool) {
	level, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	if f, err := os.OpenFile(config.GetString("log.file"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600); err == nil {
		w = f
		logFile = f
	}

	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "chatctl",
	})
	logger.SetLevel(level)
}

// Close releases the log file
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
