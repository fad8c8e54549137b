package config

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// LogWriter is the writer shared by application and database logs.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "task-review-api.log")
}

// InitLogging configures logrus with JSON output going to both stdout and
// the log file. Returns the open file so the caller can close it on exit.
func InitLogging() *os.File {
	log.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime: "@timestamp",
			log.FieldKeyMsg:  "message",
		},
	})
	log.SetLevel(log.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}

	if err := os.MkdirAll(filepath.Dir(LogFilePath()), os.ModePerm); err != nil {
		log.WithError(err).Warn("failed to create logs directory")
		log.SetOutput(LogWriter)
		return nil
	}

	logFile, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.WithError(err).Warn("failed to open log file, logging to stdout only")
		log.SetOutput(LogWriter)
		return nil
	}

	LogWriter = io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(LogWriter)
	return logFile
}
