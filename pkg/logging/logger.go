/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging system for the boundary tools. Structured logrus logging with optional
timestamped log files, JSON/text/custom formats and retention of old files.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

const logFilePattern = "akaylee-boundary_*.log"

// LoggerConfig holds the configuration for the logger.
// An empty OutputDir disables file output.
type LoggerConfig struct {
	Level     LogLevel  `json:"level" mapstructure:"level" toml:"level"`
	Format    LogFormat `json:"format" mapstructure:"format" toml:"format"`
	OutputDir string    `json:"output_dir" mapstructure:"output_dir" toml:"output_dir"`
	MaxFiles  int       `json:"max_files" mapstructure:"max_files" toml:"max_files"`
	Timestamp bool      `json:"timestamp" mapstructure:"timestamp" toml:"timestamp"`
	Caller    bool      `json:"caller" mapstructure:"caller" toml:"caller"`
	Colors    bool      `json:"colors" mapstructure:"colors" toml:"colors"`
}

// DefaultLoggerConfig returns console-only custom formatting at info level
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		MaxFiles:  10,
		Timestamp: true,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger wraps a logrus logger with file management and fuzzing helpers
type Logger struct {
	config     LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	logPath    string
	startTime  time.Time
}

// NewLogger creates a logger writing to console (and to a log file when OutputDir is set)
func NewLogger(config LoggerConfig, console io.Writer) (*Logger, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}

	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(config.Caller)
	l.logger.SetOutput(console)
	l.setFormatter()

	if err := l.setupFileOutput(console); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

func (l *Logger) setFormatter() {
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		})
	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: prettyCaller,
		})
	default:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		})
	}
}

func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("akaylee-boundary_%s.log", l.startTime.Format("2006-01-02_15-04-05.000000"))
	path := filepath.Join(l.config.OutputDir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.logPath = path
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"log_file": path,
		"level":    l.config.Level,
		"format":   l.config.Format,
	}).Debug("Logging initialized")
	return nil
}

// cleanup removes the oldest log files beyond MaxFiles
func (l *Logger) cleanup() error {
	if l.config.OutputDir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(l.config.OutputDir, logFilePattern))
	if err != nil {
		return err
	}
	if len(files) <= l.config.MaxFiles {
		return nil
	}

	modTime := make(map[string]time.Time, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil {
			modTime[f] = st.ModTime()
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if modTime[files[i]].Equal(modTime[files[j]]) {
			return files[i] < files[j]
		}
		return modTime[files[i]].Before(modTime[files[j]])
	})
	for _, f := range files[:len(files)-l.config.MaxFiles] {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// LogExecution logs one harness invocation
func (l *Logger) LogExecution(inputID string, duration time.Duration, status int, kind string) {
	l.logger.WithFields(logrus.Fields{
		"input_id": inputID,
		"duration": duration,
		"status":   status,
		"kind":     kind,
	}).Debug("Input executed")
}

// LogCrash logs an intercepted harness failure
func (l *Logger) LogCrash(inputID string, artifact string) {
	l.logger.WithFields(logrus.Fields{
		"input_id": inputID,
		"artifact": artifact,
	}).Error("Crash detected")
}

// LogTimeout logs a harness call that exceeded the watchdog
func (l *Logger) LogTimeout(inputID string, limit time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"input_id": inputID,
		"limit":    limit,
	}).Error("Harness hung")
}

// LogStats logs a statistics snapshot
func (l *Logger) LogStats(executions, crashes, findings int64, execPerSec float64) {
	l.logger.WithFields(logrus.Fields{
		"executions":         executions,
		"crashes":            crashes,
		"findings":           findings,
		"executions_per_sec": execPerSec,
		"uptime":             time.Since(l.startTime),
	}).Info("Statistics update")
}

// Path returns the active log file, or "" when file output is disabled
func (l *Logger) Path() string { return l.logPath }

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger { return l.logger }

// Close closes the log file and prunes old ones
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		if err := l.fileHandle.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		l.fileHandle = nil
	}
	if err := l.cleanup(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}
