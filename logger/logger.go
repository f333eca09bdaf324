package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
)

var (
	infoTag  = color.New(color.FgCyan, color.Bold).SprintFunc()
	warnTag  = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorTag = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Logger writes leveled lines to stdout and, optionally, to a log file.
// Lines look like "2024/01/02 15:04:05 - INFO - message".
type Logger struct {
	out  *log.Logger
	file *os.File
}

// New returns a Logger writing to stdout. If logFile is not empty the
// lines are also appended to that file (parent directories are created).
func New(logFile string) (*Logger, error) {
	var w io.Writer = os.Stdout
	var f *os.File
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, err
		}
		var err error
		f, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	return &Logger{out: log.New(w, "", 0), file: f}, nil
}

// NewWriter returns a Logger writing to w only. Colors follow fatih/color's
// terminal detection, so plain text is written to non-terminals.
func NewWriter(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", 0)}
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.write(infoTag("INFO"), msg)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...any) {
	l.write(infoTag("INFO"), fmt.Sprintf(format, args...))
}

// Warn logs something that works but is probably not what the operator wants.
func (l *Logger) Warn(msg string) {
	l.write(warnTag("WARN"), msg)
}

// Error logs msg followed by err. A nil err logs msg alone.
func (l *Logger) Error(msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.write(errorTag("ERROR"), msg)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) write(level, msg string) {
	l.out.Printf("%s - %s - %s", time.Now().Format("2006/01/02 15:04:05"), level, msg)
}
