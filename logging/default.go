package logging

import (
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// DefaultLogger writes one line per entry:
//
//	2024/01/02 15:04:05 [INFO] message key=value key=value
//
// Everything goes to a single writer (stderr by default) so that command
// output on stdout stays machine readable. Warnings and errors are colored
// when that writer is a terminal.
type DefaultLogger struct {
	out       *log.Logger
	level     Level
	fields    Fields
	useColors bool
}

// NewDefaultLogger creates an Info level logger on stderr
func NewDefaultLogger() *DefaultLogger {
	l := NewDefaultLoggerWithWriter(os.Stderr)
	l.useColors = isTerminal(os.Stderr)
	return l
}

// NewDefaultLoggerWithWriter creates an uncolored Info level logger on w
func NewDefaultLoggerWithWriter(w io.Writer) *DefaultLogger {
	return &DefaultLogger{
		out:    log.New(w, "", log.LstdFlags),
		level:  InfoLevel,
		fields: Fields{},
	}
}

func isTerminal(f *os.File) bool {
	if fileInfo, _ := f.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (d *DefaultLogger) format(level Level, err error, msg string, fields []Fields) string {
	all := maps.Clone(d.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}

	// Sorted keys keep lines stable between runs
	for _, k := range slices.Sorted(maps.Keys(all)) {
		fmt.Fprintf(&b, " %s=%v", k, all[k])
	}

	if d.useColors {
		switch level {
		case WarnLevel:
			return colorYellow + b.String() + colorReset
		case ErrorLevel:
			return colorRed + b.String() + colorReset
		}
	}
	return b.String()
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields []Fields) {
	if level < d.level {
		return
	}
	d.out.Println(d.format(level, err, msg, fields))
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields)
}

// WithFields shares the underlying writer; the level is copied, not linked
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = maps.Clone(d.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
