package logging

import (
	"fmt"
	"log"
	"maps"
	"os"
	"sort"
	"strings"
)

// DefaultLogger is a logger implementation using Go's standard log package.
// Debug/Info -> stdout, Warn/Error -> stderr.
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        Level
	fields       Fields
}

// NewDefaultLogger creates a new default logger at Info level
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		stdoutLogger: log.New(os.Stdout, "", log.LstdFlags),
		stderrLogger: log.New(os.Stderr, "", log.LstdFlags),
		level:        InfoLevel,
		fields:       make(Fields),
	}
}

// SetLevel sets the minimum log level
func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// WithFields returns a logger with preset fields merged over the existing ones
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(d.fields)+len(fields))
	maps.Copy(merged, d.fields)
	maps.Copy(merged, fields)
	return &DefaultLogger{
		stdoutLogger: d.stdoutLogger,
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       merged,
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	if d.level > DebugLevel {
		return
	}
	d.stdoutLogger.Printf("DEBUG %s%s", msg, d.formatFields(fields))
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	if d.level > InfoLevel {
		return
	}
	d.stdoutLogger.Printf("INFO %s%s", msg, d.formatFields(fields))
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	if d.level > WarnLevel {
		return
	}
	d.stderrLogger.Printf("WARN %s%s", msg, d.formatFields(fields))
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	if d.level > ErrorLevel {
		return
	}
	if err != nil {
		d.stderrLogger.Printf("ERROR %s: %v%s", msg, err, d.formatFields(fields))
		return
	}
	d.stderrLogger.Printf("ERROR %s%s", msg, d.formatFields(fields))
}

// formatFields renders preset and call-site fields as sorted key=value pairs
func (d *DefaultLogger) formatFields(fields []Fields) string {
	merged := make(Fields, len(d.fields))
	maps.Copy(merged, d.fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}
	if len(merged) == 0 {
		return ""
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(" %s=%v", k, merged[k]))
	}
	return sb.String()
}
