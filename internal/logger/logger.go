package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
	"github.com/rs/zerolog"
)

// Colors per log level, same palette the console has always used:
// green for info, bright magenta for warnings, red for errors, cyan for debug.
var (
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgHiMagenta)
	errorColor = color.New(color.FgRed)
	debugColor = color.New(color.FgCyan)
)

var (
	// out is where console messages go. Tests swap it with SetOutput.
	out io.Writer = os.Stdout

	// debugEnabled gates Debug output, toggled by Init.
	debugEnabled bool

	// fileLog mirrors every console message into a JSON log file once InitFile succeeds.
	fileLog = zerolog.Nop()
)

// Init initializes the logger package, specifically enabling or disabling debug logging.
// When disabled, Debug silently ignores its arguments.
func Init(enableDebug bool) {
	debugEnabled = enableDebug
}

// InitFile opens (or creates) the log file at path and mirrors every message into it
// as structured JSON. The returned func closes the file.
func InitFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return func() {}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return func() {}, fmt.Errorf("failed to open log file: %w", err)
	}
	fileLog = zerolog.New(f).With().Timestamp().Logger()
	return func() {
		fileLog = zerolog.Nop()
		_ = f.Close()
	}, nil
}

// SetOutput redirects console output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Output returns the current console writer, for callers that render tables or banners.
func Output() io.Writer {
	return out
}

// DebugEnabled reports whether --debug is active.
func DebugEnabled() bool {
	return debugEnabled
}

// Info logs informational messages in green.
func Info(format string, a ...any) {
	emit(infoColor, zerolog.InfoLevel, format, a...)
}

// Warn logs warning messages in bright magenta.
func Warn(format string, a ...any) {
	emit(warnColor, zerolog.WarnLevel, format, a...)
}

// Error logs error messages in red.
func Error(format string, a ...any) {
	emit(errorColor, zerolog.ErrorLevel, format, a...)
}

// Debug logs debug messages in cyan if enabled, otherwise is a no-op.
func Debug(format string, a ...any) {
	if !debugEnabled {
		return
	}
	emit(debugColor, zerolog.DebugLevel, format, a...)
}

func emit(c *color.Color, level zerolog.Level, format string, a ...any) {
	_, _ = c.Fprintf(out, format, a...)
	fileLog.WithLevel(level).Msg(stripTag(fmt.Sprintf(format, a...)))
}

// tags are the console prefixes callers put in front of messages.
var tags = []string{"[INFO] ", "[WARN] ", "[ERROR] ", "[DEBUG] ", "[DRY-RUN] "}

// stripTag drops the leading "[INFO] " style tag, the file log carries the level itself.
func stripTag(msg string) string {
	msg = strings.TrimSpace(msg)
	for _, tag := range tags {
		if rest, ok := strings.CutPrefix(msg, tag); ok {
			return rest
		}
	}
	return msg
}
