package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

var logger *slog.Logger

// ComponentTintHandler wraps tint.Handler to format component attributes as bracketed prefixes
type ComponentTintHandler struct {
	Handler slog.Handler
}

// Handle formats log records, extracting component attributes and formatting them as bracketed prefixes
func (h *ComponentTintHandler) Handle(ctx context.Context, r slog.Record) error {
	var component string
	var filteredAttrs []slog.Attr

	// Extract component attribute and filter out from other attributes
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = a.Value.String()
		} else {
			filteredAttrs = append(filteredAttrs, a)
		}
		return true
	})

	// Create new record with modified message if component is present
	if component != "" {
		componentUpper := strings.ToUpper(strings.ReplaceAll(component, "-", " "))
		newMessage := "[" + componentUpper + "] " + r.Message

		newRecord := slog.NewRecord(r.Time, r.Level, newMessage, r.PC)
		for _, attr := range filteredAttrs {
			newRecord.AddAttrs(attr)
		}

		return h.Handler.Handle(ctx, newRecord)
	}

	return h.Handler.Handle(ctx, r)
}

// Enabled delegates to the wrapped handler
func (h *ComponentTintHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Handler.Enabled(ctx, level)
}

// WithAttrs delegates to the wrapped handler
func (h *ComponentTintHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ComponentTintHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup delegates to the wrapped handler
func (h *ComponentTintHandler) WithGroup(name string) slog.Handler {
	return &ComponentTintHandler{Handler: h.Handler.WithGroup(name)}
}

func init() {
	setupLogger()
}

// setupLogger initializes the structured logger with a tint handler writing to
// stdout. The Manager's CLI surface consults neither flags nor environment
// variables (level and destination are fixed), so unlike most services built
// from this stack there is no LOG_LEVEL/LOG_FORMAT knob.
func setupLogger() {
	handler := &ComponentTintHandler{
		Handler: tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}),
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// GetLogger returns the configured structured logger
func GetLogger() *slog.Logger {
	return logger
}

// Info logs an info message with optional key-value pairs
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// InfoWithComponent logs an info message with a component attribute
func InfoWithComponent(component, msg string, args ...any) {
	logger.Info(msg, append([]any{"component", component}, args...)...)
}

// WarnWithComponent logs a warning message with a component attribute
func WarnWithComponent(component, msg string, args ...any) {
	logger.Warn(msg, append([]any{"component", component}, args...)...)
}

// ErrorWithComponent logs an error message with a component attribute
func ErrorWithComponent(component, msg string, args ...any) {
	logger.Error(msg, append([]any{"component", component}, args...)...)
}

// ComponentLogger returns a logger pre-configured with a component attribute
func ComponentLogger(component string) *slog.Logger {
	return logger.With("component", component)
}
