package config

import (
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Fields are extra top-level keys for structured logs.
type Fields map[string]any

// Logger is the process-wide logger. It logs at info until InitLogger runs.
var Logger = NewLogger("info")

// InitLogger replaces Logger with one at the configured level.
func InitLogger(cfg LoggingConfig) {
	level := strings.ToLower(cfg.Level)
	if level == "" {
		level = "info"
	}
	Logger = NewLogger(level)
}

// NewLogger builds a JSON console logger that emits level and above.
func NewLogger(level string) *slog.Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

func withServiceName(fields Fields) Fields {
	if fields == nil {
		fields = Fields{}
	}
	if _, ok := fields["service_name"]; !ok {
		if sn := os.Getenv("SERVICE_NAME"); sn != "" {
			fields["service_name"] = sn
		}
	}
	return fields
}

// InfoWithFields logs msg with fields at the top level of the JSON line.
func InfoWithFields(msg string, fields Fields) {
	Logger.WithFields(slog.M(withServiceName(fields))).Info(msg)
}

func WarnWithFields(msg string, fields Fields) {
	Logger.WithFields(slog.M(withServiceName(fields))).Warn(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	Logger.WithFields(slog.M(withServiceName(fields))).Error(msg)
}
