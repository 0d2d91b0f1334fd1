package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thushan/runstatus/internal/util"
	"github.com/thushan/runstatus/theme"
)

type Config struct {
	// Output receives terminal logs, defaults to stderr so rendered
	// results on stdout stay pipeable
	Output     io.Writer
	Level      string
	LogDir     string
	Theme      string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	FileOutput bool
	// Quiet suppresses terminal logs, used while the interactive view owns the screen
	Quiet bool
}

const (
	DefaultLogOutputName  = "runstatus.log"
	DefaultDetailedCookie = "detailed"
)

var ptermLevels = map[slog.Level]pterm.LogLevel{
	slog.LevelDebug: pterm.LogLevelTrace,
	slog.LevelInfo:  pterm.LogLevelInfo,
	slog.LevelWarn:  pterm.LogLevelWarn,
	slog.LevelError: pterm.LogLevelError,
}

func New(cfg *Config) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Quiet {
		out = io.Discard
	}

	terminal := createTerminalHandler(out, level, theme.GetTheme(cfg.Theme))
	if !cfg.FileOutput {
		return slog.New(terminal), func() {}, nil
	}

	file, closeFile, err := createFileHandler(cfg, level)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(&splitHandler{terminal: terminal, file: file}), closeFile, nil
}

func createTerminalHandler(out io.Writer, level slog.Level, appTheme *theme.Theme) slog.Handler {
	if out != io.Discard && util.ShouldUseColors() {
		plevel, ok := ptermLevels[level]
		if !ok {
			plevel = pterm.LogLevelInfo
		}
		plogger := pterm.DefaultLogger.
			WithLevel(plevel).
			WithWriter(out).
			WithFormatter(pterm.LogFormatterColorful).
			WithKeyStyles(map[string]pterm.Style{
				"level": *appTheme.Info,
				"msg":   *appTheme.Info,
				"time":  *appTheme.Muted,
			})
		return pterm.NewSlogHandler(plogger)
	}
	return newJSONHandler(out, level)
}

func createFileHandler(cfg *Config, level slog.Level) (slog.Handler, func(), error) {
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %s: %w", cfg.LogDir, err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, DefaultLogOutputName),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   true,
	}
	return newJSONHandler(rotator, level), func() { _ = rotator.Close() }, nil
}

func newJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: plainAttr})
}

// plainAttr keeps JSON records free of ANSI styling and nested values
func plainAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.String("timestamp", a.Value.Time().Format("2006-01-02 15:04:05"))
	}
	switch a.Value.Kind() {
	case slog.KindString:
		if str := a.Value.String(); strings.ContainsRune(str, '\x1b') {
			return slog.String(a.Key, stripAnsiCodes(str))
		}
	case slog.KindAny:
		return slog.String(a.Key, fmt.Sprint(a.Value.Any()))
	}
	return a
}

// splitHandler fans records out to the terminal and the rotating file.
// Records logged with the detailed cookie only reach the file.
type splitHandler struct {
	terminal slog.Handler
	file     slog.Handler
}

func (h *splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.terminal.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *splitHandler) Handle(ctx context.Context, record slog.Record) error {
	detailed, _ := ctx.Value(DefaultDetailedCookie).(bool)
	if !detailed && h.terminal.Enabled(ctx, record.Level) {
		if err := h.terminal.Handle(ctx, record); err != nil {
			return err
		}
	}
	if h.file.Enabled(ctx, record.Level) {
		return h.file.Handle(ctx, record)
	}
	return nil
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{terminal: h.terminal.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{terminal: h.terminal.WithGroup(name), file: h.file.WithGroup(name)}
}

// parseLevel accepts slog's level names plus "warning", falling back to info
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
