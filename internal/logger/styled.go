package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/thushan/runstatus/theme"
)

// StyledLogger wraps slog.Logger with theme-aware formatting
type StyledLogger struct {
	logger *slog.Logger
	Theme  *theme.Theme
}

func NewStyledLogger(logger *slog.Logger, theme *theme.Theme) *StyledLogger {
	return &StyledLogger{
		logger: logger,
		Theme:  theme,
	}
}

func (sl *StyledLogger) Debug(msg string, args ...any) {
	sl.logger.Debug(msg, args...)
}

func (sl *StyledLogger) Info(msg string, args ...any) {
	sl.logger.Info(msg, args...)
}

func (sl *StyledLogger) Warn(msg string, args ...any) {
	sl.logger.Warn(msg, args...)
}

func (sl *StyledLogger) Error(msg string, args ...any) {
	sl.logger.Error(msg, args...)
}

func (sl *StyledLogger) InfoWithCount(msg string, count int, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.Style{sl.Theme.Counts}.Sprint("(", count, ")"))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) InfoWithResource(msg string, resource string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.Style{sl.Theme.Resource}.Sprint(resource))
	sl.logger.Info(styledMsg, args...)
}

func (sl *StyledLogger) DebugWithResource(msg string, resource string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.Style{sl.Theme.Resource}.Sprint(resource))
	sl.logger.Debug(styledMsg, args...)
}

func (sl *StyledLogger) WarnWithResource(msg string, resource string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.Style{sl.Theme.Resource}.Sprint(resource))
	sl.logger.Warn(styledMsg, args...)
}

func (sl *StyledLogger) ErrorWithResource(msg string, resource string, args ...any) {
	styledMsg := fmt.Sprintf("%s %s", msg, pterm.Style{sl.Theme.Resource}.Sprint(resource))
	sl.logger.Error(styledMsg, args...)
}

func (sl *StyledLogger) WithRequestID(requestID string) *StyledLogger {
	return sl.With("request_id", requestID)
}

func (sl *StyledLogger) With(args ...any) *StyledLogger {
	return &StyledLogger{
		logger: sl.logger.With(args...),
		Theme:  sl.Theme,
	}
}

// DebugDetailed logs only to the log file when file output is enabled
func (sl *StyledLogger) DebugDetailed(msg string, args ...any) {
	ctx := context.WithValue(context.Background(), DefaultDetailedCookie, true)
	sl.logger.DebugContext(ctx, msg, args...)
}

func NewWithTheme(cfg *Config) (*slog.Logger, *StyledLogger, func(), error) {
	logger, cleanup, err := New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	styledLogger := NewStyledLogger(logger, theme.GetTheme(cfg.Theme))

	return logger, styledLogger, cleanup, nil
}

// NewDiscard returns a logger that drops everything, handy in tests
func NewDiscard() *StyledLogger {
	return NewStyledLogger(slog.New(slog.DiscardHandler), theme.Default())
}
