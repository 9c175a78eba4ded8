package logger

import (
	"context"
	"log/slog"
)

// nopHandler drops every record.
type nopHandler struct{}

func (h nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h nopHandler) WithGroup(string) slog.Handler             { return h }

// Nop returns a logger that discards everything. Libraries use it as the
// default when the caller supplies no logger.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}
