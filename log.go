package aspen

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	pkgLogger atomic.Pointer[slog.Logger]
	// logLevel controls the default logger. Debug mode lowers it.
	logLevel slog.LevelVar
)

func init() {
	logLevel.Set(slog.LevelWarn)
	pkgLogger.Store(newDefaultLogger(os.Stderr))
}

func newDefaultLogger(w io.Writer) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: &logLevel})
	return slog.New(h).With("component", "aspen")
}

// SetLogger replaces the package logger. Pass nil to restore the default,
// which writes warnings and errors to stderr.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newDefaultLogger(os.Stderr)
	}
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	return pkgLogger.Load()
}
