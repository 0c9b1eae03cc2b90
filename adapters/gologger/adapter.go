package gologger

import (
	"io"
	"os"

	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// NewConsoleLogger writes key=value records to w. Only warnings and errors
// are emitted unless debug is set.
func NewConsoleLogger(w io.Writer, debug bool) *glog.BaseLogger {
	if w == nil {
		w = os.Stderr
	}
	level := glog.Warn
	if debug {
		level = glog.Debug
	}
	return glog.NewLogger(
		glog.WithWriter(w),
		glog.WithLevel(level),
		glog.WithLoggerTypeConsole(),
	)
}

var (
	_ glog.Logger         = (*glog.BaseLogger)(nil)
	_ glog.FieldsLogger   = (*glog.BaseLogger)(nil)
	_ glog.LoggerProvider = (*glog.BaseLogger)(nil)
)
