// Package obs is the engine's logging and run-correlation layer: a
// package-level commonlog logger and a UUID run-id generator.
package obs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const loggerName = "vibeswift"

var (
	once      sync.Once
	pkgLogger commonlog.Logger
)

// Logger returns the package-wide logger, configuring the simple
// commonlog backend on first use.
func Logger() commonlog.Logger {
	once.Do(func() {
		commonlog.Configure(1, nil)
		pkgLogger = commonlog.GetLogger(loggerName)
	})
	return pkgLogger
}

// NewRunID returns a fresh identifier correlating one
// compile_and_run or build_preview invocation across its log lines.
func NewRunID() string {
	return uuid.NewString()
}

// FormatDuration renders d for a log line. go-humanize formats byte
// counts and relative calendar times but has no raw time.Duration
// formatter, so the engine uses this instead.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}
