// Package logging configures the charmbracelet/log loggers napcheck uses to
// report on its own progress. Lint findings are output, not log entries,
// and never pass through here.
package logging

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var current atomic.Pointer[log.Logger]

// ParseLevel maps a level name to a log level, ignoring case. "warning" is
// accepted because diagnostic severities spell it that way. Unknown names
// mean info.
func ParseLevel(name string) log.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return log.WarnLevel
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// New returns a stderr logger at the named level.
func New(level string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: ParseLevel(level)})
}

// NewInteractive returns a stdout logger for command output meant for the
// user, such as "created .napcheck.yml". Info entries carry no level label.
func NewInteractive() *log.Logger {
	logger := log.NewWithOptions(os.Stdout, log.Options{Level: log.InfoLevel})

	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].SetString("")
	logger.SetStyles(styles)
	return logger
}

// Default returns the process-wide logger, creating an info level one on
// first use.
func Default() *log.Logger {
	if logger := current.Load(); logger != nil {
		return logger
	}
	current.CompareAndSwap(nil, New("info"))
	return current.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	current.Store(logger)
}

// SetLevel changes the level of the process-wide logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
