package logging

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
)

// Config holds configuration options for the toolbox logger.
type Config struct {
	// Level is the minimum level to log ("debug", "info", "warn", "error", ...).
	// Empty means "info".
	Level string

	// ForceColors enables ANSI colors even when the output is not a terminal.
	ForceColors bool

	// DisableColors disables ANSI colors entirely. Takes precedence over ForceColors.
	DisableColors bool

	// Output is the destination for log lines. Nil keeps the current output.
	Output io.Writer
}

var (
	mu     sync.Mutex
	logger = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// Logger returns the shared toolbox logger. Packages in repgo log through
// this instance so one Setup call configures them all.
func Logger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// WithComponent returns an entry tagged with the given component name.
func WithComponent(name string) *logrus.Entry {
	return Logger().WithField("component", name)
}

// Setup configures the shared logger and returns it. An unknown level name
// is a configuration error; nothing is changed in that case.
func Setup(cfg Config) (*logrus.Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, rgerrors.NewValidationError("logging", "level", cfg.Level, "unknown level").
			WithHint("use one of: panic, fatal, error, warn, info, debug, trace")
	}

	mu.Lock()
	defer mu.Unlock()

	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   cfg.ForceColors,
		DisableColors: cfg.DisableColors,
	})
	if cfg.Output != nil {
		logger.SetOutput(cfg.Output)
	}

	return logger, nil
}
