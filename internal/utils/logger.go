package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It logs at info as text until
// InitLogger runs.
var Logger = logrus.New()

// Log formats accepted in LOG_FORMAT.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// serviceFieldHook stamps every entry with the service that wrote it.
type serviceFieldHook struct {
	service string
}

func (h *serviceFieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceFieldHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}

// InitLogger configures Logger from LOG_LEVEL and LOG_FORMAT.
func InitLogger(appName string) {
	configureLogger(Logger, os.Stdout, appName, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

func configureLogger(l *logrus.Logger, out io.Writer, appName, levelName, format string) {
	l.SetOutput(out)

	levelName = strings.ToLower(strings.TrimSpace(levelName))
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		l.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", levelName)
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case LogFormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	case "", LogFormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.Warnf("Invalid LOG_FORMAT '%s', defaulting to text", format)
	}

	l.ReplaceHooks(logrus.LevelHooks{})
	l.AddHook(&serviceFieldHook{service: appName})
}
