package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level names accepted by --log-level, mapped onto logrus.
// verbose has no logrus counterpart and shares Debug.
var levelNames = map[string]logrus.Level{
	"error":   logrus.ErrorLevel,
	"warn":    logrus.WarnLevel,
	"info":    logrus.InfoLevel,
	"verbose": logrus.DebugLevel,
	"debug":   logrus.DebugLevel,
	"silly":   logrus.TraceLevel,
}

func parseLevel(name string) (logrus.Level, error) {
	if lvl, ok := levelNames[name]; ok {
		return lvl, nil
	}
	return logrus.ParseLevel(name)
}

// fileHook mirrors every entry into an append-mode log file without colors.
type fileHook struct {
	mu        sync.Mutex
	w         io.Writer
	formatter logrus.Formatter
}

func newFileHook(w io.Writer) *fileHook {
	return &fileHook{
		w: w,
		formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		},
	}
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}

// newLogger builds the run's logger. Console output goes to console; when
// logPath is non-empty every entry is also appended to that file. debug raises
// both sinks to the most detailed level.
func newLogger(console io.Writer, logPath string, debug bool) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetOutput(console)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.TimeOnly,
	})
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.TraceLevel)
	}

	if logPath == "" {
		return log, io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	log.AddHook(newFileHook(file))
	return log, file, nil
}
