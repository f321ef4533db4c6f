package testutils

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// LogChannel is a channel implementing logrus.Hook. Entries are dropped once the buffer is full.
type LogChannel chan *logrus.Entry

// NewLogChannel creates a new LogChannel.
func NewLogChannel(bufSize int) LogChannel {
	return make(chan *logrus.Entry, bufSize)
}

// CaptureLogs installs a LogChannel on the standard logger for the rest of the test.
func CaptureLogs(t *testing.T, bufSize int) LogChannel {
	lc := NewLogChannel(bufSize)
	std := logrus.StandardLogger()
	saved := std.ReplaceHooks(make(logrus.LevelHooks))
	std.AddHook(lc)
	t.Cleanup(func() { std.ReplaceHooks(saved) })
	return lc
}

// Fire implements the logrus.Hook interface.
func (lc LogChannel) Fire(entry *logrus.Entry) error {
	select {
	case lc <- entry:
	default:
	}
	return nil
}

// Levels implements the logrus.Hook interface.
func (lc LogChannel) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Await waits for an entry at the given level whose message contains msg.
func (lc LogChannel) Await(t *testing.T, level logrus.Level, msg string) *logrus.Entry {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case entry := <-lc:
			if entry.Level == level && strings.Contains(entry.Message, msg) {
				return entry
			}
		case <-timeout:
			t.Fatalf("no %s log containing %q", level, msg)
			return nil
		}
	}
}
