package logger

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultConfig returns the default logging configuration: colored text at info level.
func DefaultConfig() *Config {
	return &Config{
		Level: logrus.InfoLevel.String(),
		Color: true,
	}
}

// Config selects the level and format of the panel's logs. Logs always go to stderr so that
// roster output on stdout stays clean.
type Config struct {
	Level string `json:"level"`
	Color bool   `json:"color"`
	JSON  bool   `json:"json"`
}

// Validate implements the check.Validatable interface.
func (c Config) Validate() []error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return []error{err}
	}
	return nil
}

// Formatter returns the logrus formatter the configuration asks for.
func (c Config) Formatter() logrus.Formatter {
	if c.JSON {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   c.Color,
		DisableColors: !c.Color,
	}
}

// SetLogrus configures the standard logrus logger.
func SetLogrus(c Config) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.Level)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(c.Formatter())
	return nil
}
