// Package logging provides the leveled logger used across the server.
package logging

import (
	"fmt"

	"github.com/dekarrin/jellog"
)

// Logger is an object that is used to log messages. Use New to create one.
type Logger interface {
	// Debug writes a message to the log at Debug level.
	Debug(string)

	// Debugf writes a formatted message to the log at Debug level.
	Debugf(string, ...interface{})

	// Error writes a message to the log at Error level.
	Error(string)

	// Errorf writes a formatted message to the log at Error level.
	Errorf(string, ...interface{})

	// Info writes a message to the log at Info level.
	Info(string)

	// Infof writes a formatted message to the log at Info level.
	Infof(string, ...interface{})

	// Warn writes a message to the log at Warn level.
	Warn(string)

	// Warnf writes a formatted message to the log at Warn level.
	Warnf(string, ...interface{})
}

// New creates a new logger. If filename is blank, it will not log to disk, only
// stderr, and the stderr logger will be configured at trace level instead of
// info level.
func New(filename string) (Logger, error) {
	var logOut *jellog.FileHandler
	var err error
	if filename != "" {
		logOut, err = jellog.OpenFile(filename, nil)
		if err != nil {
			return nil, fmt.Errorf("open logfile: %q: %w", filename, err)
		}
	}
	j := jellog.New(jellog.Defaults[string]().WithComponent("field-mates"))

	if filename != "" {
		j.AddHandler(jellog.LvTrace, logOut)
		j.AddHandler(jellog.LvInfo, jellog.NewStderrHandler(nil))
	} else {
		j.AddHandler(jellog.LvTrace, jellog.NewStderrHandler(nil))
	}

	return jellogLogger{j: j}, nil
}

// OrNoOp returns l, or a NoOpLogger if l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}

// NoOpLogger is a logger that performs no operations.
type NoOpLogger struct{}

func (log NoOpLogger) Debug(msg string)                    {}
func (log NoOpLogger) Warn(msg string)                     {}
func (log NoOpLogger) Info(msg string)                     {}
func (log NoOpLogger) Error(msg string)                    {}
func (log NoOpLogger) Debugf(msg string, a ...interface{}) {}
func (log NoOpLogger) Warnf(msg string, a ...interface{})  {}
func (log NoOpLogger) Infof(msg string, a ...interface{})  {}
func (log NoOpLogger) Errorf(msg string, a ...interface{}) {}

type jellogLogger struct {
	j jellog.Logger[string]
}

func (log jellogLogger) Debug(msg string) {
	log.j.Debug(msg)
}

func (log jellogLogger) Debugf(msg string, a ...interface{}) {
	log.j.Debugf(msg, a...)
}

func (log jellogLogger) Warn(msg string) {
	log.j.Warn(msg)
}

func (log jellogLogger) Warnf(msg string, a ...interface{}) {
	log.j.Warnf(msg, a...)
}

func (log jellogLogger) Info(msg string) {
	log.j.Info(msg)
}

func (log jellogLogger) Infof(msg string, a ...interface{}) {
	log.j.Infof(msg, a...)
}

func (log jellogLogger) Error(msg string) {
	log.j.Error(msg)
}

func (log jellogLogger) Errorf(msg string, a ...interface{}) {
	log.j.Errorf(msg, a...)
}
