package core

import (
	"log"
	"os"
)

// Level is a logging severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DebugLogger is a level-filtered sink wrapping a *log.Logger, the same
// log.Printf/log.Println style used throughout this codebase's server and
// scheduler, with an added minimum-level gate and a tag prefix so a
// simulation run's log lines are easy to pick out ("[Simulator] ...").
type DebugLogger struct {
	out      *log.Logger
	minLevel Level
	tag      string
}

// NewDebugLogger builds a logger that writes to stderr with the standard
// library's default timestamp flags, prefixed with tag.
func NewDebugLogger(tag string, minLevel Level) *DebugLogger {
	return &DebugLogger{
		out:      log.New(os.Stderr, "", log.LstdFlags),
		minLevel: minLevel,
		tag:      tag,
	}
}

// WithTag returns a copy of the logger scoped to a different tag, sharing
// the same output and minimum level — used to give each simulation run its
// own prefix without opening a new log.Logger.
func (d *DebugLogger) WithTag(tag string) *DebugLogger {
	return &DebugLogger{out: d.out, minLevel: d.minLevel, tag: tag}
}

func (d *DebugLogger) log(level Level, format string, args ...interface{}) {
	if d == nil || level < d.minLevel {
		return
	}
	prefix := "[" + d.tag + "] " + level.String() + ": "
	d.out.Printf(prefix+format, args...)
}

func (d *DebugLogger) Debug(format string, args ...interface{}) { d.log(LevelDebug, format, args...) }
func (d *DebugLogger) Info(format string, args ...interface{})  { d.log(LevelInfo, format, args...) }
func (d *DebugLogger) Warn(format string, args ...interface{})  { d.log(LevelWarn, format, args...) }
func (d *DebugLogger) Error(format string, args ...interface{}) { d.log(LevelError, format, args...) }

// WarnFunc adapts Warn to the func(string) signature TagPredicate.Evaluate
// and other core helpers accept for optional diagnostic callbacks.
func (d *DebugLogger) WarnFunc() func(string) {
	if d == nil {
		return func(string) {}
	}
	return func(msg string) { d.Warn("%s", msg) }
}
