// Package diag emits leveled diagnostic messages for stream readers.
//
// Messages carry a level (DBG, INFO, WARN, ERR), an identifier naming the emitting
// component (usually a format name) and a formatted message. A Sink filters by a
// minimum level and writes through a go-kit logger, or hands the rendered message to a
// caller-supplied Hook instead:
//
//	sink := diag.NewWriterSink(os.Stderr, diag.LevelInfo)
//	sink.Msg(diag.LevelWarn, "ascii", "line %d: expected %d values, got %d", 12, 3, 2)
//
// # Process-wide default
//
// Streams opened without an explicit sink use Default. SetOutput, SetLevel and SetHook
// reconfigure the default. They are meant to be called once during startup, before any
// stream is read; reconfiguring while streams are being read from other goroutines is
// the caller's responsibility.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Level is the severity of a diagnostic message.
type Level int8

const (
	LevelDebug Level = -1 // LevelDebug is non-authoritative tracing.
	LevelInfo  Level = 0  // LevelInfo is informational tracing.
	LevelWarn  Level = 1  // LevelWarn accompanies a recovered anomaly.
	LevelError Level = 2  // LevelError accompanies a failed operation.
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERR"
	default:
		return fmt.Sprintf("Level(%d)", int8(l))
	}
}

// ParseLevel maps a level name ("debug", "dbg", "info", "warn", "error", "err") to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug", "dbg":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "err":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown diagnostic level: %q", s)
	}
}

// Hook receives every rendered message that passes the level threshold.
type Hook func(msg string)

// Sink is a leveled message destination. It is safe for concurrent use when the
// underlying logger or hook is.
type Sink struct {
	logger    log.Logger
	threshold Level
}

// NewSink creates a Sink writing messages at or above threshold to logger.
func NewSink(logger log.Logger, threshold Level) *Sink {
	return &Sink{
		logger:    level.NewFilter(logger, allowOption(threshold)),
		threshold: threshold,
	}
}

// NewWriterSink creates a Sink writing logfmt lines to w.
func NewWriterSink(w io.Writer, threshold Level) *Sink {
	return NewSink(log.NewLogfmtLogger(log.NewSyncWriter(w)), threshold)
}

// NewHookSink creates a Sink delivering rendered messages to hook.
func NewHookSink(hook Hook, threshold Level) *Sink {
	return NewSink(hookLogger(hook), threshold)
}

// Nop returns a Sink discarding every message.
func Nop() *Sink {
	return &Sink{logger: log.NewNopLogger(), threshold: LevelError + 1}
}

// Threshold returns the minimum emitted level.
func (s *Sink) Threshold() Level {
	return s.threshold
}

// Enabled reports whether messages at l are emitted.
func (s *Sink) Enabled(l Level) bool {
	return l >= s.threshold
}

// With returns a Sink adding keyvals as context to every message.
func (s *Sink) With(keyvals ...any) *Sink {
	return &Sink{logger: log.With(s.logger, keyvals...), threshold: s.threshold}
}

// Msg formats and emits a message at level l.
//
// Formatting is skipped entirely when l is below the threshold.
func (s *Sink) Msg(l Level, id string, format string, args ...any) {
	if !s.Enabled(l) {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	_ = leveled(s.logger, l).Log("id", id, "msg", msg)
}

func leveled(logger log.Logger, l Level) log.Logger {
	switch {
	case l <= LevelDebug:
		return level.Debug(logger)
	case l == LevelInfo:
		return level.Info(logger)
	case l == LevelWarn:
		return level.Warn(logger)
	default:
		return level.Error(logger)
	}
}

func allowOption(threshold Level) level.Option {
	switch {
	case threshold <= LevelDebug:
		return level.AllowDebug()
	case threshold == LevelInfo:
		return level.AllowInfo()
	case threshold == LevelWarn:
		return level.AllowWarn()
	case threshold == LevelError:
		return level.AllowError()
	default:
		return level.AllowNone()
	}
}
