package diag

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// DefaultLevel is the threshold of the process-wide sink until SetLevel is called.
const DefaultLevel = LevelWarn

var (
	defaultSink atomic.Pointer[Sink]

	defaultMu  sync.Mutex
	defaultCfg = struct {
		out   io.Writer
		hook  Hook
		level Level
	}{out: os.Stderr, level: DefaultLevel}
)

func init() {
	rebuildDefault()
}

// rebuildDefault must be called with defaultMu held, or from init.
func rebuildDefault() {
	var sink *Sink
	if defaultCfg.hook != nil {
		sink = NewHookSink(defaultCfg.hook, defaultCfg.level)
	} else {
		sink = NewWriterSink(defaultCfg.out, defaultCfg.level)
	}
	defaultSink.Store(sink)
}

// Default returns the process-wide sink.
func Default() *Sink {
	return defaultSink.Load()
}

// SetOutput directs the process-wide sink to w. Messages keep going to the hook while
// one is installed.
func SetOutput(w io.Writer) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultCfg.out = w
	rebuildDefault()
}

// SetLevel sets the minimum level emitted by the process-wide sink.
func SetLevel(l Level) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultCfg.level = l
	rebuildDefault()
}

// SetHook redirects every process-wide message to hook. A nil hook restores the output
// writer.
func SetHook(hook Hook) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultCfg.hook = hook
	rebuildDefault()
}

// Msg emits a message through the process-wide sink.
func Msg(l Level, id string, format string, args ...any) {
	Default().Msg(l, id, format, args...)
}
