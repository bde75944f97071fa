package diag

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var hookLevelNames = map[string]string{
	level.DebugValue().String(): LevelDebug.String(),
	level.InfoValue().String():  LevelInfo.String(),
	level.WarnValue().String():  LevelWarn.String(),
	level.ErrorValue().String(): LevelError.String(),
}

// hookLogger renders key/value records as "<LEVEL> <id>: <msg> key=value..." and
// passes them to hook.
func hookLogger(hook Hook) log.Logger {
	return log.LoggerFunc(func(keyvals ...any) error {
		hook(render(keyvals))
		return nil
	})
}

func render(keyvals []any) string {
	var lvl, id, msg string
	var extra strings.Builder

	for i := 0; i+1 < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		val := fmt.Sprint(keyvals[i+1])

		switch {
		case keyvals[i] == level.Key():
			lvl = hookLevelNames[val]
		case key == "id":
			id = val
		case key == "msg":
			msg = val
		default:
			extra.WriteByte(' ')
			extra.WriteString(key)
			extra.WriteByte('=')
			extra.WriteString(val)
		}
	}

	var b strings.Builder
	if lvl != "" {
		b.WriteString(lvl)
		b.WriteByte(' ')
	}
	if id != "" {
		b.WriteString(id)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	b.WriteString(extra.String())

	return b.String()
}
