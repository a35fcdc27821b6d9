package logging

import (
	"io"
	"log/slog"
	"time"
)

// New returns a JSON line logger whose timestamps are written under "ts" in loc,
// matching the request and migration logs.
func New(w io.Writer, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String("level", levelName(a.Value.Any()))
			}
			return a
		},
	}))
}

func levelName(v any) string {
	lvl, ok := v.(slog.Level)
	if !ok {
		return "info"
	}
	switch {
	case lvl >= slog.LevelError:
		return "error"
	case lvl >= slog.LevelWarn:
		return "warn"
	case lvl >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
