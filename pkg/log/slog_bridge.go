package log

import (
	"bufio"
	"io"
	stdlog "log"
	"log/slog"
	"strings"
)

func newHandler(o options, lv *slog.LevelVar) slog.Handler {
	hopts := &slog.HandlerOptions{Level: lv}
	if len(o.redactions) > 0 {
		redact := make(map[string]struct{}, len(o.redactions))
		for _, k := range o.redactions {
			redact[k] = struct{}{}
		}
		hopts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
			if _, ok := redact[a.Key]; ok {
				return slog.String(a.Key, "[REDACTED]")
			}
			return a
		}
	}
	if o.format == FormatJSON {
		return slog.NewJSONHandler(o.out, hopts)
	}
	return slog.NewTextHandler(o.out, hopts)
}

// Helper: map our Level to slog.Level
func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	case FatalLevel:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// Helper: map slog.Level to our Level
func fromSlogLevel(level slog.Level) Level {
	switch {
	case level <= slog.LevelDebug:
		return DebugLevel
	case level <= slog.LevelInfo:
		return InfoLevel
	case level <= slog.LevelWarn:
		return WarnLevel
	case level <= slog.LevelError:
		return ErrorLevel
	default:
		return FatalLevel
	}
}

func attrsFromFields(fields []Field) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	return attrs
}

// attrsToAny converts []slog.Attr to []any for slog.Logger.With.
func attrsToAny(attrs []slog.Attr) []any {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]any, len(attrs))
	for i := range attrs {
		out[i] = attrs[i]
	}
	return out
}

// RedirectStdLog sends output of the standard library log package to l at
// info level, one entry per line.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(&lineWriter{l: l})
}

// ToStdLogger returns a *log.Logger that writes through l.
func ToStdLogger(l Logger) *stdlog.Logger {
	return stdlog.New(&lineWriter{l: l}, "", 0)
}

type lineWriter struct {
	l Logger
}

func (w *lineWriter) Write(p []byte) (int, error) {
	sc := bufio.NewScanner(strings.NewReader(string(p)))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			w.l.Info(line)
		}
	}
	return len(p), nil
}

var _ io.Writer = (*lineWriter)(nil)
