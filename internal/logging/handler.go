package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Handler implements slog.Handler using zerolog as the backend.
type Handler struct {
	logger zerolog.Logger
	attrs  []boundAttr
	groups []string
}

// boundAttr remembers the group prefix in effect when the attribute was added.
type boundAttr struct {
	prefix string
	attr   slog.Attr
}

// NewHandler wraps a zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.GetLevel() <= toZerologLevel(level)
}

// Handle writes one record.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	event := h.logger.WithLevel(toZerologLevel(record.Level))
	if event == nil {
		return nil
	}

	for _, b := range h.attrs {
		addAttr(event, b.prefix, b.attr)
	}
	prefix := h.prefix()
	record.Attrs(func(attr slog.Attr) bool {
		addAttr(event, prefix, attr)
		return true
	})

	event.Msg(record.Message)
	return nil
}

// WithAttrs returns a handler carrying additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := h.prefix()
	merged := make([]boundAttr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, boundAttr{prefix: prefix, attr: a})
	}
	return &Handler{logger: h.logger, attrs: merged, groups: h.groups}
}

// WithGroup returns a handler that prefixes subsequent keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &Handler{logger: h.logger, attrs: h.attrs, groups: groups}
}

func (h *Handler) prefix() string {
	return strings.Join(h.groups, ".")
}

func addAttr(event *zerolog.Event, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		sub := key
		if attr.Key == "" {
			sub = prefix
		}
		for _, a := range attr.Value.Group() {
			addAttr(event, sub, a)
		}
	case slog.KindString:
		event.Str(key, attr.Value.String())
	case slog.KindInt64:
		event.Int64(key, attr.Value.Int64())
	case slog.KindUint64:
		event.Uint64(key, attr.Value.Uint64())
	case slog.KindFloat64:
		event.Float64(key, attr.Value.Float64())
	case slog.KindBool:
		event.Bool(key, attr.Value.Bool())
	case slog.KindDuration:
		event.Dur(key, attr.Value.Duration())
	case slog.KindTime:
		event.Time(key, attr.Value.Time())
	default:
		if err, ok := attr.Value.Any().(error); ok {
			event.AnErr(key, err)
			return
		}
		event.Interface(key, attr.Value.Any())
	}
}

func toZerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelDebug:
		return zerolog.TraceLevel
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
