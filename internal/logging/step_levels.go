package logging

import (
	"context"
	"log/slog"
	"strings"
)

// stepLevelHandler applies logging.step_levels. A logger tagged with a step
// (the FieldStep attribute, normally added by WithContext) filters at that
// step's configured level; every other logger uses the base level. The
// wrapped handler must accept the most verbose of these levels.
type stepLevelHandler struct {
	next      slog.Handler
	base      slog.Level
	overrides map[string]slog.Level
	level     slog.Level
}

func newStepLevelHandler(next slog.Handler, base slog.Level, overrides map[string]slog.Level) slog.Handler {
	return &stepLevelHandler{next: next, base: base, overrides: overrides, level: base}
}

// parseStepLevels drops blank entries and lowercases step names.
func parseStepLevels(raw map[string]string) map[string]slog.Level {
	levels := make(map[string]slog.Level, len(raw))
	for step, level := range raw {
		step = strings.ToLower(strings.TrimSpace(step))
		if step == "" || strings.TrimSpace(level) == "" {
			continue
		}
		levels[step] = ParseLevel(level)
	}
	return levels
}

// minLevel returns the most verbose of base and every override.
func minLevel(base slog.Level, overrides map[string]slog.Level) slog.Level {
	lowest := base
	for _, level := range overrides {
		if level < lowest {
			lowest = level
		}
	}
	return lowest
}

func (h *stepLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.next.Enabled(ctx, level)
}

func (h *stepLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *stepLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	for _, attr := range attrs {
		if attr.Key != FieldStep {
			continue
		}
		clone.level = h.base
		if level, ok := h.overrides[strings.ToLower(attr.Value.String())]; ok {
			clone.level = level
		}
	}
	return &clone
}

func (h *stepLevelHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}
