// Package logging provides leveled logging and event tracing for diner.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output, per-event debug lines)
//   - An EventLogger for structured JSONL simulation events
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug.
// At this level the acquisition retry loop is logged attempt by attempt.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// LevelFor returns the level name for a run: "debug" when the debug flag is
// set and level is less verbose, level otherwise.
func LevelFor(level string, debug bool) string {
	if debug && ParseLevel(level) > slog.LevelDebug {
		return "debug"
	}
	return level
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// EventLogger writes structured simulation events as JSONL.
// It is safe for concurrent use. A nil EventLogger is safe to use;
// all methods are no-ops on nil receiver.
type EventLogger struct {
	mu      sync.Mutex
	w       io.Writer
	nowFunc func() time.Time
}

// NewEventLogger creates an event logger writing to w.
// Returns nil when w is nil, so callers can pass the result around unconditionally.
func NewEventLogger(w io.Writer) *EventLogger {
	if w == nil {
		return nil
	}
	return &EventLogger{w: w, nowFunc: time.Now}
}

// Log writes an event as a single JSONL line.
// A "time" field is added automatically. The caller's map is not mutated.
// Safe to call on nil receiver.
func (el *EventLogger) Log(event map[string]any) {
	if el == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	if el.w == nil {
		return
	}
	entry["time"] = el.nowFunc().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = el.w.Write(data)
}

// Acquired records that agent took resource.
func (el *EventLogger) Acquired(resource, agent int) {
	el.Log(map[string]any{"event": "acquired", "agent": agent, "resource": resource})
}

// Released records that agent put resource back.
func (el *EventLogger) Released(resource, agent int) {
	el.Log(map[string]any{"event": "released", "agent": agent, "resource": resource})
}

// Close detaches the writer. Later events are dropped. Safe to call on nil receiver.
func (el *EventLogger) Close() {
	if el == nil {
		return
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	el.w = nil
}
