package input

import (
	"fmt"
	"log/slog"
	"sort"
)

// SinkFactory builds a Sink.
type SinkFactory func(logger *slog.Logger) (Sink, error)

// Platform sinks add themselves from init.
var registeredSinks = map[string]SinkFactory{
	"log": func(logger *slog.Logger) (Sink, error) { return NewLogSink(logger), nil },
}

// NewSink creates the sink registered under name.
func NewSink(name string, logger *slog.Logger) (Sink, error) {
	factory, ok := registeredSinks[name]
	if !ok {
		return nil, fmt.Errorf("input sink %q not supported (have %v)", name, Sinks())
	}
	return factory(logger)
}

// Sinks lists the registered sink names.
func Sinks() []string {
	names := make([]string, 0, len(registeredSinks))
	for name := range registeredSinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
