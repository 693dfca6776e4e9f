package audio

import (
	"fmt"
	"sort"
)

// Options configures a Source created through the registry.
type Options struct {
	Device string
	ToneHz float64
}

// SourceFactory builds a Source.
type SourceFactory func(opts Options) (Source, error)

var registeredSources = map[string]SourceFactory{
	"tone": func(opts Options) (Source, error) { return NewToneSource(opts.ToneHz), nil },
}

// NewSource creates the source registered under name.
func NewSource(name string, opts Options) (Source, error) {
	factory, ok := registeredSources[name]
	if !ok {
		return nil, fmt.Errorf("audio source %q not supported (have %v)", name, Sources())
	}
	return factory(opts)
}

// Sources lists the registered source names.
func Sources() []string {
	names := make([]string, 0, len(registeredSources))
	for name := range registeredSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
