package capture

import (
	"fmt"
	"sort"
)

// Options configures a Source created through the registry.
type Options struct {
	DisplayIndex int
	Width        int
	Height       int
}

// SourceFactory builds a Source.
type SourceFactory func(opts Options) (Source, error)

// Platform specific sources register themselves from init so they can be
// compiled out with build constraints.
var registeredSources = map[string]SourceFactory{
	"pattern":    func(opts Options) (Source, error) { return NewPatternSource(opts.Width, opts.Height), nil },
	"screenshot": func(opts Options) (Source, error) { return NewScreenshotSource(opts.DisplayIndex), nil },
}

// NewSource creates the source registered under name.
func NewSource(name string, opts Options) (Source, error) {
	factory, ok := registeredSources[name]
	if !ok {
		return nil, fmt.Errorf("capture source %q not supported (have %v)", name, Sources())
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
