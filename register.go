// FILE: lixenwraith/lconfig/register.go
package lconfig

import (
	"log/slog"
	"maps"
	"slices"
)

// DefaultTagName is the struct tag read by Scan.
const DefaultTagName = "lconfig"

// Option configures a Config at construction time. Handler registration
// happens only here, so the set of converters and adapters of a Config is
// fixed once New returns.
type Option func(*Config)

// WithStrict controls whether a section header repeated within one source
// is an error (the default) or merges into the earlier declaration.
func WithStrict(strict bool) Option {
	return func(c *Config) {
		c.strict = strict
	}
}

// WithLogger sets the structured logger used for debug records.
// Panics if logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger == nil {
			panic("lconfig: WithLogger: logger cannot be nil")
		}
		c.logger = logger
	}
}

// WithTagName sets the struct tag used by Scan.
func WithTagName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.tagName = name
		}
	}
}

// WithConverter registers fn under name, replacing a built-in of the same
// name. Panics if fn is nil.
func WithConverter(name string, fn Converter) Option {
	return func(c *Config) {
		if fn == nil {
			panic("lconfig: WithConverter: converter cannot be nil")
		}
		c.converters[name] = fn
	}
}

// WithAdapter registers fn under name, replacing a built-in of the same
// name. Panics if fn is nil.
func WithAdapter(name string, fn Adapter) Option {
	return func(c *Config) {
		if fn == nil {
			panic("lconfig: WithAdapter: adapter cannot be nil")
		}
		c.adapters[name] = fn
	}
}

// ConverterNames returns the registered converter names, sorted.
func (c *Config) ConverterNames() []string {
	return slices.Sorted(maps.Keys(c.converters))
}

// AdapterNames returns the registered adapter names, sorted.
func (c *Config) AdapterNames() []string {
	return slices.Sorted(maps.Keys(c.adapters))
}
