// FILE: lixenwraith/lconfig/adapt.go
package lconfig

import (
	"errors"
	"fmt"
	"slices"
)

// Assignment describes one call to Set as seen by an Adapter.
type Assignment struct {
	Section string
	Option  string
	Value   any
	Config  *Config
}

// Adapter turns an assignment into the new raw value list of an option.
// values is a copy of the list currently stored in the section (nil when the
// option is new). Returning an empty non-nil list removes the option;
// returning a nil list or ErrSkipAssignment leaves it untouched.
type Adapter func(a Assignment, values []string) ([]string, error)

// Built-in adapter names.
const (
	AdaptAppend         = "append"
	AdaptRaw            = "raw"
	AdaptOverwrite      = "overwrite"
	AdaptAppendNonEmpty = "append_nonempty"
	AdaptConcat         = "concat"
	AdaptAppendDefault  = "append_default"
	AdaptAppendDelete   = "append_delete"
	AdaptAppendRemove   = "append_remove"
	AdaptListing        = "listing"
)

var builtinAdapters = map[string]Adapter{
	AdaptAppend:         adaptAppend,
	AdaptRaw:            adaptRaw,
	AdaptOverwrite:      adaptOverwrite,
	AdaptAppendNonEmpty: adaptAppendNonEmpty,
	AdaptConcat:         adaptConcat,
	AdaptAppendDefault:  adaptAppendDefault,
	AdaptAppendDelete:   adaptAppendDelete,
	AdaptAppendRemove:   adaptAppendRemove,
	AdaptListing:        adaptListing,
}

// Set assigns value to an option through its adapter: the one named by the
// most specific ".adapt." key visible from the section, "append" otherwise.
// Reserved keys always use "overwrite". The section is created if needed.
func (c *Config) Set(sectionName, key string, value any) error {
	sectionName = canonical(sectionName)
	if !isValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	adapter := AdaptAppend
	if ParseSpecialKey(key).Reserved() {
		adapter = AdaptOverwrite
	} else if name, ok := c.handlerName(sectionName, key, adaptPrefix); ok && name != "" {
		adapter = name
	}
	fn, ok := c.adapters[adapter]
	if !ok {
		return fmt.Errorf("%w: %q for [%s] %s", ErrUnknownAdapter, adapter, sectionName, key)
	}

	var current []string
	if sec, ok := c.index[sectionName]; ok {
		if opt, ok := sec.get(key); ok {
			current = slices.Clone(opt.values)
		}
	}

	next, err := fn(Assignment{Section: sectionName, Option: key, Value: value, Config: c}, current)
	if errors.Is(err, ErrSkipAssignment) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("adapter %q for [%s] %s: %w", adapter, sectionName, key, err)
	}
	if next == nil {
		return nil
	}
	return c.SetRaw(sectionName, key, next)
}

func adaptAppend(a Assignment, values []string) ([]string, error) {
	return append(values, stringify(a.Value)), nil
}

func adaptRaw(a Assignment, values []string) ([]string, error) {
	return append(values, stringifyAll(a.Value)...), nil
}

func adaptOverwrite(a Assignment, _ []string) ([]string, error) {
	return []string{stringify(a.Value)}, nil
}

func adaptAppendNonEmpty(a Assignment, values []string) ([]string, error) {
	v := stringify(a.Value)
	if v == "" {
		return nil, ErrSkipAssignment
	}
	return append(values, v), nil
}

// adaptConcat extends the current value in place.
func adaptConcat(a Assignment, values []string) ([]string, error) {
	v := stringify(a.Value)
	if v == "" {
		return nil, ErrSkipAssignment
	}
	if len(values) == 0 {
		return []string{v}, nil
	}
	values[len(values)-1] += v
	return values, nil
}

// adaptAppendDefault resets the option to its ".default." value on an empty
// assignment.
func adaptAppendDefault(a Assignment, values []string) ([]string, error) {
	if v := stringify(a.Value); v != "" {
		return append(values, v), nil
	}
	def, _ := a.Config.handlerName(a.Section, a.Option, defaultPrefix)
	return []string{def}, nil
}

// adaptAppendDelete removes the option on an empty assignment.
func adaptAppendDelete(a Assignment, values []string) ([]string, error) {
	if v := stringify(a.Value); v != "" {
		return append(values, v), nil
	}
	return []string{}, nil
}

// adaptAppendRemove drops the newest value on an empty assignment.
func adaptAppendRemove(a Assignment, values []string) ([]string, error) {
	if v := stringify(a.Value); v != "" {
		return append(values, v), nil
	}
	if len(values) == 0 {
		return nil, ErrSkipAssignment
	}
	return values[:len(values)-1], nil
}

// adaptListing appends each comma separated token as its own value.
func adaptListing(a Assignment, values []string) ([]string, error) {
	var tokens []string
	for _, v := range stringifyAll(a.Value) {
		tokens = append(tokens, splitListing(v)...)
	}
	if len(tokens) == 0 {
		return nil, ErrSkipAssignment
	}
	return append(values, tokens...), nil
}
