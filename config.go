// FILE: lixenwraith/lconfig/config.go
package lconfig

import (
	"fmt"
	"log/slog"
	"slices"
)

// DefaultSection names the section whose options are visible from every
// other section. Assignments before the first section header land here.
const DefaultSection = "default"

// Config is an ordered mapping of section -> option -> raw values.
// Values are stored uninterpolated; every read resolves references afresh,
// so mutations are visible to all later reads.
//
// A Config is not safe for concurrent use. Callers sharing one between
// goroutines must provide their own locking, or publish immutable snapshots
// (see Watcher).
type Config struct {
	sections   []*section
	index      map[string]*section
	converters map[string]Converter
	adapters   map[string]Adapter
	strict     bool
	tagName    string
	logger     *slog.Logger
	files      []string // files read, plus includes that were missing
}

// New creates an empty Config with the built-in converters and adapters
// plus any registered through opts.
func New(opts ...Option) *Config {
	c := &Config{
		index:      make(map[string]*section),
		converters: make(map[string]Converter, len(builtinConverters)),
		adapters:   make(map[string]Adapter, len(builtinAdapters)),
		strict:     true,
		tagName:    DefaultTagName,
		logger:     slog.New(slog.DiscardHandler),
	}
	for name, fn := range builtinConverters {
		c.converters[name] = fn
	}
	for name, fn := range builtinAdapters {
		c.adapters[name] = fn
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ensureSection(DefaultSection)
	return c
}

// derive returns an empty Config sharing c's registries and settings.
func (c *Config) derive() *Config {
	d := &Config{
		index:      make(map[string]*section),
		converters: c.converters,
		adapters:   c.adapters,
		strict:     c.strict,
		tagName:    c.tagName,
		logger:     c.logger,
	}
	d.ensureSection(DefaultSection)
	return d
}

// canonical maps the empty section name to the default section.
func canonical(name string) string {
	if name == "" {
		return DefaultSection
	}
	return name
}

func (c *Config) ensureSection(name string) *section {
	if sec, ok := c.index[name]; ok {
		return sec
	}
	sec := newSection(name)
	c.sections = append(c.sections, sec)
	c.index[name] = sec
	return sec
}

func (c *Config) defaults() *section {
	return c.index[DefaultSection]
}

// lookup finds an option in sectionName, falling back to the default section.
func (c *Config) lookup(sectionName, key string) (*option, error) {
	sec, ok := c.index[sectionName]
	if !ok {
		return nil, &LookupError{Section: sectionName, Err: ErrMissingSection}
	}
	if opt, ok := sec.get(key); ok {
		return opt, nil
	}
	if sectionName != DefaultSection {
		if opt, ok := c.defaults().get(key); ok {
			return opt, nil
		}
	}
	return nil, &LookupError{Section: sectionName, Option: key, Err: ErrMissingOption}
}

// AddSection creates an empty section. Adding an existing section, including
// the default one, fails with ErrDuplicateSection.
func (c *Config) AddSection(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty section name", ErrInvalidKey)
	}
	if _, ok := c.index[name]; ok {
		return fmt.Errorf("%w: [%s]", ErrDuplicateSection, name)
	}
	c.ensureSection(name)
	return nil
}

// RemoveSection deletes a section and all of its options. The default
// section cannot be removed.
func (c *Config) RemoveSection(name string) bool {
	name = canonical(name)
	if name == DefaultSection {
		return false
	}
	if _, ok := c.index[name]; !ok {
		return false
	}
	delete(c.index, name)
	c.sections = slices.DeleteFunc(c.sections, func(s *section) bool {
		return s.name == name
	})
	return true
}

// HasSection reports whether a section exists. The default section always does.
func (c *Config) HasSection(name string) bool {
	_, ok := c.index[canonical(name)]
	return ok
}

// Sections returns the section names in declaration order, without the
// default section.
func (c *Config) Sections() []string {
	names := make([]string, 0, len(c.sections))
	for _, sec := range c.sections {
		if sec.name != DefaultSection {
			names = append(names, sec.name)
		}
	}
	return names
}

// Len returns the number of sections, not counting the default section.
func (c *Config) Len() int {
	return len(c.sections) - 1
}

// Options returns the option names visible from a section: its own options
// followed by default-section options it does not override. Reserved
// dot-prefixed keys are omitted.
func (c *Config) Options(sectionName string) ([]string, error) {
	sectionName = canonical(sectionName)
	sec, ok := c.index[sectionName]
	if !ok {
		return nil, &LookupError{Section: sectionName, Err: ErrMissingSection}
	}
	var names []string
	for _, key := range sec.keys() {
		if !ParseSpecialKey(key).Reserved() {
			names = append(names, key)
		}
	}
	if sectionName == DefaultSection {
		return names, nil
	}
	for _, key := range c.defaults().keys() {
		if _, own := sec.get(key); own || ParseSpecialKey(key).Reserved() {
			continue
		}
		names = append(names, key)
	}
	return names, nil
}

// Keys returns every key stored in the section itself, reserved keys
// included, in insertion order.
func (c *Config) Keys(sectionName string) ([]string, error) {
	sectionName = canonical(sectionName)
	sec, ok := c.index[sectionName]
	if !ok {
		return nil, &LookupError{Section: sectionName, Err: ErrMissingSection}
	}
	return sec.keys(), nil
}

// HasOption reports whether an option is visible from a section.
func (c *Config) HasOption(sectionName, key string) bool {
	_, err := c.lookup(canonical(sectionName), key)
	return err == nil
}

// GetRaw returns a copy of the uninterpolated values of an option.
func (c *Config) GetRaw(sectionName, key string) ([]string, error) {
	opt, err := c.lookup(canonical(sectionName), key)
	if err != nil {
		return nil, err
	}
	return slices.Clone(opt.values), nil
}

// SetRaw replaces the stored values of an option, bypassing adapters.
// The section is created if needed; an empty list removes the option.
func (c *Config) SetRaw(sectionName, key string, values []string) error {
	if !isValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	sectionName = canonical(sectionName)
	if len(values) == 0 {
		c.Remove(sectionName, key)
		return nil
	}
	c.ensureSection(sectionName).set(key, values)
	return nil
}

// Remove deletes an option from the section itself; options inherited from
// the default section are untouched.
func (c *Config) Remove(sectionName, key string) bool {
	sec, ok := c.index[canonical(sectionName)]
	if !ok {
		return false
	}
	return sec.remove(key)
}

// Clone returns a deep copy sharing the (immutable) handler registries.
func (c *Config) Clone() *Config {
	cp := &Config{
		index:      make(map[string]*section, len(c.index)),
		converters: c.converters,
		adapters:   c.adapters,
		strict:     c.strict,
		tagName:    c.tagName,
		logger:     c.logger,
		files:      slices.Clone(c.files),
	}
	for _, sec := range c.sections {
		dup := sec.clone()
		cp.sections = append(cp.sections, dup)
		cp.index[dup.name] = dup
	}
	return cp
}

// Files returns the files this Config was read from, in the order they were
// first read. Includes that were listed but missing are reported too, since
// creating them changes what a rebuild produces.
func (c *Config) Files() []string {
	return slices.Clone(c.files)
}

func (c *Config) recordFile(path string) {
	if !slices.Contains(c.files, path) {
		c.files = append(c.files, path)
	}
}
