// FILE: lixenwraith/lconfig/loader.go
package lconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies how a file source is decoded.
type Format string

const (
	// FormatNative is the line-oriented grammar of this package.
	FormatNative Format = "native"
	// FormatTOML, FormatYAML and FormatJSON are decoded into a dict and
	// applied with ReadDict.
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// EnvTransformFunc maps a section and option to an environment variable name.
type EnvTransformFunc func(section, option string) string

// ReadString applies text in the native grammar.
func (c *Config) ReadString(text string) error {
	return c.Read(strings.NewReader(text), "<string>")
}

// ReadLines applies pre-split lines in the native grammar.
func (c *Config) ReadLines(lines []string) error {
	events, err := ScanLines(lines)
	if err != nil {
		return withSource(err, "<lines>")
	}
	return c.apply("<lines>", events)
}

// Read applies native-grammar text from r. name identifies the source in
// errors. The whole source is validated before any value is stored.
func (c *Config) Read(r io.Reader, name string) error {
	s := NewScanner(r)
	var events []Event
	for s.Scan() {
		events = append(events, s.Event())
	}
	if err := s.Err(); err != nil {
		return withSource(err, name)
	}
	return c.apply(name, events)
}

func withSource(err error, name string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Source = name
		return pe
	}
	return fmt.Errorf("failed to read %s: %w", name, err)
}

// ReadDict applies a dict-of-dicts. Top-level map values are sections;
// other top-level values belong to the default section. Nested maps become
// dotted option keys and slices append one value per element. Lists of
// tables or nested lists are rejected with ErrUnsupportedFormat.
func (c *Config) ReadDict(data map[string]any) error {
	var b batch
	add := func(sectionName string) func(string, any) error {
		return func(key string, val any) error {
			if !isValidKey(key) {
				return fmt.Errorf("%w: [%s] %q", ErrInvalidKey, sectionName, key)
			}
			values, err := dictValues(val)
			if err != nil {
				return fmt.Errorf("%w: [%s] %s", err, sectionName, key)
			}
			for _, v := range values {
				b.values = append(b.values, staged{section: sectionName, key: key, value: v})
			}
			return nil
		}
	}

	var scalars map[string]any
	for _, key := range slices.Sorted(maps.Keys(data)) {
		val := data[key]
		if sub, ok := val.(map[string]any); ok {
			name := canonical(key)
			b.headers = append(b.headers, name)
			if err := flattenDict(sub, "", add(name)); err != nil {
				return err
			}
			continue
		}
		if scalars == nil {
			scalars = make(map[string]any)
		}
		scalars[key] = val
	}
	if err := flattenDict(scalars, "", add(DefaultSection)); err != nil {
		return err
	}

	b.commit(c)
	c.logger.Debug("applied source", "source", "<dict>", "sections", len(b.headers), "values", len(b.values))
	return nil
}

// ReadDefaults applies a dict to the default section.
func (c *Config) ReadDefaults(defaults map[string]any) error {
	return c.ReadDict(map[string]any{DefaultSection: defaults})
}

// ReadFile applies a file, choosing the decoder from its extension.
// Files other than .toml, .yaml, .yml and .json use the native grammar and
// must be UTF-8.
func (c *Config) ReadFile(path string) error {
	data, err := readSource(path)
	if err != nil {
		return err
	}
	if err := c.readData(path, data, detectFileFormat(path)); err != nil {
		return err
	}
	c.recordFile(path)
	return nil
}

// ReadFormat applies data decoded with an explicit format.
func (c *Config) ReadFormat(data []byte, format Format, name string) error {
	return c.readData(name, data, format)
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return data, nil
}

func (c *Config) readData(name string, data []byte, format Format) error {
	dict := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &dict); err != nil {
			return fmt.Errorf("failed to parse TOML config file '%s': %w", name, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &dict); err != nil {
			return fmt.Errorf("failed to parse YAML config file '%s': %w", name, err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // keep numbers textual
		if err := decoder.Decode(&dict); err != nil {
			return fmt.Errorf("failed to parse JSON config file '%s': %w", name, err)
		}
	case FormatNative, "":
		if !utf8.Valid(data) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidEncoding, name)
		}
		return c.Read(bytes.NewReader(data), name)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := c.ReadDict(dict); err != nil {
		return fmt.Errorf("failed to apply config file '%s': %w", name, err)
	}
	return nil
}

// ReadEnv appends environment overrides for options already stored in each
// section. transform maps (section, option) to a variable name; nil uses
// PREFIX + SECTION_OPTION in upper case, with the section omitted for the
// default section. It returns the number of values applied.
func (c *Config) ReadEnv(prefix string, transform EnvTransformFunc) int {
	if transform == nil {
		transform = defaultEnvTransform(prefix)
	}
	var b batch
	for _, sec := range c.sections {
		for _, key := range sec.keys() {
			if ParseSpecialKey(key).Reserved() {
				continue
			}
			if value, ok := os.LookupEnv(transform(sec.name, key)); ok {
				b.values = append(b.values, staged{section: sec.name, key: key, value: value})
			}
		}
	}
	b.commit(c)
	if len(b.values) > 0 {
		c.logger.Debug("applied source", "source", "<env>", "prefix", prefix, "values", len(b.values))
	}
	return len(b.values)
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(section, option string) string {
		name := option
		if section != DefaultSection {
			name = section + "_" + option
		}
		name = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z':
				return r - 'a' + 'A'
			case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return '_'
			}
		}, name)
		return prefix + name
	}
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatNative
	}
}
