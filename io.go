// FILE: lixenwraith/lconfig/io.go
package lconfig

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// WriteTo emits the raw, uninterpolated values in the native grammar: options
// of the default section first without a header, then one block per section.
// Every stored value becomes its own assignment line; embedded newlines are
// written as continuation lines. Reading the output back reproduces the same
// value lists for values without surrounding whitespace.
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	writeOptions := func(sec *section) {
		for _, opt := range sec.options {
			for _, v := range opt.values {
				lines := strings.Split(v, "\n")
				writeLine(cw, opt.key, lines[0])
				for _, cont := range lines[1:] {
					writeLine(cw, "", cont)
				}
			}
		}
	}

	writeOptions(c.defaults())
	for _, sec := range c.sections {
		if sec.name == DefaultSection {
			continue
		}
		if cw.n > 0 {
			fmt.Fprintln(cw)
		}
		fmt.Fprintf(cw, "[%s]\n", sec.name)
		writeOptions(sec)
	}

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, bw.Flush()
}

func writeLine(w io.Writer, key, value string) {
	switch {
	case key == "" && value == "":
		fmt.Fprintln(w, "=")
	case key == "":
		fmt.Fprintf(w, "= %s\n", value)
	case value == "":
		fmt.Fprintf(w, "%s =\n", key)
	default:
		fmt.Fprintf(w, "%s = %s\n", key, value)
	}
}

// countingWriter tracks bytes written and keeps the first error.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.err = err
	return n, err
}

// WriteFile writes the native grammar to path atomically.
func (c *Config) WriteFile(path string) error {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	return atomicWriteFile(path, buf.Bytes())
}

// Map returns the resolved current value of every option stored in each
// section, keyed by section name. Inherited and reserved options are left out.
func (c *Config) Map() (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(c.sections))
	for _, sec := range c.sections {
		values := make(map[string]string, len(sec.options))
		for _, key := range sec.keys() {
			if ParseSpecialKey(key).Reserved() {
				continue
			}
			v, err := c.Get(sec.name, key)
			if err != nil {
				return nil, err
			}
			values[key] = v
		}
		out[sec.name] = values
	}
	return out, nil
}

// Export writes a resolved snapshot in the given format. Dotted keys become
// nested tables; multi-valued options export their full value list.
func (c *Config) Export(w io.Writer, format Format) error {
	if format == FormatNative || format == "" {
		_, err := c.WriteTo(w)
		return err
	}

	data := make(map[string]any, len(c.sections))
	for _, sec := range c.sections {
		nested := make(map[string]any)
		for _, key := range sec.keys() {
			if ParseSpecialKey(key).Reserved() {
				continue
			}
			values, err := c.GetAll(sec.name, key)
			if err != nil {
				return err
			}
			var v any = values
			if len(values) == 1 {
				v = values[0]
			}
			setNestedValue(nested, key, v)
		}
		data[sec.name] = nested
	}

	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // no-op after a successful rename

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
