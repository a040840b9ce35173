// FILE: lixenwraith/lconfig/include.go
package lconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// IncludeOptions names the option that lists include files.
type IncludeOptions struct {
	Section string
	Option  string
}

// DefaultIncludeOptions reads includes from "include" in the default section.
func DefaultIncludeOptions() IncludeOptions {
	return IncludeOptions{
		Section: DefaultSection,
		Option:  "include",
	}
}

// ReadFileWithIncludes applies the files listed by the include option of
// path, in list order, and then path itself so that its values win.
// The include option holds one path per line; relative paths resolve against
// the directory of the including file. Missing includes are skipped. Includes
// nest, and a file already being read higher up the chain is not read again.
func (c *Config) ReadFileWithIncludes(path string, opts IncludeOptions) error {
	if opts.Option == "" {
		opts = DefaultIncludeOptions()
	}
	return c.readWithIncludes(path, opts, make(map[string]bool))
}

func (c *Config) readWithIncludes(path string, opts IncludeOptions, visiting map[string]bool) error {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	if visiting[key] {
		c.logger.Debug("skipping recursive include", "path", path)
		return nil
	}
	visiting[key] = true
	defer delete(visiting, key)

	data, err := readSource(path)
	if err != nil {
		return err
	}
	format := detectFileFormat(path)

	// the file is parsed on its own first to learn its include list
	probe := c.derive()
	if err := probe.readData(path, data, format); err != nil {
		return err
	}
	includes, err := probe.includePaths(opts)
	if err != nil {
		return fmt.Errorf("failed to resolve includes of '%s': %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(dir, inc)
		}
		err := c.readWithIncludes(inc, opts, visiting)
		if errors.Is(err, ErrConfigNotFound) {
			c.logger.Debug("skipping missing include", "path", inc, "from", path)
			c.recordFile(inc)
			continue
		}
		if err != nil {
			return fmt.Errorf("include '%s' from '%s': %w", inc, path, err)
		}
	}

	if err := c.readData(path, data, format); err != nil {
		return err
	}
	c.recordFile(path)
	return nil
}

// includePaths returns the trimmed, non-empty lines of the include option.
func (c *Config) includePaths(opts IncludeOptions) ([]string, error) {
	values, err := c.GetAll(canonical(opts.Section), opts.Option)
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range splitLines(strings.Join(values, "\n")) {
		if p := strings.TrimSpace(line); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}
