// FILE: lixenwraith/lconfig/convenience.go
package lconfig

import (
	"fmt"
	"slices"
	"strings"
)

// Quick builds a Config from default-section values, an optional file and
// environment overrides under envPrefix. A missing file is not fatal; the
// returned error is then a warnings list (see FatalOnly).
func Quick(defaults map[string]any, envPrefix, configFile string) (*Config, error) {
	b := NewBuilder()
	if defaults != nil {
		b.WithDefaults(defaults)
	}
	b.WithOptionalFile(configFile)
	if envPrefix != "" {
		b.WithEnvPrefix(envPrefix)
	}
	return b.Build()
}

// MustQuick is like Quick but panics on a fatal error
func MustQuick(defaults map[string]any, envPrefix, configFile string) *Config {
	cfg, err := Quick(defaults, envPrefix, configFile)
	if FatalOnly(err) != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Validate checks that each required "section:option" (or bare "option" for
// the default section) is visible and resolves to a non-empty value.
func (c *Config) Validate(required ...string) error {
	var missing []string
	for _, req := range required {
		sectionName, key := DefaultSection, req
		if idx := strings.LastIndexByte(req, ':'); idx >= 0 {
			sectionName, key = canonical(req[:idx]), req[idx+1:]
		}
		val, err := c.Get(sectionName, key)
		if err != nil {
			missing = append(missing, fmt.Sprintf("%s (%v)", req, err))
			continue
		}
		if strings.TrimSpace(val) == "" {
			missing = append(missing, req)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns a formatted dump of every section with raw value lists and,
// where they differ, resolved values.
func (c *Config) Debug() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	fmt.Fprintf(&b, "Converters: %v\n", c.ConverterNames())
	fmt.Fprintf(&b, "Adapters: %v\n", c.AdapterNames())

	for _, sec := range c.sections {
		fmt.Fprintf(&b, "[%s]\n", sec.name)
		for _, opt := range sec.options {
			fmt.Fprintf(&b, "  %s:\n", opt.key)
			fmt.Fprintf(&b, "    Raw: %q\n", opt.values)
			resolved, err := c.GetAll(sec.name, opt.key)
			switch {
			case err != nil:
				fmt.Fprintf(&b, "    Error: %v\n", err)
			case !slices.Equal(resolved, opt.values):
				fmt.Fprintf(&b, "    Resolved: %q\n", resolved)
			}
		}
	}

	return b.String()
}
