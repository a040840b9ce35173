// FILE: lixenwraith/lconfig/builder.go
package lconfig

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/warnings.v0"
)

// ValidatorFunc defines the signature for a function that can validate a Config instance.
// It receives the fully loaded *Config object and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

type sourceKind int

const (
	sourceDict sourceKind = iota
	sourceText
	sourceFile
)

// source is one step of a build, applied in the order it was added.
type source struct {
	kind     sourceKind
	name     string
	dict     map[string]any
	text     string
	optional bool
}

// Builder provides a fluent interface for building configurations.
// Sources are applied in the order they are added; environment overrides
// are applied after all of them.
type Builder struct {
	opts         []Option
	sources      []source
	includes     *IncludeOptions
	envPrefix    string
	envTransform EnvTransformFunc
	useEnv       bool
	err          error
	validators   []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		validators: make([]ValidatorFunc, 0),
	}
}

// WithOptions passes construction options to New.
func (b *Builder) WithOptions(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithDefaults adds a source of default-section values.
func (b *Builder) WithDefaults(defaults map[string]any) *Builder {
	return b.WithDict(map[string]any{DefaultSection: defaults})
}

// WithDict adds a dict-of-dicts source (see Config.ReadDict).
func (b *Builder) WithDict(data map[string]any) *Builder {
	b.sources = append(b.sources, source{kind: sourceDict, name: "<dict>", dict: data})
	return b
}

// WithString adds a source in the native grammar.
func (b *Builder) WithString(text string) *Builder {
	b.sources = append(b.sources, source{kind: sourceText, name: "<string>", text: text})
	return b
}

// WithFile adds a file source that must exist.
func (b *Builder) WithFile(path string) *Builder {
	if path == "" {
		b.err = errors.Join(b.err, fmt.Errorf("%w: empty file path", ErrConfigNotFound))
		return b
	}
	b.sources = append(b.sources, source{kind: sourceFile, name: path})
	return b
}

// WithOptionalFile adds a file source that may be missing. A missing file is
// reported by Build as a warning, not a failure.
func (b *Builder) WithOptionalFile(path string) *Builder {
	if path == "" {
		return b
	}
	b.sources = append(b.sources, source{kind: sourceFile, name: path, optional: true})
	return b
}

// WithIncludes makes file sources follow their include option.
func (b *Builder) WithIncludes(opts IncludeOptions) *Builder {
	b.includes = &opts
	return b
}

// WithEnvPrefix enables environment overrides with the default naming.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	b.useEnv = true
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.envTransform = fn
	b.useEnv = true
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Files returns the paths of the file sources, in order.
func (b *Builder) Files() []string {
	var files []string
	for _, src := range b.sources {
		if src.kind == sourceFile {
			files = append(files, src.name)
		}
	}
	return files
}

// Build creates a fresh Config and applies every source. A fatal problem
// is returned as is, so errors.Is works on it. Missing optional files do not
// stop the build: the Config is returned together with a warnings list, which
// FatalOnly reduces to nil.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	cfg := New(b.opts...)
	collector := warnings.NewCollector(isFatal)

	for _, src := range b.sources {
		err := b.apply(cfg, src)
		if err == nil {
			continue
		}
		if isFatal(err) {
			return nil, err
		}
		if err := collector.Collect(err); err != nil {
			return nil, err
		}
	}

	if b.useEnv {
		cfg.ReadEnv(b.envPrefix, b.envTransform)
	}

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return cfg, collector.Done()
}

func (b *Builder) apply(cfg *Config, src source) error {
	switch src.kind {
	case sourceDict:
		return cfg.ReadDict(src.dict)
	case sourceText:
		return cfg.ReadString(src.text)
	case sourceFile:
		var err error
		if b.includes != nil {
			err = cfg.ReadFileWithIncludes(src.name, *b.includes)
		} else {
			err = cfg.ReadFile(src.name)
		}
		if src.optional && errors.Is(err, ErrConfigNotFound) {
			cfg.logger.Debug("optional file not found", "path", src.name)
			return missingFile{path: src.name}
		}
		return err
	default:
		return fmt.Errorf("unknown source kind %d", src.kind)
	}
}

// clone copies the builder so a Watcher can rebuild from a stable recipe.
func (b *Builder) clone() *Builder {
	cp := *b
	cp.opts = slices.Clone(b.opts)
	cp.sources = slices.Clone(b.sources)
	cp.validators = slices.Clone(b.validators)
	return &cp
}

// MustBuild is like Build but panics on a fatal error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if FatalOnly(err) != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds and decodes the options visible from section into target.
func (b *Builder) BuildAndScan(section string, target any) error {
	cfg, err := b.Build()
	if FatalOnly(err) != nil {
		return err
	}

	if err := cfg.Scan(section, target); err != nil {
		return fmt.Errorf("failed to scan final config into target: %w", err)
	}

	// warnings or nil
	return err
}
