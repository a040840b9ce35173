// FILE: lixenwraith/lconfig/interpolate.go
package lconfig

import (
	"errors"
	"strings"
)

// ref identifies one (section, option) pair on the resolution stack. owner is
// the section that actually holds the value: the default section when the
// lookup fell back to it.
type ref struct {
	section string
	option  string
	owner   string
}

func (r ref) String() string {
	return r.section + ":" + r.option
}

// Get returns the current value of an option with every reference resolved.
func (c *Config) Get(sectionName, key string) (string, error) {
	sectionName = canonical(sectionName)
	opt, err := c.lookup(sectionName, key)
	if err != nil {
		return "", err
	}
	return c.resolve(opt.current(), []ref{c.refOf(sectionName, key)})
}

// GetFallback is Get with a value returned when the section or option does
// not exist. The fallback applies to this lookup only: a reference to an
// absent option inside the value still fails.
func (c *Config) GetFallback(sectionName, key, fallback string) (string, error) {
	val, err := c.Get(sectionName, key)
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return fallback, nil
	}
	return val, err
}

// GetAll returns every value of an option, oldest first, each resolved.
func (c *Config) GetAll(sectionName, key string) ([]string, error) {
	sectionName = canonical(sectionName)
	opt, err := c.lookup(sectionName, key)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(opt.values))
	root := c.refOf(sectionName, key)
	for _, raw := range opt.values {
		val, err := c.resolve(raw, []ref{root})
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// Interpolate resolves references in an arbitrary string as if it were a
// value stored in sectionName.
func (c *Config) Interpolate(sectionName, raw string) (string, error) {
	sectionName = canonical(sectionName)
	return c.resolve(raw, []ref{{section: sectionName, owner: sectionName}})
}

// refOf names an existing option and records which section holds it.
func (c *Config) refOf(sectionName, key string) ref {
	r := ref{section: sectionName, option: key, owner: sectionName}
	if sec, ok := c.index[sectionName]; ok {
		if _, own := sec.get(key); !own {
			r.owner = DefaultSection
		}
	}
	return r
}

// resolve expands raw, which belongs to the pair on top of stack. Nothing is
// cached; each call walks the raw data again.
func (c *Config) resolve(raw string, stack []ref) (string, error) {
	if !strings.Contains(raw, "$") {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); {
		j := strings.IndexByte(raw[i:], '$')
		if j < 0 {
			b.WriteString(raw[i:])
			break
		}
		b.WriteString(raw[i : i+j])
		i += j

		if i+1 == len(raw) {
			b.WriteByte('$')
			break
		}
		switch raw[i+1] {
		case '$':
			b.WriteByte('$')
			i += 2
		case '{':
			end := strings.IndexByte(raw[i+2:], '}')
			if end < 0 {
				return "", interpolationError(stack, raw[i+2:], ErrInterpolationSyntax)
			}
			body := raw[i+2 : i+2+end]
			val, err := c.expand(body, stack)
			if err != nil {
				return "", err
			}
			b.WriteString(val)
			i += end + 3
		default:
			b.WriteByte('$')
			i++
		}
	}
	return b.String(), nil
}

// expand resolves one reference body. Unqualified names are looked up in the
// section holding the value being expanded, then in the default section.
// Cycles are detected on the pairs that hold the values.
func (c *Config) expand(body string, stack []ref) (string, error) {
	top := stack[len(stack)-1]
	section, option := top.owner, body
	if idx := strings.LastIndexByte(body, ':'); idx >= 0 {
		section, option = canonical(body[:idx]), body[idx+1:]
	}
	if !isValidKey(option) {
		return "", interpolationError(stack, body, ErrInterpolationSyntax)
	}

	opt, err := c.lookup(section, option)
	if err != nil {
		return "", interpolationError(stack, body, ErrInterpolationMissing)
	}
	target := c.refOf(section, option)
	for _, r := range stack {
		if r.owner == target.owner && r.option == target.option {
			return "", interpolationError(append(stack, target), body, ErrInterpolationCycle)
		}
	}
	return c.resolve(opt.current(), append(stack, target))
}

func interpolationError(stack []ref, reference string, kind error) error {
	// the value being expanded is the last pair that is not the failing target
	owner := stack[len(stack)-1]
	if errors.Is(kind, ErrInterpolationCycle) && len(stack) > 1 {
		owner = stack[len(stack)-2]
	}
	chain := make([]string, 0, len(stack))
	for _, r := range stack {
		chain = append(chain, r.String())
	}
	return &InterpolationError{
		Section:   owner.section,
		Option:    owner.option,
		Reference: reference,
		Chain:     chain,
		Err:       kind,
	}
}
