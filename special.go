// FILE: lixenwraith/lconfig/special.go
package lconfig

import "strings"

// SpecialKind tags reserved, dot-prefixed keys.
type SpecialKind int

const (
	// SpecialNone is an ordinary key.
	SpecialNone SpecialKind = iota
	// SpecialConvert names the converter for its target (".convert.<target>").
	SpecialConvert
	// SpecialAdapt names the adapter for its target (".adapt.<target>").
	SpecialAdapt
	// SpecialDefault holds the reset value used by append_default (".default.<target>").
	SpecialDefault
	// SpecialOther is any other reserved key.
	SpecialOther
)

const (
	convertPrefix = ".convert."
	adaptPrefix   = ".adapt."
	defaultPrefix = ".default."
)

// SpecialKey is a parsed reserved key. A Target ending in "." applies to
// every key under that dotted prefix; an empty Target applies to all keys.
type SpecialKey struct {
	Kind   SpecialKind
	Target string
}

// ParseSpecialKey classifies key.
func ParseSpecialKey(key string) SpecialKey {
	if !strings.HasPrefix(key, ".") {
		return SpecialKey{Kind: SpecialNone, Target: key}
	}
	for _, p := range []struct {
		prefix string
		kind   SpecialKind
	}{
		{convertPrefix, SpecialConvert},
		{adaptPrefix, SpecialAdapt},
		{defaultPrefix, SpecialDefault},
	} {
		if target, ok := strings.CutPrefix(key, p.prefix); ok {
			return SpecialKey{Kind: p.kind, Target: target}
		}
	}
	return SpecialKey{Kind: SpecialOther, Target: key}
}

// Reserved reports whether the key lives in the dot-prefixed namespace.
func (k SpecialKey) Reserved() bool {
	return k.Kind != SpecialNone
}

// handlerName finds the value of the most specific "<prefix><key>" special
// key visible from a section: the exact key first, then each enclosing dotted
// prefix ("a.b.", "a."), then the bare prefix.
func (c *Config) handlerName(sectionName, key, prefix string) (string, bool) {
	candidates := []string{prefix + key}
	parts := strings.Split(key, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		candidates = append(candidates, prefix+strings.Join(parts[:i], ".")+".")
	}
	candidates = append(candidates, prefix)

	if !c.HasSection(sectionName) {
		sectionName = DefaultSection
	}
	for _, candidate := range candidates {
		if opt, err := c.lookup(sectionName, candidate); err == nil {
			return strings.TrimSpace(opt.current()), true
		}
	}
	return "", false
}
