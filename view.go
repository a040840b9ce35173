// FILE: lixenwraith/lconfig/view.go
package lconfig

import "strings"

// View addresses the options of one section that share a dotted prefix,
// using keys relative to that prefix. It holds no state of its own: reads and
// writes go straight to the underlying Config.
type View struct {
	cfg     *Config
	section string
	prefix  string
}

// Prefix returns a View of the options under prefix in a section. A prefix
// without a trailing dot gets one, so "db" and "db." are the same view.
func (c *Config) Prefix(sectionName, prefix string) View {
	return View{cfg: c, section: canonical(sectionName), prefix: joinPrefix(prefix, "")}
}

func joinPrefix(prefix, key string) string {
	if prefix != "" && !strings.HasSuffix(prefix, ".") {
		return prefix + "." + key
	}
	return prefix + key
}

// Prefix narrows the view by a further dotted prefix.
func (v View) Prefix(prefix string) View {
	return View{cfg: v.cfg, section: v.section, prefix: joinPrefix(v.prefix+prefix, "")}
}

// Keys returns the relative names of the options visible under the prefix,
// default-section options included.
func (v View) Keys() ([]string, error) {
	options, err := v.cfg.Options(v.section)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, key := range options {
		if rel, ok := strings.CutPrefix(key, v.prefix); ok && rel != "" {
			keys = append(keys, rel)
		}
	}
	return keys, nil
}

// Len returns the number of visible options under the prefix.
func (v View) Len() int {
	keys, _ := v.Keys()
	return len(keys)
}

func (v View) Has(key string) bool {
	return v.cfg.HasOption(v.section, v.prefix+key)
}

func (v View) Get(key string) (string, error) {
	return v.cfg.Get(v.section, v.prefix+key)
}

func (v View) GetAll(key string) ([]string, error) {
	return v.cfg.GetAll(v.section, v.prefix+key)
}

// Value converts an option with the converter its full key selects.
func (v View) Value(key string) (any, error) {
	return v.cfg.Value(v.section, v.prefix+key)
}

// Set assigns through the adapter selected by the full key.
func (v View) Set(key string, value any) error {
	return v.cfg.Set(v.section, v.prefix+key, value)
}

func (v View) Remove(key string) bool {
	return v.cfg.Remove(v.section, v.prefix+key)
}
