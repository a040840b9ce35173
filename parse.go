// FILE: lixenwraith/lconfig/parse.go
package lconfig

// staged is one value waiting to be committed to a section.
type staged struct {
	section string
	key     string
	value   string
}

// batch accumulates the effect of one source so it can be validated in full
// before the Config is touched.
type batch struct {
	headers []string // sections declared, in order
	values  []staged
}

func (b *batch) commit(c *Config) {
	for _, name := range b.headers {
		c.ensureSection(name)
	}
	for _, v := range b.values {
		c.ensureSection(v.section).append(v.key, v.value)
	}
}

// apply stages a classified event stream and commits it only if every line
// is valid. A failed source leaves the Config exactly as it was.
func (c *Config) apply(source string, events []Event) error {
	var (
		b       batch
		current = DefaultSection
		last    = -1 // index in b.values continued by EventContinue
		seen    = make(map[string]bool)
	)

	fail := func(ev Event, kind error) error {
		return &ParseError{Source: source, Line: ev.Line, Text: ev.Text, Err: kind}
	}

	for _, ev := range events {
		switch ev.Kind {
		case EventSection:
			if seen[ev.Name] && c.strict {
				return fail(ev, ErrDuplicateSection)
			}
			if !seen[ev.Name] {
				seen[ev.Name] = true
				b.headers = append(b.headers, ev.Name)
			}
			current = ev.Name
			last = -1

		case EventAssign:
			if !isValidKey(ev.Key) {
				return fail(ev, ErrInvalidKey)
			}
			b.values = append(b.values, staged{section: current, key: ev.Key, value: ev.Value})
			last = len(b.values) - 1

		case EventContinue:
			if last < 0 {
				return fail(ev, ErrInvalidKey)
			}
			b.values[last].value += "\n" + ev.Value

		case EventBlank, EventComment:
			// no state change
		}
	}

	b.commit(c)
	c.logger.Debug("applied source",
		"source", source,
		"sections", len(b.headers),
		"values", len(b.values))
	return nil
}
