// FILE: lixenwraith/lconfig/section.go
package lconfig

// option is one key of a section with its raw values, oldest first.
type option struct {
	key    string
	values []string
}

// current returns the value used for single-valued access.
func (o *option) current() string {
	if len(o.values) == 0 {
		return ""
	}
	return o.values[len(o.values)-1]
}

// section keeps options in insertion order with an index for lookup.
type section struct {
	name    string
	options []*option
	index   map[string]*option
}

func newSection(name string) *section {
	return &section{
		name:  name,
		index: make(map[string]*option),
	}
}

func (s *section) get(key string) (*option, bool) {
	opt, ok := s.index[key]
	return opt, ok
}

// append adds value as a new list entry, creating the option if needed.
func (s *section) append(key, value string) {
	opt, ok := s.index[key]
	if !ok {
		opt = &option{key: key}
		s.options = append(s.options, opt)
		s.index[key] = opt
	}
	opt.values = append(opt.values, value)
}

// set replaces the value list. The option keeps its position if it exists.
func (s *section) set(key string, values []string) {
	stored := append([]string(nil), values...)
	if opt, ok := s.index[key]; ok {
		opt.values = stored
		return
	}
	opt := &option{key: key, values: stored}
	s.options = append(s.options, opt)
	s.index[key] = opt
}

func (s *section) remove(key string) bool {
	if _, ok := s.index[key]; !ok {
		return false
	}
	delete(s.index, key)
	for i, opt := range s.options {
		if opt.key == key {
			s.options = append(s.options[:i], s.options[i+1:]...)
			break
		}
	}
	return true
}

func (s *section) keys() []string {
	keys := make([]string, 0, len(s.options))
	for _, opt := range s.options {
		keys = append(keys, opt.key)
	}
	return keys
}

func (s *section) clone() *section {
	cp := newSection(s.name)
	for _, opt := range s.options {
		cp.set(opt.key, opt.values)
	}
	return cp
}
