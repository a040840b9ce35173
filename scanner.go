// FILE: lixenwraith/lconfig/scanner.go
package lconfig

import (
	"bufio"
	"io"
	"strings"
)

// EventKind classifies a single normalized source line.
type EventKind int

const (
	EventBlank EventKind = iota
	EventComment
	EventSection
	EventAssign
	EventContinue
)

func (k EventKind) String() string {
	switch k {
	case EventBlank:
		return "blank"
	case EventComment:
		return "comment"
	case EventSection:
		return "section"
	case EventAssign:
		return "assign"
	case EventContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// Event is one classified line. Name is set for section headers, Key and
// Value for assignments, Value alone for continuations.
type Event struct {
	Kind  EventKind
	Line  int
	Text  string
	Name  string
	Key   string
	Value string
}

const (
	commentChar = '#'
	assignChar  = "="
	bom         = "\uFEFF"

	// maxLineSize bounds a single physical line.
	maxLineSize = 1 << 20
)

// Scanner turns raw text into a stream of Events. Classification is purely
// lexical: key validity and continuation targets are checked when the events
// are applied to a Config.
type Scanner struct {
	lines *bufio.Scanner
	event Event
	line  int
	err   error
}

// NewScanner returns a Scanner reading lines from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Scanner{lines: s}
}

// Scan advances to the next event. It returns false at end of input or on
// the first invalid line; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil || !s.lines.Scan() {
		if s.err == nil {
			s.err = s.lines.Err()
		}
		return false
	}
	s.line++
	raw := s.lines.Text()
	if s.line == 1 {
		raw = strings.TrimPrefix(raw, bom)
	}
	ev, err := classify(raw, s.line)
	if err != nil {
		s.err = err
		return false
	}
	s.event = ev
	return true
}

// Event returns the event produced by the last successful Scan.
func (s *Scanner) Event() Event {
	return s.event
}

// Err returns the first error met, or nil at a clean end of input.
func (s *Scanner) Err() error {
	return s.err
}

// ScanLines classifies a slice of lines.
func ScanLines(lines []string) ([]Event, error) {
	events := make([]Event, 0, len(lines))
	for i, raw := range lines {
		if i == 0 {
			raw = strings.TrimPrefix(raw, bom)
		}
		ev, err := classify(raw, i+1)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func classify(raw string, line int) (Event, error) {
	text := strings.TrimSpace(raw)
	ev := Event{Line: line, Text: text}

	switch {
	case text == "":
		ev.Kind = EventBlank
		return ev, nil
	case text[0] == commentChar:
		ev.Kind = EventComment
		return ev, nil
	case len(text) >= 2 && text[0] == '[' && text[len(text)-1] == ']':
		name := text[1 : len(text)-1]
		if name == "" {
			return ev, &ParseError{Line: line, Text: text, Err: ErrInvalidLine}
		}
		ev.Kind = EventSection
		ev.Name = name
		return ev, nil
	}

	key, value, found := strings.Cut(text, assignChar)
	if !found {
		return ev, &ParseError{Line: line, Text: text, Err: ErrInvalidLine}
	}
	ev.Key = strings.TrimSpace(key)
	ev.Value = strings.TrimSpace(value)
	if ev.Key == "" {
		ev.Kind = EventContinue
	} else {
		ev.Kind = EventAssign
	}
	return ev, nil
}
