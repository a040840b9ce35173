// FILE: lixenwraith/lconfig/convert.go
package lconfig

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Converter maps the resolved values of an option, oldest first, to a typed
// result. Converters must be deterministic and free of side effects.
type Converter func(values []string) (any, error)

// Built-in converter names.
const (
	ConvString     = "string"
	ConvRaw        = "raw"
	ConvStringList = "stringlist"
	ConvListing    = "listing"
	ConvLines      = "lines"
	ConvBoolean    = "boolean"
	ConvInteger    = "integer"
	ConvReal       = "real"
	ConvIntList    = "intlist"
	ConvStringJoin = "stringjoin"
	ConvDuration   = "duration"
)

var builtinConverters = map[string]Converter{
	ConvString:     convertString,
	ConvRaw:        convertStringList,
	ConvStringList: convertStringList,
	ConvListing:    convertListing,
	ConvLines:      convertLines,
	ConvBoolean:    convertBoolean,
	ConvInteger:    convertInteger,
	ConvReal:       convertReal,
	ConvIntList:    convertIntList,
	ConvStringJoin: convertStringJoin,
	ConvDuration:   convertDuration,
}

// booleanStates maps accepted spellings, compared case-insensitively.
var booleanStates = map[string]bool{
	"1": true, "yes": true, "true": true, "on": true,
	"0": false, "no": false, "false": false, "off": false,
}

// Convert resolves every value of an option and passes them to the named
// converter.
func (c *Config) Convert(sectionName, key, converter string) (any, error) {
	fn, ok := c.converters[converter]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConverter, converter)
	}
	values, err := c.GetAll(sectionName, key)
	if err != nil {
		return nil, err
	}
	result, err := fn(values)
	if err != nil {
		return nil, fmt.Errorf("[%s] %s: %w", canonical(sectionName), key, err)
	}
	return result, nil
}

// Value converts an option with the converter named by the most specific
// ".convert." key visible from the section, or "string" when none is set.
// Reserved keys always use "string".
func (c *Config) Value(sectionName, key string) (any, error) {
	converter := ConvString
	if !ParseSpecialKey(key).Reserved() {
		if name, ok := c.handlerName(canonical(sectionName), key, convertPrefix); ok && name != "" {
			converter = name
		}
	}
	return c.Convert(sectionName, key, converter)
}

// As runs the named converter and asserts its result to T.
func As[T any](c *Config, sectionName, key, converter string) (T, error) {
	var zero T
	val, err := c.Convert(sectionName, key, converter)
	if err != nil {
		return zero, err
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: converter %q returned %T, want %T", ErrConversion, converter, val, zero)
	}
	return typed, nil
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func convertString(values []string) (any, error) {
	return last(values), nil
}

func convertStringList(values []string) (any, error) {
	return slices.Clone(values), nil
}

func convertStringJoin(values []string) (any, error) {
	return strings.Join(values, "\n"), nil
}

func convertListing(values []string) (any, error) {
	return splitListing(strings.Join(values, "\n")), nil
}

func convertLines(values []string) (any, error) {
	return splitLines(strings.Join(values, "\n")), nil
}

func convertBoolean(values []string) (any, error) {
	return parseBool(last(values))
}

func convertInteger(values []string) (any, error) {
	return parseInt(last(values))
}

func convertReal(values []string) (any, error) {
	s := strings.TrimSpace(last(values))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot convert %q to float64", ErrConversion, s)
	}
	return f, nil
}

func convertIntList(values []string) (any, error) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		n, err := parseInt(v)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func convertDuration(values []string) (any, error) {
	s := strings.TrimSpace(last(values))
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot convert %q to duration", ErrConversion, s)
	}
	return d, nil
}

func parseBool(s string) (bool, error) {
	b, ok := booleanStates[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return false, fmt.Errorf("%w: cannot convert %q to bool", ErrConversion, s)
	}
	return b, nil
}

// parseInt is decimal only, so zero-padded values are not read as octal.
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot convert %q to int64", ErrConversion, s)
	}
	return n, nil
}

// splitListing splits on commas and newlines, trims each token and drops
// empty ones.
func splitListing(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// splitLines returns the non-blank, non-comment lines of s, unstripped.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == commentChar {
			continue
		}
		out = append(out, line)
	}
	if out == nil {
		out = []string{}
	}
	return out
}
