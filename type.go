// FILE: lixenwraith/lconfig/type.go
package lconfig

import "time"

// String is Get under the name used by the other typed getters.
func (c *Config) String(sectionName, key string) (string, error) {
	return c.Get(sectionName, key)
}

// Strings returns every resolved value of an option.
func (c *Config) Strings(sectionName, key string) ([]string, error) {
	return As[[]string](c, sectionName, key, ConvStringList)
}

// Bool interprets the current value as 1/yes/true/on or 0/no/false/off.
func (c *Config) Bool(sectionName, key string) (bool, error) {
	return As[bool](c, sectionName, key, ConvBoolean)
}

// Int64 parses the current value as a decimal integer.
func (c *Config) Int64(sectionName, key string) (int64, error) {
	return As[int64](c, sectionName, key, ConvInteger)
}

// Float64 parses the current value as a floating point number.
func (c *Config) Float64(sectionName, key string) (float64, error) {
	return As[float64](c, sectionName, key, ConvReal)
}

// Duration parses the current value with time.ParseDuration.
func (c *Config) Duration(sectionName, key string) (time.Duration, error) {
	return As[time.Duration](c, sectionName, key, ConvDuration)
}

// Listing returns the comma separated tokens of all values of an option.
// Values joined by continuation lines are split on newlines as well.
func (c *Config) Listing(sectionName, key string) ([]string, error) {
	return As[[]string](c, sectionName, key, ConvListing)
}

// Lines returns the non-blank, non-comment lines of an option, keeping
// their indentation.
func (c *Config) Lines(sectionName, key string) ([]string, error) {
	return As[[]string](c, sectionName, key, ConvLines)
}
