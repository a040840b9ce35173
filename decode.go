// FILE: lixenwraith/lconfig/decode.go
package lconfig

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// validate checks `validate` struct tags after Scan. It caches struct
// metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Scan decodes the options visible from a section into target, which must be
// a non-nil pointer. Dotted keys become nested structs or maps ("db.host"
// fills the Host field of a DB field). Every value is resolved first; slice
// fields take the listing of all values, scalar fields the current value.
// Struct targets are then checked against their `validate` tags.
func (c *Config) Scan(sectionName string, target any) error {
	return c.ScanPrefix(sectionName, "", target)
}

// ScanPrefix is Scan restricted to the keys under a dotted prefix.
func (c *Config) ScanPrefix(sectionName, prefix string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	sectionName = canonical(sectionName)
	nested, err := c.nestedValues(sectionName)
	if err != nil {
		return err
	}

	sectionData := navigateToPath(nested, prefix)
	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		if sectionData == nil {
			sectionMap = make(map[string]any)
		} else {
			return fmt.Errorf("path %q refers to non-map value (type %T)", prefix, sectionData)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          c.tagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for [%s] %q: %w", sectionName, prefix, err)
	}

	if reflect.Indirect(rv).Kind() == reflect.Struct {
		if err := validate.Struct(target); err != nil {
			return fmt.Errorf("validation failed for [%s]: %w", sectionName, err)
		}
	}
	return nil
}

// nestedValues resolves every visible option of a section into a nested map
// of []string leaves.
func (c *Config) nestedValues(sectionName string) (map[string]any, error) {
	keys, err := c.Options(sectionName)
	if err != nil {
		return nil, err
	}
	nested := make(map[string]any, len(keys))
	for _, key := range keys {
		values, err := c.GetAll(sectionName, key)
		if err != nil {
			return nil, err
		}
		setNestedValue(nested, key, values)
	}
	return nested, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		multiValueHookFunc(),

		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
	)
}

var ipType = reflect.TypeOf(net.IP{})

// multiValueHookFunc collapses a stored value list: slice targets receive the
// listing tokens of all values, everything else the current value.
func multiValueHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		values, ok := data.([]string)
		if !ok {
			return data, nil
		}
		if (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t != ipType {
			return splitListing(strings.Join(values, "\n")), nil
		}
		return last(values), nil
	}
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != ipType {
			return data, nil
		}

		str := strings.TrimSpace(data.(string))
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}
		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}

		str := strings.TrimSpace(data.(string))
		if len(str) > 49 { // Max IPv6 CIDR length
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}

// navigateToPath traverses nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(path, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}
	return current
}
