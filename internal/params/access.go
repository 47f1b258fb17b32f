package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value as text. Numbers and booleans are formatted;
// lists are joined with ", ".
func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		return strings.Join(t, ", "), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return fmt.Sprint(v), true
}

// Text returns the trimmed string value or "".
func (p Params) Text(key string) string {
	s, _ := p.String(key)
	return strings.TrimSpace(s)
}

// Bool returns the boolean value; ok is false when absent or not a bool.
func (p Params) Bool(key string) (value bool, ok bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// Int returns the integer value; ok is false when absent or non-numeric.
func (p Params) Int(key string) (int, bool) {
	switch t := p[key].(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	}
	return 0, false
}

// Strings returns a list value. A plain string counts as a one-item list.
func (p Params) Strings(key string) ([]string, bool) {
	switch t := p[key].(type) {
	case []string:
		return t, len(t) > 0
	case string:
		if t = strings.TrimSpace(t); t != "" {
			return []string{t}, true
		}
	}
	return nil, false
}

// Command returns the lower-cased command name.
func (p Params) Command() string {
	return strings.ToLower(p.Text("command"))
}

// ExplicitlyFalse reports whether any of keys is set to boolean false.
func (p Params) ExplicitlyFalse(keys ...string) bool {
	for _, k := range keys {
		if b, ok := p.Bool(k); ok && !b {
			return true
		}
	}
	return false
}
