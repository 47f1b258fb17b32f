// Package params canonicalizes loosely typed caller input.
//
// Normalize resolves every accepted spelling of a field to one canonical
// snake_case key and coerces string-typed booleans, numbers and lists into
// their declared types. It never fails: values it cannot coerce are kept as
// given so the capability builders can decide what to do with them.
package params

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"jinaai/internal/logging"
)

// Params is a normalized request: canonical key -> string, int, float64,
// bool, []string, or any other JSON value passed through untouched.
type Params map[string]any

// canonicalNames holds every canonical key named by the alias table.
var canonicalNames = func() map[string]bool {
	out := make(map[string]bool, len(aliasTable))
	for _, entry := range aliasTable {
		out[entry.canonical] = true
	}
	return out
}()

// Normalize maps raw input to canonical keys and types.
// Normalize(Normalize(x)) equals Normalize(x).
func Normalize(raw map[string]any) Params {
	type candidate struct {
		rawKey string
		rank   int
	}
	winners := make(map[string]candidate, len(raw))

	// Sorted iteration keeps tie-breaking deterministic.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		canonical, rank := Resolve(k)
		if canonical == "" {
			continue
		}
		if prev, ok := winners[canonical]; ok && prev.rank <= rank {
			logging.NormalizeDebug("Ignoring %q: %s already set by %q", k, canonical, prev.rawKey)
			continue
		}
		if canonical != k {
			logging.NormalizeDebug("Resolved %q -> %s", k, canonical)
		}
		winners[canonical] = candidate{rawKey: k, rank: rank}
	}

	out := make(Params, len(winners))
	for canonical, c := range winners {
		v := coerce(canonical, raw[c.rawKey])
		if s, ok := v.(string); ok && (boolFields[canonical] || numericFields[canonical]) {
			logging.NormalizeDebug("Kept %s=%q as given: not coercible", canonical, s)
		}
		out[canonical] = v
	}
	return out
}

// Resolve returns the canonical key for a raw spelling and its precedence
// rank (lower wins). The exact canonical spelling ranks 0.
func Resolve(key string) (string, int) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", 0
	}
	if canonicalNames[key] {
		return key, 0
	}

	lower := strings.ToLower(key)
	if canonicalNames[lower] {
		return lower, 1
	}
	if target, ok := reverseAliases[lower]; ok {
		return target.canonical, 1 + target.rank
	}

	snake := ToSnake(key)
	if canonicalNames[snake] {
		return snake, 1
	}
	if target, ok := reverseAliases[snake]; ok {
		return target.canonical, 1 + target.rank
	}
	if snake == key {
		return snake, 0
	}
	return snake, 1
}

// ToSnake converts camelCase to snake_case by inserting an underscore before
// every upper-case letter that does not start the key, then lower-casing.
func ToSnake(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func coerce(key string, v any) any {
	switch {
	case arrayFields[key]:
		return toList(v)
	case boolFields[key]:
		return toBool(v)
	case numericFields[key]:
		return toNumber(v)
	}
	if n, ok := v.(json.Number); ok {
		return numberValue(n)
	}
	if f, ok := v.(float64); ok {
		return integral(f)
	}
	return v
}

func toBool(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func toNumber(v any) any {
	switch n := v.(type) {
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
		return v
	case json.Number:
		return numberValue(n)
	case float64:
		return integral(n)
	case int64:
		return int(n)
	}
	return v
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return integral(f)
	}
	return n.String()
}

// integral turns whole floats (as decoded from JSON) into ints.
func integral(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
		return int(f)
	}
	return f
}

func toList(v any) any {
	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case []any:
		parts = make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			parts = append(parts, fmt.Sprint(item))
		}
	case string:
		parts = strings.Split(t, ",")
	default:
		return v
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
