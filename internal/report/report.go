// Package report renders the uniform markdown block every command returns.
package report

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field is one metadata line. Order of insertion is order of rendering.
type Field struct {
	Key   string
	Value any
}

// Report is a title, ordered metadata and a content body.
type Report struct {
	Title    string
	Metadata []Field
	Content  string
}

// New creates a report with the given title.
func New(title string) *Report {
	return &Report{Title: title}
}

// With appends a metadata field and returns the report for chaining.
func (r *Report) With(key string, value any) *Report {
	r.Metadata = append(r.Metadata, Field{Key: key, Value: value})
	return r
}

// WithContent sets the body.
func (r *Report) WithContent(content string) *Report {
	r.Content = content
	return r
}

// Get returns the first metadata value stored under key.
func (r *Report) Get(key string) (any, bool) {
	for _, f := range r.Metadata {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Render formats the report:
//
//	### Title
//
//	**Key:** value
//
//	**Content:**
//
//	body
func (r *Report) Render() string {
	var sb strings.Builder
	sb.WriteString("### ")
	sb.WriteString(r.Title)
	sb.WriteString("\n\n")

	for _, f := range r.Metadata {
		value, ok := formatValue(f.Value)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "**%s:** %s\n", TitleCase(f.Key), value)
	}

	sb.WriteString("\n**Content:**\n\n")
	sb.WriteString(r.Content)
	return sb.String()
}

// String implements fmt.Stringer.
func (r *Report) String() string { return r.Render() }

// formatValue renders a metadata value; ok is false when it should be hidden.
func formatValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, strings.TrimSpace(t) != ""
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return strings.Join(t, ", "), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		if rv.IsNil() {
			return "", false
		}
	case reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 {
			return "", false
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", "), true
	}
	return fmt.Sprint(v), true
}

// TitleCase turns a snake_case key into "Title Case".
func TitleCase(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
