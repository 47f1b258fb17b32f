package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is the closed set of response shapes. Exactly one of TextPayload,
// HitListPayload, ObjectPayload or BinaryPayload.
type Payload interface {
	isPayload()
}

// TextPayload is a plain or markup body.
type TextPayload struct {
	Text        string
	ContentType string
}

// HitListPayload is an ordered list of search hits.
type HitListPayload struct {
	Hits []Hit
}

// ObjectPayload is a single structured object.
type ObjectPayload struct {
	Fields map[string]any
}

// BinaryPayload is raw image bytes.
type BinaryPayload struct {
	Data        []byte
	ContentType string
}

func (TextPayload) isPayload()    {}
func (HitListPayload) isPayload() {}
func (ObjectPayload) isPayload()  {}
func (BinaryPayload) isPayload()  {}

// Hit is one search result. Raw is set instead of the other fields when the
// list element was not an object.
type Hit struct {
	Title         string
	URL           string
	Description   string
	Text          string
	Content       string
	ParsedContent string
	Date          string
	ScreenshotURL string
	PageshotURL   string
	Tokens        int
	Raw           string
}

// DecodePayload classifies an upstream body. Image content types and binary
// requests yield BinaryPayload; JSON bodies are unwrapped from the
// {code, status, data} envelope and classified by the shape of data;
// anything else is text.
func DecodePayload(kind ResponseKind, contentType string, body []byte) Payload {
	ct := strings.ToLower(contentType)
	if kind == KindBinary || strings.HasPrefix(ct, "image/") {
		if strings.HasPrefix(ct, "image/") || !looksLikeJSON(body) {
			return BinaryPayload{Data: body, ContentType: contentType}
		}
	}

	var decoded any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return TextPayload{Text: string(body), ContentType: contentType}
	}

	return classify(unwrapEnvelope(decoded), contentType)
}

// unwrapEnvelope returns data from {code, status, data, ...} responses.
func unwrapEnvelope(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	data, hasData := obj["data"]
	_, hasCode := obj["code"]
	_, hasStatus := obj["status"]
	if hasData && (hasCode || hasStatus) && data != nil {
		return data
	}
	return v
}

func classify(v any, contentType string) Payload {
	switch t := v.(type) {
	case []any:
		hits := make([]Hit, 0, len(t))
		for _, item := range t {
			hits = append(hits, hitFrom(item))
		}
		return HitListPayload{Hits: hits}
	case map[string]any:
		return ObjectPayload{Fields: t}
	case string:
		return TextPayload{Text: t, ContentType: contentType}
	case nil:
		return TextPayload{ContentType: contentType}
	}
	return TextPayload{Text: fmt.Sprint(v), ContentType: contentType}
}

func hitFrom(item any) Hit {
	obj, ok := item.(map[string]any)
	if !ok {
		if item == nil {
			return Hit{Raw: ""}
		}
		return Hit{Raw: fmt.Sprint(item)}
	}

	h := Hit{
		Title:         Str(obj["title"]),
		URL:           Str(obj["url"]),
		Description:   Str(obj["description"]),
		Text:          Str(obj["text"]),
		Content:       Str(obj["content"]),
		Date:          firstNonEmpty(Str(obj["date"]), Str(obj["publishedTime"])),
		ScreenshotURL: Str(obj["screenshotUrl"]),
		PageshotURL:   Str(obj["pageshotUrl"]),
	}
	if parsed, ok := obj["parsed"].(map[string]any); ok {
		h.ParsedContent = Str(parsed["content"])
	}
	if usage, ok := obj["usage"].(map[string]any); ok {
		h.Tokens = IntOf(usage["tokens"])
	}
	return h
}

// Str renders scalar JSON values as text; objects and arrays are encoded.
func Str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool, float64, int:
		return fmt.Sprint(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// IntOf reads a JSON number as an int; anything else is 0.
func IntOf(v any) int {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(t)
	case int:
		return t
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func looksLikeJSON(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
