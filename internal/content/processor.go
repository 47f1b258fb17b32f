// Package content turns a decoded upstream payload into a report. It never
// fails: every payload shape has a rendering, and image persistence problems
// degrade to an inline base64 preview.
package content

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"jinaai/internal/logging"
	"jinaai/internal/params"
	"jinaai/internal/report"
	"jinaai/internal/wire"
)

// base64PreviewLen is how much of the encoded image the fallback shows.
const base64PreviewLen = 100

// fallbackFields are tried in order for objects without a title or content.
var fallbackFields = []string{"data", "content", "text", "result", "message", "body"}

// ImageSaver persists screenshot bytes and returns their public URL.
type ImageSaver interface {
	Configured() bool
	Save(data []byte, sourceURL, ext string) (string, error)
}

// Frame is what the calling capability knows before the response arrives:
// the default title, the metadata it wants shown, and the URL an image
// belongs to.
type Frame struct {
	Title     string
	Metadata  []report.Field
	SourceURL string
}

// Processor renders payloads. A nil store always uses the base64 fallback.
type Processor struct {
	store ImageSaver
}

// NewProcessor creates a processor backed by store.
func NewProcessor(store ImageSaver) *Processor {
	return &Processor{store: store}
}

// Extract renders payload under frame. p carries the caller's parameters,
// which decide whether text is sanitized.
func (p *Processor) Extract(payload wire.Payload, frame Frame, args params.Params) *report.Report {
	switch pl := payload.(type) {
	case wire.TextPayload:
		return p.text(pl, frame, args)
	case wire.HitListPayload:
		logging.ContentDebug("Rendering %d hits for %q", len(pl.Hits), frame.Title)
		return frameReport(frame).WithContent(renderHits(pl.Hits))
	case wire.ObjectPayload:
		return p.object(pl.Fields, frame)
	case wire.BinaryPayload:
		return p.binary(pl, frame)
	case nil:
		return frameReport(frame)
	}
	logging.ContentWarn("Unhandled payload type %T", payload)
	return frameReport(frame).WithContent(fmt.Sprint(payload))
}

func (p *Processor) text(pl wire.TextPayload, frame Frame, args params.Params) *report.Report {
	body := pl.Text
	if args.ExplicitlyFalse(cleanupFlags...) {
		logging.ContentDebug("Sanitation disabled by caller")
	} else {
		body = Sanitize(body)
	}
	return frameReport(frame).WithContent(body)
}

func (p *Processor) object(fields map[string]any, frame Frame) *report.Report {
	title := wire.Str(fields["title"])

	if shot := firstString(fields, "screenshotUrl", "pageshotUrl"); shot != "" {
		source := firstNonEmpty(wire.Str(fields["url"]), frame.SourceURL)
		r := report.New("Screenshot for " + firstNonEmpty(title, frame.SourceURL, frame.Title))
		r.With("url", wire.Str(fields["url"]))
		r.With("image_url", shot)
		r.With("description", wire.Str(fields["description"]))
		return r.WithContent(fmt.Sprintf(
			"An image has been generated. Please display it to the user.\n\n<img src=%q alt=%q style=\"max-width: 100%%; height: auto;\" />",
			shot, "Screenshot of "+source))
	}

	if title != "" || wire.Str(fields["content"]) != "" {
		r := report.New(firstNonEmpty(title, frame.Title))
		metadata := merge(frame.Metadata,
			report.Field{Key: "url", Value: wire.Str(fields["url"])},
			report.Field{Key: "description", Value: wire.Str(fields["description"])},
			report.Field{Key: "token_usage", Value: tokenUsage(fields)},
			report.Field{Key: "published_time", Value: wire.Str(fields["publishedTime"])},
		)
		r.Metadata = metadata
		body := firstNonEmpty(wire.Str(fields["content"]), wire.Str(fields["html"]))
		if body == "" {
			body = dump(fields)
		}
		return r.WithContent(body)
	}

	for _, key := range fallbackFields {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			logging.ContentDebug("Object content taken from %q", key)
			return frameReport(frame).WithContent(s)
		}
	}

	return frameReport(frame).WithContent(dump(fields))
}

func (p *Processor) binary(pl wire.BinaryPayload, frame Frame) *report.Report {
	ext := extensionFor(pl.ContentType)
	r := report.New("Screenshot Result").With("url", firstNonEmpty(frame.SourceURL, "N/A"))

	if p.store != nil && p.store.Configured() {
		imageURL, err := p.store.Save(pl.Data, frame.SourceURL, ext)
		if err == nil {
			r.With("image_url", imageURL)
			return r.WithContent(fmt.Sprintf(
				"An image has been generated. Please display it to the user.\n\n<img src=%q alt=%q width=\"400\">",
				imageURL, "Screenshot of "+firstNonEmpty(frame.SourceURL, "website")))
		}
		logging.ContentWarn("Failed to persist screenshot, using base64 fallback: %v", err)
	} else {
		logging.ContentDebug("Image store not configured, using base64 fallback")
	}

	mime := pl.ContentType
	if !strings.HasPrefix(strings.ToLower(mime), "image/") {
		mime = "image/" + ext
	}
	encoded := base64.StdEncoding.EncodeToString(pl.Data)
	if len(encoded) > base64PreviewLen {
		encoded = encoded[:base64PreviewLen]
	}
	return r.WithContent(fmt.Sprintf("Screenshot generated (Base64 fallback):\n`data:%s;base64,%s...`", mime, encoded))
}

// extensionFor picks png, jpeg, jpg, webp or gif from a content type.
func extensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	for _, ext := range []string{"png", "jpeg", "jpg", "webp", "gif"} {
		if strings.Contains(ct, ext) {
			return ext
		}
	}
	return "png"
}

func frameReport(frame Frame) *report.Report {
	r := report.New(frame.Title)
	r.Metadata = append(r.Metadata, frame.Metadata...)
	return r
}

// merge overlays extra onto base: a non-empty extra value replaces the base
// value of the same key, new keys are appended.
func merge(base []report.Field, extra ...report.Field) []report.Field {
	out := append([]report.Field(nil), base...)
	for _, f := range extra {
		if s, ok := f.Value.(string); ok && s == "" {
			continue
		}
		replaced := false
		for i := range out {
			if out[i].Key == f.Key {
				out[i].Value = f.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}

func tokenUsage(fields map[string]any) any {
	usage, ok := fields["usage"].(map[string]any)
	if !ok {
		return nil
	}
	if n := wire.IntOf(usage["tokens"]); n > 0 {
		return n
	}
	return nil
}

func dump(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := wire.Str(fields[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
