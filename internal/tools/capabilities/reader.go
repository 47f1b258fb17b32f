package capabilities

import (
	"net/http"
	"net/url"
	"strings"

	"jinaai/internal/config"
	"jinaai/internal/logging"
	"jinaai/internal/params"
	"jinaai/internal/wire"
)

// maxReaderTimeout is the upstream ceiling for X-Timeout, in seconds.
const maxReaderTimeout = 180

// formatAliases maps accepted format spellings to the Reader's return formats.
var formatAliases = map[string]string{
	"markdown":   "markdown",
	"md":         "markdown",
	"html":       "html",
	"text":       "text",
	"txt":        "text",
	"plain":      "text",
	"screenshot": "screenshot",
	"image":      "screenshot",
	"pageshot":   "pageshot",
	"full_page":  "pageshot",
	"fullpage":   "pageshot",
	"content":    "content",
}

// readerBodyFields are copied into the POST body under the given key.
var readerBodyFields = []struct {
	param string
	key   string
}{
	{"target_selector", "targetSelector"},
	{"wait_for_selector", "waitForSelector"},
	{"remove_selector", "removeSelector"},
	{"with_links_summary", "withLinksSummary"},
	{"with_images_summary", "withImagesSummary"},
	{"with_generated_alt", "withGeneratedAlt"},
	{"with_iframe", "withIframe"},
	{"with_shadow_dom", "withShadowDom"},
	{"with_favicons", "withFavicons"},
	{"token_budget", "tokenBudget"},
	{"browser_locale", "browserLocale"},
	{"locale", "locale"},
	{"retain_images", "retainImages"},
	{"proxy_url", "proxyUrl"},
	{"no_cache", "noCache"},
	{"no_redirect", "noRedirect"},
	{"resolve_redirects", "resolveRedirects"},
	{"remove_overlay", "removeOverlay"},
	{"engine", "engine"},
	{"cookies", "cookies"},
	{"set_cookie", "cookies"},
}

// imageFields need token mode.
var imageFields = []string{"with_generated_alt", "retain_images"}

// BuildReader turns params into a Reader request. The returned notices are
// non-fatal remarks for the report (dropped options).
func BuildReader(cfg *config.Config, p params.Params) (*wire.CapabilityRequest, []string) {
	p = clone(p)
	var notices []string

	target := p.Text("url")
	format := ReaderFormat(p.Text("format"))
	p["format"] = format

	if t, ok := p.Int("timeout"); ok {
		switch {
		case t < 1:
			delete(p, "timeout")
		case t > maxReaderTimeout:
			p["timeout"] = maxReaderTimeout
		default:
			p["timeout"] = t
		}
	} else {
		delete(p, "timeout")
	}

	if !cfg.API.UseTokenForReader {
		var dropped []string
		for _, f := range imageFields {
			if p.Has(f) {
				dropped = append(dropped, f)
				delete(p, f)
			}
		}
		if len(dropped) > 0 {
			notice := strings.Join(dropped, ", ") + " ignored: image options require UseTokenForReader"
			logging.DispatchWarn("Reader: %s", notice)
			notices = append(notices, notice)
		}
	}

	auth := cfg.API.UseTokenForReader
	headers := buildHeaders(cfg, p, auth)

	kind := wire.KindJSON
	if format == "screenshot" || format == "pageshot" {
		kind = wire.KindBinary
		headers["Accept"] = acceptImage
	}

	req := &wire.CapabilityRequest{
		Capability:   wire.Reader,
		Headers:      headers,
		ResponseKind: kind,
		Timeout:      cfg.GetRequestTimeout(),
	}

	base := strings.TrimRight(cfg.Endpoints.Reader, "/")
	if needsPost(p) {
		req.Method = http.MethodPost
		req.URL = base + "/"
		req.Body = readerBody(p, target)
	} else {
		req.Method = http.MethodGet
		req.URL = base + "/" + encodeURIComponent(target)
	}

	logging.DispatchDebug("Reader request: %s %s (format=%s, kind=%s)", req.Method, req.URL, format, kind)
	return req, notices
}

// ReaderFormat resolves a format spelling; unknown or empty is markdown.
func ReaderFormat(format string) string {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(format))]; ok {
		return f
	}
	return "markdown"
}

// needsPost reports whether the request carries anything a GET cannot:
// inline html or pdf, an explicit POST, viewport, cookies or markdown
// options.
func needsPost(p params.Params) bool {
	if p.Has("html") || p.Has("pdf") || strings.EqualFold(p.Text("method"), http.MethodPost) {
		return true
	}
	for key := range p {
		switch {
		case key == "viewport", strings.HasPrefix(key, "viewport_"):
			return true
		case key == "cookies", key == "set_cookie":
			return true
		case strings.HasPrefix(key, "md_"):
			return true
		}
	}
	return false
}

func readerBody(p params.Params, target string) map[string]any {
	body := map[string]any{}
	if target != "" {
		body["url"] = target
	}
	for _, k := range []string{"html", "pdf"} {
		if p.Has(k) {
			body[k] = p[k]
		}
	}
	for _, f := range readerBodyFields {
		if p.Has(f.param) {
			body[f.key] = p[f.param]
		}
	}
	if t, ok := p.Int("timeout"); ok {
		body["timeout"] = t
	}
	body["respondWith"] = p["format"]

	if vp, ok := p["viewport"].(map[string]any); ok {
		body["viewport"] = vp
	} else {
		vp := map[string]any{}
		if w, ok := p.Int("viewport_width"); ok {
			vp["width"] = w
		}
		if h, ok := p.Int("viewport_height"); ok {
			vp["height"] = h
		}
		if len(vp) > 0 {
			body["viewport"] = vp
		}
	}

	for key, v := range p {
		if strings.HasPrefix(key, "md_") {
			body[lowerCamel(key)] = v
		}
	}
	return body
}

// encodeURIComponent escapes s the way browsers do for a single path
// component: spaces become %20 and !'()* stay literal.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentFixups.Replace(escaped)
}

var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// lowerCamel turns md_heading_style into mdHeadingStyle.
func lowerCamel(key string) string {
	parts := strings.Split(key, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func clone(p params.Params) params.Params {
	out := make(params.Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
