package capabilities

import (
	"net/http"
	"strings"

	"jinaai/internal/config"
	"jinaai/internal/logging"
	"jinaai/internal/params"
	"jinaai/internal/wire"
)

const (
	defaultSearchCount = 10
	maxSearchCount     = 20
)

// searchBodyFields are forwarded verbatim when present.
var searchBodyFields = []string{"type", "provider", "gl", "hl", "location", "page"}

// searchArrayFields are the search operators; lists stay lists in the body.
var searchArrayFields = []string{"site", "ext", "filetype", "intitle", "loc"}

// BuildSearch turns params into a Search request. Search is always a POST.
func BuildSearch(cfg *config.Config, p params.Params) *wire.CapabilityRequest {
	body := map[string]any{"q": p.Text("query")}

	count, hasCount := p.Int("count")
	num, hasNum := p.Int("num")
	switch {
	case hasCount || hasNum:
		if hasCount {
			body["count"] = clampCount(count)
		}
		if hasNum {
			body["num"] = clampCount(num)
		}
	default:
		body["count"] = defaultSearchCount
	}

	for _, k := range searchBodyFields {
		if p.Has(k) {
			body[k] = p[k]
		}
	}
	for _, k := range searchArrayFields {
		if list, ok := p.Strings(k); ok {
			body[k] = list
		}
	}

	req := &wire.CapabilityRequest{
		Capability:   wire.Search,
		Method:       http.MethodPost,
		URL:          strings.TrimRight(cfg.Endpoints.Search, "/") + "/",
		Headers:      buildHeaders(cfg, p, true),
		Body:         body,
		ResponseKind: wire.KindJSON,
		Timeout:      cfg.GetRequestTimeout(),
	}
	logging.DispatchDebug("Search request: q=%q count=%v num=%v", body["q"], body["count"], body["num"])
	return req
}

func clampCount(n int) int {
	switch {
	case n < 1:
		return 1
	case n > maxSearchCount:
		return maxSearchCount
	}
	return n
}
