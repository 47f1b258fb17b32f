package capabilities

import (
	"net/http"
	"strings"

	"jinaai/internal/config"
	"jinaai/internal/params"
	"jinaai/internal/wire"
)

// BuildGrounding turns params into a Grounding request. Only the statement
// and the no_cache flag are forwarded.
func BuildGrounding(cfg *config.Config, p params.Params) *wire.CapabilityRequest {
	return &wire.CapabilityRequest{
		Capability:   wire.Grounding,
		Method:       http.MethodPost,
		URL:          strings.TrimRight(cfg.Endpoints.Grounding, "/") + "/",
		Headers:      buildHeaders(cfg, p, true, "no_cache"),
		Body:         map[string]any{"statement": p.Text("statement")},
		ResponseKind: wire.KindJSON,
		Timeout:      cfg.GetRequestTimeout(),
	}
}
