package capabilities

import (
	"context"

	"jinaai/internal/config"
	"jinaai/internal/content"
	"jinaai/internal/params"
	"jinaai/internal/report"
	"jinaai/internal/tools"
	"jinaai/internal/wire"
)

// Doer sends a capability request and returns the decoded payload.
type Doer interface {
	Do(ctx context.Context, req *wire.CapabilityRequest) (wire.Payload, error)
}

// Deps are the collaborators every capability tool shares.
type Deps struct {
	Config    *config.Config
	Client    Doer
	Processor *content.Processor
}

// RegisterAll registers all capability tools with the given registry.
func RegisterAll(registry *tools.Registry, deps Deps) error {
	allTools := []*tools.Tool{
		ReaderTool(deps),
		SearchTool(deps),
		GroundingTool(deps),
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// ReaderTool reads a page through the Reader endpoint.
func ReaderTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "read_url",
		Aliases:     []string{"reader", "read"},
		Description: "Read a web page or document and return clean content",
		Capability:  wire.Reader,
		Execute: func(ctx context.Context, p params.Params) (*report.Report, error) {
			req, notices := BuildReader(deps.Config, p)
			target := p.Text("url")
			frame := content.Frame{
				Title:     "Web Content from " + target,
				Metadata:  []report.Field{{Key: "url", Value: target}},
				SourceURL: target,
			}
			r, err := run(ctx, deps, req, frame, p)
			if err != nil {
				return nil, err
			}
			for _, n := range notices {
				r.With("notice", n)
			}
			return r, nil
		},
		Schema: tools.ToolSchema{
			Required: []string{"url"},
			Properties: map[string]tools.Property{
				"url": {Type: "string", Description: "Page to read"},
				"format": {
					Type:        "string",
					Description: "Return format",
					Default:     "markdown",
					Enum:        []any{"markdown", "html", "text", "screenshot", "pageshot", "content"},
				},
				"timeout":         {Type: "integer", Description: "Upstream timeout in seconds (max 180)"},
				"target_selector": {Type: "string", Description: "CSS selector to extract"},
				"no_cache":        {Type: "boolean", Description: "Bypass upstream and local caches"},
			},
		},
	}
}

// SearchTool queries the Search endpoint.
func SearchTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "search",
		Aliases:     []string{"web_search"},
		Description: "Search the web and return ranked results",
		Capability:  wire.Search,
		Execute: func(ctx context.Context, p params.Params) (*report.Report, error) {
			query := p.Text("query")
			frame := content.Frame{
				Title:    `Search Results for "` + query + `"`,
				Metadata: []report.Field{{Key: "query", Value: query}},
			}
			return run(ctx, deps, BuildSearch(deps.Config, p), frame, p)
		},
		Schema: tools.ToolSchema{
			Required: []string{"query"},
			Properties: map[string]tools.Property{
				"query": {Type: "string", Description: "Search query"},
				"count": {Type: "integer", Description: "Number of results (1-20)", Default: defaultSearchCount},
				"site":  {Type: "array", Description: "Restrict to sites", Items: &tools.PropertyItems{Type: "string"}},
			},
		},
	}
}

// GroundingTool fact-checks a statement.
func GroundingTool(deps Deps) *tools.Tool {
	return &tools.Tool{
		Name:        "ground_statement",
		Aliases:     []string{"factcheck", "fact_check", "grounding"},
		Description: "Check a statement against web sources",
		Capability:  wire.Grounding,
		Execute: func(ctx context.Context, p params.Params) (*report.Report, error) {
			frame := content.Frame{
				Title:    "Fact Check Result",
				Metadata: []report.Field{{Key: "statement", Value: p.Text("statement")}},
			}
			return run(ctx, deps, BuildGrounding(deps.Config, p), frame, p)
		},
		Schema: tools.ToolSchema{
			Required: []string{"statement"},
			Properties: map[string]tools.Property{
				"statement": {Type: "string", Description: "Claim to verify"},
				"no_cache":  {Type: "boolean", Description: "Bypass caches"},
			},
		},
	}
}

func run(ctx context.Context, deps Deps, req *wire.CapabilityRequest, frame content.Frame, p params.Params) (*report.Report, error) {
	payload, err := deps.Client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return deps.Processor.Extract(payload, frame, p), nil
}
