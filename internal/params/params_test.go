package params

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"jinaai/internal/logging"
)

func TestNormalize_AliasEquivalence(t *testing.T) {
	for _, spelling := range []string{"url", "URL", "Url", "link", "LINK", "webpage", "WebPage"} {
		got := Normalize(map[string]any{spelling: "https://example.com"})
		want := Params{"url": "https://example.com"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("spelling %q (-want +got):\n%s", spelling, diff)
		}
	}
}

func TestNormalize_AliasTable(t *testing.T) {
	raw := map[string]any{
		"command":          "reader",
		"q":                "golang",
		"claim":            "water is wet",
		"noCache":          "true",
		"targetSelector":   "#main",
		"gatherLinks":      "false",
		"imageCaption":     true,
		"enableShadowDom":  "TRUE",
		"tokenBudget":      "25000",
		"browserLocale":    "en-US",
		"outputFormat":     "markdown",
		"retainImages":     "alt",
		"withFavicons":     "true",
		"waitForSelector":  ".ready",
		"removeSelector":   "nav, footer",
		"resolveRedirects": "true",
	}

	want := Params{
		"command":            "reader",
		"query":              "golang",
		"statement":          "water is wet",
		"no_cache":           true,
		"target_selector":    "#main",
		"with_links_summary": false,
		"with_generated_alt": true,
		"with_shadow_dom":    true,
		"token_budget":       25000,
		"browser_locale":     "en-US",
		"format":             "markdown",
		"retain_images":      "alt",
		"with_favicons":      true,
		"wait_for_selector":  ".ready",
		"remove_selector":    "nav, footer",
		"resolve_redirects":  true,
	}

	if diff := cmp.Diff(want, Normalize(raw)); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_UnknownKeysBecomeSnake(t *testing.T) {
	got := Normalize(map[string]any{
		"viewportWidth": "1280",
		"someFlag":      "x",
		"Provider":      "google",
		"already_snake": 1,
	})
	want := Params{
		"viewport_width": 1280,
		"some_flag":      "x",
		"provider":       "google",
		"already_snake":  1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNormalize_BooleanCoercion(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{" True ", true},
		{true, true},
		{"yes", "yes"},
		{"", ""},
	}
	for _, tt := range tests {
		got := Normalize(map[string]any{"no_cache": tt.in})["no_cache"]
		if got != tt.want {
			t.Errorf("no_cache=%#v: got %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_NumericCoercion(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"45", 45},
		{float64(30), 30},
		{json.Number("12"), 12},
		{"soon", "soon"},
		{"4.5", "4.5"},
		{float64(2.5), 2.5},
	}
	for _, tt := range tests {
		got := Normalize(map[string]any{"timeout": tt.in})["timeout"]
		if got != tt.want {
			t.Errorf("timeout=%#v: got %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_ArrayFields(t *testing.T) {
	got := Normalize(map[string]any{
		"site":     "github.com, arxiv.org,, ",
		"filetype": []any{"pdf", " docx "},
		"ext":      []string{"go"},
		"loc":      "",
	})
	want := Params{
		"site":     []string{"github.com", "arxiv.org"},
		"filetype": []string{"pdf", "docx"},
		"ext":      []string{"go"},
		"loc":      []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []map[string]any{
		{"command": "Reader", "URL": "https://a.b", "noCache": "true", "timeout": "200"},
		{"q": "x", "count": "3", "site": "a.com,b.com", "withFavicons": "nope"},
		{"claim": "c", "gatherImages": "false", "fooBarBaz": []any{1, 2}},
		{"text": "t", "tokenBudget": float64(100), "page": json.Number("2")},
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(map[string]any(once))
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("not idempotent for %v (-once +twice):\n%s", in, diff)
		}
	}
}

func TestNormalize_CanonicalBeatsAlias(t *testing.T) {
	got := Normalize(map[string]any{
		"url":     "https://canonical.example",
		"URL":     "https://upper.example",
		"webpage": "https://alias.example",
	})
	if got["url"] != "https://canonical.example" {
		t.Errorf("canonical spelling should win, got %v", got["url"])
	}

	got = Normalize(map[string]any{
		"webpage": "https://later.example",
		"link":    "https://earlier.example",
	})
	if got["url"] != "https://earlier.example" {
		t.Errorf("earlier alias should win, got %v", got["url"])
	}
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"targetSelector": "target_selector",
		"Provider":       "provider",
		"already_snake":  "already_snake",
		"x":              "x",
		"mdHeadingStyle": "md_heading_style",
	}
	for in, want := range tests {
		if got := ToSnake(in); got != want {
			t.Errorf("ToSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAccessors(t *testing.T) {
	p := Normalize(map[string]any{
		"command":  " READER ",
		"count":    "7",
		"no_cache": "false",
		"site":     "a.com, b.com",
		"url":      "  https://x.y  ",
	})

	if p.Command() != "reader" {
		t.Errorf("Command() = %q", p.Command())
	}
	if n, ok := p.Int("count"); !ok || n != 7 {
		t.Errorf("Int(count) = %d, %v", n, ok)
	}
	if b, ok := p.Bool("no_cache"); !ok || b {
		t.Errorf("Bool(no_cache) = %v, %v", b, ok)
	}
	if s, _ := p.String("site"); s != "a.com, b.com" {
		t.Errorf("String(site) = %q", s)
	}
	if p.Text("url") != "https://x.y" {
		t.Errorf("Text(url) = %q", p.Text("url"))
	}
	if !p.ExplicitlyFalse("clean_content", "no_cache") {
		t.Error("ExplicitlyFalse should see no_cache=false")
	}
	if p.Has("missing") {
		t.Error("Has(missing) should be false")
	}
}

func TestNormalize_LogsResolution(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.InitializeWith(zap.New(core), logging.Settings{DebugMode: true})
	t.Cleanup(func() { logging.InitializeWith(zap.NewNop(), logging.Settings{}) })

	Normalize(map[string]any{"targetSelector": "#a", "no_cache": "maybe"})

	want := map[string]bool{
		`Resolved "targetSelector" -> target_selector`:  false,
		`Kept no_cache="maybe" as given: not coercible`: false,
	}
	for _, entry := range logs.All() {
		if _, ok := want[entry.Message]; ok {
			want[entry.Message] = true
		}
	}
	for msg, seen := range want {
		if !seen {
			t.Errorf("missing normalize log %q", msg)
		}
	}
}
