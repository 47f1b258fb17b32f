package capabilities

import (
	"fmt"
	"strings"

	"jinaai/internal/config"
	"jinaai/internal/params"
)

type headerEntry struct {
	param  string
	header string
}

// headerTable maps canonical parameters to their wire header names. The
// names are part of the upstream contract.
var headerTable = []headerEntry{
	{"no_cache", "X-No-Cache"},
	{"timeout", "X-Timeout"},
	{"target_selector", "X-Target-Selector"},
	{"wait_for_selector", "X-Wait-For-Selector"},
	{"remove_selector", "X-Remove-Selector"},
	{"with_links_summary", "X-With-Links-Summary"},
	{"with_images_summary", "X-With-Images-Summary"},
	{"with_generated_alt", "X-With-Generated-Alt"},
	{"with_iframe", "X-With-Iframe"},
	{"with_shadow_dom", "X-Enable-Shadow-DOM"},
	{"format", "X-Return-Format"},
	{"no_redirect", "X-No-Redirect"},
	{"with_favicons", "X-With-Favicons"},
	{"token_budget", "X-Token-Budget"},
	{"browser_locale", "X-Browser-Locale"},
	{"locale", "X-Locale"},
	{"retain_images", "X-Retain-Images"},
	{"proxy_url", "X-Proxy-Url"},
	{"engine", "X-Engine"},
	{"respond_with", "X-Respond-With"},
	{"set_cookie", "X-Set-Cookie"},
	{"cookies", "X-Set-Cookie"},
	{"site", "X-Site"},
	{"ext", "X-Ext"},
	{"filetype", "X-Filetype"},
	{"intitle", "X-Intitle"},
	{"loc", "X-Loc"},
}

const (
	acceptJSON  = "application/json"
	acceptImage = "image/png, image/jpeg, image/*"
)

// buildHeaders applies the shared header step. only, when non-empty,
// restricts which parameters may become headers. Authorization is added
// when auth is set and a credential is configured.
func buildHeaders(cfg *config.Config, p params.Params, auth bool, only ...string) map[string]string {
	headers := map[string]string{
		"Content-Type": acceptJSON,
		"Accept":       acceptJSON,
	}

	allowed := func(string) bool { return true }
	if len(only) > 0 {
		set := make(map[string]bool, len(only))
		for _, k := range only {
			set[k] = true
		}
		allowed = func(k string) bool { return set[k] }
	}

	for _, e := range headerTable {
		if !allowed(e.param) || !p.Has(e.param) {
			continue
		}
		// Upstream treats flag headers as set when present, so false omits them.
		if b, ok := p.Bool(e.param); ok {
			if b {
				headers[e.header] = "true"
			}
			continue
		}
		if v := headerValue(p[e.param]); v != "" {
			headers[e.header] = v
		}
	}

	if auth && cfg.HasCredential() {
		headers["Authorization"] = "Bearer " + cfg.API.Key
	}
	return headers
}

// headerValue renders a parameter for a header; lists are joined with ", ".
func headerValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
