package params

import "strings"

// aliasEntry maps every accepted spelling of a field to its canonical key.
// Order matters: when two raw keys resolve to the same canonical key, the
// one whose spelling appears earlier in this table wins.
type aliasEntry struct {
	canonical string
	aliases   []string
}

var aliasTable = []aliasEntry{
	{"command", []string{"cmd"}},
	{"url", []string{"URL", "link", "webpage"}},
	{"query", []string{"q", "keyword", "search_query"}},
	{"statement", []string{"claim", "fact", "text"}},
	{"references", []string{"refs"}},
	{"format", []string{"outputFormat", "respondWith", "responseFormat", "returnFormat"}},
	{"no_cache", []string{"noCache", "nocache"}},
	{"timeout", []string{"timeoutSeconds"}},
	{"target_selector", []string{"targetSelector", "selector"}},
	{"wait_for_selector", []string{"waitForSelector"}},
	{"remove_selector", []string{"removeSelector"}},
	{"with_links_summary", []string{"withLinksSummary", "gather_links", "gatherLinks"}},
	{"with_images_summary", []string{"withImagesSummary", "gather_images", "gatherImages"}},
	{"with_generated_alt", []string{"withGeneratedAlt", "image_caption", "imageCaption"}},
	{"with_iframe", []string{"withIframe", "enable_iframe", "enableIframe"}},
	{"with_shadow_dom", []string{"withShadowDom", "enable_shadow_dom", "enableShadowDom"}},
	{"token_budget", []string{"tokenBudget", "max_tokens"}},
	{"browser_locale", []string{"browserLocale"}},
	{"resolve_redirects", []string{"resolveRedirects"}},
	{"retain_images", []string{"retainImages"}},
	{"proxy_url", []string{"proxyUrl", "proxyURL", "proxy"}},
	{"with_favicons", []string{"withFavicons", "favicons"}},
	{"no_redirect", []string{"noRedirect"}},
	{"count", []string{"limit", "numResults"}},
	{"filetype", []string{"fileType", "file_type"}},
	{"intitle", []string{"inTitle", "in_title"}},
	{"gl", []string{"country"}},
	{"hl", []string{"language", "lang"}},
}

// boolFields accept "true"/"false" strings.
var boolFields = map[string]bool{
	"no_cache":            true,
	"with_links_summary":  true,
	"with_images_summary": true,
	"with_generated_alt":  true,
	"with_iframe":         true,
	"with_shadow_dom":     true,
	"with_favicons":       true,
	"no_redirect":         true,
	"resolve_redirects":   true,
	"stream":              true,
	"clean_content":       true,
	"sanitize_html":       true,
	"remove_html":         true,
	"strip_html":          true,
	"sanitize":            true,
	"remove_overlay":      true,
	"md_disable_bullets":  true,
}

// numericFields accept numeric strings.
var numericFields = map[string]bool{
	"timeout":         true,
	"token_budget":    true,
	"count":           true,
	"num":             true,
	"page":            true,
	"viewport_width":  true,
	"viewport_height": true,
}

// arrayFields accept a list or a comma separated string.
var arrayFields = map[string]bool{
	"site":     true,
	"ext":      true,
	"filetype": true,
	"intitle":  true,
	"loc":      true,
}

// reverseAliases is built once from aliasTable: lower-cased spelling -> canonical
// key, plus the spelling's rank in table order.
var reverseAliases = buildReverseAliases()

type aliasTarget struct {
	canonical string
	rank      int
}

func buildReverseAliases() map[string]aliasTarget {
	out := make(map[string]aliasTarget)
	rank := 0
	for _, entry := range aliasTable {
		for _, a := range entry.aliases {
			rank++
			lower := strings.ToLower(a)
			if _, exists := out[lower]; !exists {
				out[lower] = aliasTarget{canonical: entry.canonical, rank: rank}
			}
		}
	}
	return out
}
