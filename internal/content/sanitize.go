package content

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// cleanupFlags disable sanitation when any of them is explicitly false.
var cleanupFlags = []string{"clean_content", "sanitize_html", "remove_html", "strip_html", "sanitize"}

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	noisyAttr   = regexp.MustCompile(`(?i)\s+(?:style|class|id|data-[\w-]+|on\w+)\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)

	spaceRun   = regexp.MustCompile(`[ \t\r\f\v]+`)
	lineEdges  = regexp.MustCompile(` ?\n ?`)
	blankLines = regexp.MustCompile(`\n{3,}`)
	anySpace   = regexp.MustCompile(`\s+`)
)

// entities is the fixed set decoded after tag removal. Anything else is left
// as written.
var entities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// blockTags become line breaks when stripped so paragraphs stay apart.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"tr": true, "table": true, "section": true, "article": true, "header": true,
	"footer": true, "blockquote": true, "pre": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Sanitize strips markup from an upstream body: script and style blocks,
// noisy attributes and comments first, then every remaining tag. Whitespace
// is collapsed (paragraph breaks survive) and a fixed set of entities is
// decoded. Plain text only has its whitespace normalized.
func Sanitize(s string) string {
	s = scriptBlock.ReplaceAllString(s, "")
	s = styleBlock.ReplaceAllString(s, "")
	s = noisyAttr.ReplaceAllString(s, "")
	s = htmlComment.ReplaceAllString(s, "")
	s = stripTags(escapeStrayBrackets(s))
	return entities.Replace(collapseWhitespace(s))
}

// stripTags drops every tag and keeps text bytes exactly as written, so
// entity decoding stays limited to the fixed set above.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Raw())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				sb.WriteByte('\n')
			}
		}
	}
}

// escapeStrayBrackets rewrites every "<" that is not closed by a ">" before
// the next "<" as "&lt;". The tokenizer would otherwise read "x<y ..." as a
// tag running to the end of input and drop the rest of the text.
func escapeStrayBrackets(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && !closesTag(s[i+1:]) {
			sb.WriteString("&lt;")
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func closesTag(rest string) bool {
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return false
	}
	next := strings.IndexByte(rest, '<')
	return next < 0 || next > end
}

func collapseWhitespace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = lineEdges.ReplaceAllString(s, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// flatten collapses every whitespace run, newlines included, to one space.
func flatten(s string) string {
	return strings.TrimSpace(anySpace.ReplaceAllString(s, " "))
}
