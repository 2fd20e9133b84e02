// Package page turns a fetched site page into an indexable document.
package page

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
	"github.com/oswaldlabs/sitechat/internal/extractors/markdown"
)

// Extract normalises one fetched page body (HTML or markdown) into at
// most one document. The ID is the canonicalised absolute URL. Pages
// whose body is empty after stripping yield zero documents.
func Extract(origin, path, body string) []domain.Document {
	canonical := CanonicalURL(origin, path)
	if canonical == "" {
		return nil
	}

	var title, text string
	if looksLikeHTML(body) {
		title = extractHTMLTitle(body)
		text = stripHTML(body)
	} else {
		title = extractMarkdownTitle(body)
		text = markdown.Strip(body)
	}

	text = collapseWhitespace(text)
	if text == "" {
		return nil
	}

	if title == "" {
		title = titleFromPath(path)
	}

	return []domain.Document{{
		ID:    canonical,
		Title: title,
		URL:   canonical,
		Text:  text,
		Kind:  domain.SourceSitePage,
	}}
}

// CanonicalURL joins origin and path into the absolute URL used as the
// document identity. Query and fragment are dropped so the same page is
// never indexed twice under different references.
func CanonicalURL(origin, path string) string {
	u, err := url.Parse(strings.TrimRight(origin, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	return u.String()
}

// looksLikeHTML reports whether the body contains markup tags.
func looksLikeHTML(body string) bool {
	return allTags.MatchString(body)
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Tag             = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags            = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags           = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)
	whitespace        = regexp.MustCompile(`\s+`)
)

// extractHTMLTitle pulls a title from the <title> tag or the first <h1>.
func extractHTMLTitle(content string) string {
	for _, re := range []*regexp.Regexp{titleTag, h1Tag} {
		matches := re.FindStringSubmatch(content)
		if len(matches) > 1 {
			title := strings.TrimSpace(html.UnescapeString(allTags.ReplaceAllString(matches[1], "")))
			if title != "" {
				return title
			}
		}
	}
	return ""
}

// extractMarkdownTitle pulls a title from the first H1 heading.
func extractMarkdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// titleFromPath derives a readable label from the route itself.
func titleFromPath(path string) string {
	name := strings.Trim(path, "/")
	if name == "" {
		return "/"
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// stripHTML removes HTML tags and extracts readable text content.
func stripHTML(content string) string {
	// Remove script, style, noscript, head, and svg blocks entirely
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become whitespace so words don't run together
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	return content
}

// collapseWhitespace folds all whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
