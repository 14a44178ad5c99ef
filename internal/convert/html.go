package convert

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gerunddev/keepbridge/internal/keep"
)

// richTags are the elements Keep's rich text can carry that have a
// Markdown equivalent. Everything else is stripped, keeping its text.
var richTags = []string{
	"b", "strong", "i", "em", "u", "s", "del",
	"br", "p", "div", "span",
	"ul", "ol", "li",
	"h1", "h2", "h3",
	"blockquote", "code", "pre",
}

var richTagPattern = regexp.MustCompile(`(?i)</?(?:b|strong|i|em|u|s|del|a|br|p|div|span|ul|ol|li|h[1-3]|blockquote|code|pre)(?:\s[^<>]*)?/?>`)

// formattingPattern matches markup that changes how text reads, as opposed
// to the paragraph and line-break wrappers Keep puts around everything.
var formattingPattern = regexp.MustCompile(`(?i)<(?:b|strong|i|em|s|del|a|ul|ol|h[1-3]|blockquote|code|pre)(?:\s[^<>]*)?>`)

var (
	richPolicy  = newRichPolicy()
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(richTags...)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	return p
}

// looksLikeHTML reports whether plain text carries inline markup worth
// translating.
func looksLikeHTML(s string) bool {
	return richTagPattern.MatchString(s)
}

// htmlToMarkdown translates rich text into Markdown. Unsupported elements
// are dropped before conversion so they never show up as literal tags.
func htmlToMarkdown(html string) (string, error) {
	clean := richPolicy.Sanitize(html)
	md, err := mdConverter.ConvertString(clean)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// renderText renders a free-text body. Keep ships an HTML twin of every
// text note; it is only used when it carries formatting the plain text
// lost. Plain text that embeds markup itself is translated too. A failed
// conversion falls back to the plain text.
func renderText(c keep.TextContent) string {
	html := ""
	switch {
	case formattingPattern.MatchString(c.HTML):
		html = c.HTML
	case strings.TrimSpace(c.Text) == "" && strings.TrimSpace(c.HTML) != "":
		html = c.HTML
	case looksLikeHTML(c.Text):
		html = strings.ReplaceAll(c.Text, "\n", "<br>\n")
	}
	if html != "" {
		if md, err := htmlToMarkdown(html); err == nil && md != "" {
			return md
		}
	}
	return strings.TrimRight(c.Text, "\r\n")
}
