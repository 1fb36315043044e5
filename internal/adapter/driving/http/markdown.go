package httphandler

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Bitbucket Server renders a single newline in a comment as a line break,
// so hard wraps are on. Linkify matches its bare-URL handling.
var (
	commentMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe()),
	)
	commentPolicy = newCommentPolicy()
)

func newCommentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// commentHTML renders comment text as sanitized HTML for the textHtml
// member. Text that fails to convert is escaped and returned as-is.
func commentHTML(text string) string {
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := commentMarkdown.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}

	return commentPolicy.Sanitize(buf.String())
}
