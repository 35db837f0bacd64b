package writer

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// maxSynopsisLen caps the synopsis shown in summary tables.
const maxSynopsisLen = 200

var md = goldmark.New()

func parseMarkdown(source []byte) ast.Node {
	return md.Parser().Parse(text.NewReader(source))
}

// OpensWithTitle reports whether the first block of a markdown document is a
// level-1 heading. Leading blank lines are ignored by the parser.
func OpensWithTitle(content string) bool {
	doc := parseMarkdown([]byte(content))
	first := doc.FirstChild()
	if first == nil {
		return false
	}
	heading, ok := first.(*ast.Heading)
	return ok && heading.Level == 1
}

// Synopsis returns the plain text of the first paragraph following the first
// heading of content. Without any heading, the first paragraph is used.
// The result is collapsed to one line and truncated to maxSynopsisLen runes.
func Synopsis(content string) string {
	source := []byte(content)
	doc := parseMarkdown(source)

	var firstPara, afterHeading ast.Node
	seenHeading := false
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindHeading:
			seenHeading = true
		case ast.KindParagraph:
			if firstPara == nil {
				firstPara = n
			}
			if seenHeading && afterHeading == nil {
				afterHeading = n
			}
		}
		if afterHeading != nil {
			break
		}
	}

	para := afterHeading
	if para == nil && !seenHeading {
		para = firstPara
	}
	if para == nil {
		return ""
	}
	return truncate(strings.Join(strings.Fields(extractText(para, source)), " "), maxSynopsisLen)
}

// extractText collects the text segments beneath n, including those nested
// inside emphasis, links and code spans.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}
