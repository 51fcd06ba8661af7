package wiki

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// inlineLinkRe matches an inline markdown link and captures its target.
var inlineLinkRe = regexp.MustCompile(`\[.*?\]\((.*?)\)`)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Link is a navigable link found in a rendered document.
type Link struct {
	Label  string
	Target string
}

// LinkOnLine returns the target of the first inline link on line.
func LinkOnLine(line string) (string, bool) {
	m := inlineLinkRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LineAt returns the row-th line of text, or "" when row is out of range.
func LineAt(text string, row int) string {
	lines := strings.Split(text, "\n")
	if row < 0 || row >= len(lines) {
		return ""
	}
	return lines[row]
}

// IsExternal reports whether a link points outside the file system tree and
// must never be navigated.
func IsExternal(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(t, "http://") ||
		strings.HasPrefix(t, "https://") ||
		strings.HasPrefix(t, "file://")
}

// ExtractLinks walks the parsed document and returns its inline links in
// document order, skipping external ones. Autolinks and images are not
// collected.
func ExtractLinks(src string) []Link {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var links []Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		l, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		target := string(l.Destination)
		if target == "" || IsExternal(target) {
			return ast.WalkSkipChildren, nil
		}
		links = append(links, Link{
			Label:  linkLabel(l, source),
			Target: target,
		})
		return ast.WalkSkipChildren, nil
	})
	return links
}

func linkLabel(n ast.Node, source []byte) string {
	var b bytes.Buffer
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(source))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			default:
				collect(c)
			}
		}
	}
	collect(n)
	return b.String()
}
