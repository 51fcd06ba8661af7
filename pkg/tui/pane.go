package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/stefanpenner/mdwiki/pkg/config"
	"github.com/stefanpenner/mdwiki/pkg/wiki"
)

// docPane is the right-hand side: a textarea for Edit mode and a rendered,
// scrollable preview for View mode. It is the Navigator's Editor, so it is
// held by pointer and survives Model copies.
type docPane struct {
	editor  textarea.Model
	preview viewport.Model

	// Cached glamour renderer (expensive to create)
	renderer      *glamour.TermRenderer
	rendererWidth int
	style         string
	wordWrap      int
	tabWidth      int

	highlightStyle string
	highlightSrc   string
	highlightOut   string

	path    string
	source  string // markdown currently in the preview
	links   []wiki.Link
	linkIdx int // -1 when no link is selected
}

func newDocPane(cfg *config.Config) *docPane {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Placeholder = "Open a file from the sidebar"

	return &docPane{
		editor:         ta,
		preview:        viewport.New(20, 5),
		style:          cfg.Preview.Style,
		wordWrap:       cfg.Preview.WordWrap,
		tabWidth:       cfg.Editor.TabWidth,
		highlightStyle: cfg.Editor.HighlightStyle,
		linkIdx:        -1,
	}
}

// Load implements wiki.Editor. Tabs are expanded to the configured width,
// since the textarea would otherwise replace each with a fixed run of spaces.
func (p *docPane) Load(path, content string) {
	p.path = path
	p.editor.SetValue(expandTabs(content, p.tabWidth))
	for p.editor.Line() > 0 {
		p.editor.CursorUp()
	}
	p.editor.CursorStart()
}

// Content implements wiki.Editor.
func (p *docPane) Content() string {
	return p.editor.Value()
}

// Preview implements wiki.Editor.
func (p *docPane) Preview(content string) {
	p.source = content
	p.links = wiki.ExtractLinks(content)
	p.linkIdx = -1
	p.preview.SetContent(p.render(content))
	p.preview.GotoTop()
}

// SetSize lays the pane out in width x height cells.
func (p *docPane) SetSize(width, height int) {
	p.editor.SetWidth(width)
	p.editor.SetHeight(height)
	p.preview.Width = width
	p.preview.Height = height - 1 // link bar
	if p.preview.Height < 1 {
		p.preview.Height = 1
	}

	wrap := width - 2
	if p.wordWrap > 0 && p.wordWrap < wrap {
		wrap = p.wordWrap
	}
	if wrap < 20 {
		wrap = 20
	}
	if p.rendererFor(wrap) != nil {
		offset := p.preview.YOffset
		p.preview.SetContent(p.render(p.source))
		p.preview.SetYOffset(offset)
	}
}

// rendererFor returns a cached glamour renderer, creating one if needed or if
// the width changed.
func (p *docPane) rendererFor(width int) *glamour.TermRenderer {
	if p.renderer != nil && p.rendererWidth == width {
		return p.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(p.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	p.renderer = r
	p.rendererWidth = width
	return r
}

func (p *docPane) render(content string) string {
	if content == "" {
		return ""
	}
	if p.renderer == nil {
		return content
	}
	out, err := p.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n ")
}

// CycleLink moves the preview's link selection by delta, wrapping around.
func (p *docPane) CycleLink(delta int) (wiki.Link, bool) {
	if len(p.links) == 0 {
		return wiki.Link{}, false
	}
	switch {
	case p.linkIdx < 0 && delta > 0:
		p.linkIdx = 0
	case p.linkIdx < 0:
		p.linkIdx = len(p.links) - 1
	default:
		p.linkIdx = (p.linkIdx + delta + len(p.links)) % len(p.links)
	}
	return p.links[p.linkIdx], true
}

// ActiveLink is the link selected in the preview, if any.
func (p *docPane) ActiveLink() (wiki.Link, bool) {
	if p.linkIdx < 0 || p.linkIdx >= len(p.links) {
		return wiki.Link{}, false
	}
	return p.links[p.linkIdx], true
}

// CursorLine is the editor line under the cursor.
func (p *docPane) CursorLine() string {
	return wiki.LineAt(p.editor.Value(), p.editor.Line())
}

// Highlighted returns the buffer as highlighted source, cached on content.
func (p *docPane) Highlighted() string {
	src := p.editor.Value()
	if src != p.highlightSrc || p.highlightOut == "" {
		p.highlightSrc = src
		p.highlightOut = highlightMarkdown(src, p.highlightStyle)
	}
	return p.highlightOut
}

// expandTabs replaces tabs with spaces up to the next multiple of width,
// counting display columns.
func expandTabs(s string, width int) string {
	if width < 1 || !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col += runewidth.RuneWidth(r)
		}
	}
	return b.String()
}
