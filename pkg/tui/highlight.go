package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// highlightMarkdown renders markdown source with terminal colors. On any
// error the source comes back unstyled.
func highlightMarkdown(src, style string) string {
	if src == "" {
		return ""
	}
	var b strings.Builder
	if err := quick.Highlight(&b, src, "markdown", "terminal256", style); err != nil {
		return src
	}
	return b.String()
}
