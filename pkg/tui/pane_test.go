package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stefanpenner/mdwiki/pkg/config"
)

func TestExpandTabs(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"no tabs", "plain", 4, "plain"},
		{"leading", "\tx", 4, "    x"},
		{"to next stop", "ab\tc", 4, "ab  c"},
		{"on a stop", "abcd\te", 4, "abcd    e"},
		{"resets per line", "a\tb\n\tc", 2, "a b\n  c"},
		{"wide runes", "日\tx", 4, "日  x"},
		{"zero width keeps tabs", "\tx", 0, "\tx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expandTabs(tc.in, tc.width))
		})
	}
}

func TestLoadUsesConfiguredTabWidth(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Editor.TabWidth = 2
	p := newDocPane(cfg)

	p.Load("/wiki/a.md", "- item\n\t- nested\n")
	assert.Equal(t, "- item\n  - nested\n", p.Content())
	assert.NotContains(t, p.Highlighted(), "\t")
}
