package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, meta Meta, body string)
	}{
		{
			name: "full frontmatter with body",
			input: `---
title: "Reading list"
tags: [books, todo]
---

# Books

- [Dune](dune.md)
`,
			check: func(t *testing.T, meta Meta, body string) {
				assert.Equal(t, "Reading list", meta.Title)
				assert.Equal(t, []string{"books", "todo"}, meta.Tags)
				assert.Equal(t, "# Books\n\n- [Dune](dune.md)\n", body)
			},
		},
		{
			name:  "no frontmatter",
			input: "Just some notes without frontmatter.",
			check: func(t *testing.T, meta Meta, body string) {
				assert.Equal(t, Meta{}, meta)
				assert.Equal(t, "Just some notes without frontmatter.", body)
			},
		},
		{
			name:  "horizontal rule is not frontmatter",
			input: "---- \ntext",
			check: func(t *testing.T, meta Meta, body string) {
				assert.Equal(t, Meta{}, meta)
				assert.Equal(t, "---- \ntext", body)
			},
		},
		{
			name:    "unclosed frontmatter",
			input:   "---\ntitle: broken\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			input:   "---\ntitle: [unterminated\n---\nbody",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := ParseFrontmatter(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.input, body)
				return
			}
			require.NoError(t, err)
			tt.check(t, meta, body)
		})
	}
}

func TestDocumentTitle(t *testing.T) {
	assert.Equal(t, "From Meta", DocumentTitle("/w/a.md", "---\ntitle: From Meta\n---\n# Heading\n"))
	assert.Equal(t, "Heading", DocumentTitle("/w/a.md", "intro\n\n# Heading\n## Sub\n"))
	assert.Equal(t, "a", DocumentTitle("/w/a.md", "## only a subheading\n"))
	assert.Equal(t, "notes", DocumentTitle("/w/notes.markdown", ""))
}
