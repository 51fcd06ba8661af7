package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkOnLine(t *testing.T) {
	cases := []struct {
		line   string
		target string
		ok     bool
	}{
		{"see [todo](./notes/todo.md) for more", "./notes/todo.md", true},
		{"[a](first.md) and [b](second.md)", "first.md", true},
		{"[empty]()", "", true},
		{"no links here", "", false},
		{"[broken](missing-paren.md", "", false},
		{"![img](pic.png)", "pic.png", true},
	}
	for _, tc := range cases {
		got, ok := LinkOnLine(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.target, got, tc.line)
	}
}

func TestLineAt(t *testing.T) {
	text := "first\nsecond [x](x.md)\nthird"
	assert.Equal(t, "first", LineAt(text, 0))
	assert.Equal(t, "second [x](x.md)", LineAt(text, 1))
	assert.Equal(t, "", LineAt(text, 3))
	assert.Equal(t, "", LineAt(text, -1))
}

func TestIsExternal(t *testing.T) {
	assert.True(t, IsExternal("https://example.com"))
	assert.True(t, IsExternal("HTTP://example.com"))
	assert.True(t, IsExternal("file:///etc/passwd"))
	assert.False(t, IsExternal("./notes.md"))
	assert.False(t, IsExternal("/abs/path.md"))
}

func TestExtractLinks(t *testing.T) {
	src := `# Index

See [the *todo* list](./todo.md) and [elsewhere](../other.md#top).

- [external](https://example.com)
- <https://autolink.example.com>
- ![picture](img.png)

| col |
| --- |
| [in table](table.md) |
`
	links := ExtractLinks(src)
	assert.Equal(t, []Link{
		{Label: "the todo list", Target: "./todo.md"},
		{Label: "elsewhere", Target: "../other.md#top"},
		{Label: "in table", Target: "table.md"},
	}, links)
}

func TestExtractLinksEmpty(t *testing.T) {
	assert.Empty(t, ExtractLinks(""))
	assert.Empty(t, ExtractLinks("plain text only"))
}
