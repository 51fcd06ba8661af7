package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ParseFrontmatter splits a page into YAML frontmatter and body. Pages
// without frontmatter return a zero Meta and the content unchanged.
func ParseFrontmatter(content string) (Meta, string, error) {
	trimmed := strings.TrimLeft(content, "\ufeff\r\n")
	if !strings.HasPrefix(trimmed, frontmatterDelimiter+"\n") && !strings.HasPrefix(trimmed, frontmatterDelimiter+"\r\n") {
		return Meta{}, content, nil
	}

	rest := trimmed[len(frontmatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx == -1 {
		return Meta{}, content, fmt.Errorf("unclosed frontmatter delimiter")
	}

	yamlContent := rest[:idx]
	body := rest[idx+len("\n"+frontmatterDelimiter):]
	body = strings.TrimLeft(body, "\r\n")

	var meta Meta
	if err := yaml.Unmarshal([]byte(yamlContent), &meta); err != nil {
		return Meta{}, content, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}
	return meta, body, nil
}

// DocumentTitle picks a display title: frontmatter title, then the first
// level-one heading, then the file name without extension.
func DocumentTitle(path, content string) string {
	meta, body, err := ParseFrontmatter(content)
	if err == nil && strings.TrimSpace(meta.Title) != "" {
		return strings.TrimSpace(meta.Title)
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
