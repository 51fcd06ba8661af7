package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/mdwiki/pkg/store"
	"github.com/stefanpenner/mdwiki/pkg/wiki"
)

const minWidth = 40
const minHeight = 10

// header, separator, separator, footer
const chromeLines = 4

// panelSizes returns the tree width, the document width and the body height.
func (m Model) panelSizes() (left, right, content int) {
	w, h := m.width, m.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}
	left = w / 4
	if left < 20 {
		left = 20
	}
	right = w - left - 1 // divider
	if right < 20 {
		right = 20
	}
	return left, right, h - chromeLines
}

// View implements tea.Model.
func (m Model) View() string {
	w := m.width
	h := m.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}

	switch {
	case m.showHelpModal:
		return placeOverlay(m.renderHelpModal(), w, h)
	case m.showDeleteConfirm:
		return placeOverlay(m.renderDeleteModal(), w, h)
	case m.showDiscard:
		return placeOverlay(m.renderDiscardModal(), w, h)
	case m.showRecent:
		return placeOverlay(m.renderRecentModal(), w, h)
	}

	var b strings.Builder

	b.WriteString(m.renderHeader(w))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")

	leftWidth, rightWidth, contentHeight := m.panelSizes()
	leftPanel := m.renderTreePanel(leftWidth, contentHeight)
	rightPanel := m.renderDocPanel(rightWidth, contentHeight)

	sepColor := ColorGrayDim
	if m.focus == focusDoc {
		sepColor = ColorPurple
	}
	sep := lipgloss.NewStyle().Foreground(sepColor).Render("│")
	for i := 0; i < contentHeight; i++ {
		b.WriteString(getLine(leftPanel, i, leftWidth))
		b.WriteString(sep)
		b.WriteString(getLine(rightPanel, i, rightWidth))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(w))

	return b.String()
}

func (m Model) renderHeader(width int) string {
	title := HeaderStyle.Render("mdwiki")

	doc := m.nav.Document()
	where := ""
	switch {
	case doc.Open() && m.store != nil:
		docTitle := store.DocumentTitle(doc.Path, m.pane.source)
		where = HeaderPathStyle.Render(docTitle + " · " + m.store.Rel(doc.Path))
		if doc.Dirty {
			where += DirtyStyle.Render(" *")
		}
	case m.nav.Root() != "":
		where = HeaderPathStyle.Render(m.nav.Root())
	}

	badge := EditBadgeStyle.Render("EDIT")
	if m.nav.Mode() == wiki.ModeView {
		badge = ViewBadgeStyle.Render("VIEW")
	}

	status := ""
	if msg := m.status.current(); msg != "" {
		status = StatusStyle.Render(msg) + "  "
	}

	left := title + "  " + where
	right := status + badge
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderSearchBar(width int) string {
	prefix := SearchBarStyle.Render(" / ")
	query := SearchBarStyle.Render(m.searchQuery)
	cursor := ""
	if m.isSearching {
		cursor = SearchBarStyle.Render("█")
	}

	countStr := ""
	if m.searchQuery != "" {
		countStr = SearchCountStyle.Render(fmt.Sprintf(" %d", len(m.items)))
	}

	left := prefix + query + cursor
	padWidth := width - lipgloss.Width(left) - lipgloss.Width(countStr)
	if padWidth < 1 {
		padWidth = 1
	}
	return left + strings.Repeat(" ", padWidth) + countStr
}

func (m Model) renderTreePanel(width, height int) string {
	var lines []string

	searchActive := m.isSearching || m.searchQuery != ""
	if searchActive {
		lines = append(lines, m.renderSearchBar(width))
	}

	// Reserve last line for the root path
	treeHeight := height - 1 - len(lines)
	if treeHeight < 1 {
		treeHeight = 1
	}

	switch {
	case m.store == nil:
		lines = append(lines, FooterStyle.Render(" Press o to open a folder"))
	case len(m.items) == 0 && searchActive:
		lines = append(lines, FooterStyle.Render(" No matches"))
	case len(m.items) == 0:
		lines = append(lines, FooterStyle.Render(" Empty. Press n to add a file."))
	}

	// Scrolling window
	startIdx := 0
	endIdx := len(m.items)
	if len(m.items) > treeHeight {
		half := treeHeight / 2
		startIdx = m.cursor - half
		if startIdx < 0 {
			startIdx = 0
		}
		endIdx = startIdx + treeHeight
		if endIdx > len(m.items) {
			endIdx = len(m.items)
			startIdx = endIdx - treeHeight
			if startIdx < 0 {
				startIdx = 0
			}
		}
	}

	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, m.renderTreeItem(m.items[i], i == m.cursor, width))
	}

	for len(lines) < height-1 {
		lines = append(lines, "")
	}

	root := m.nav.Root()
	lines = append(lines, lipgloss.NewStyle().Foreground(ColorGrayDim).Render(fileHyperlink(root)))

	return strings.Join(lines, "\n")
}

func (m Model) renderTreeItem(item TreeItem, isSelected bool, width int) string {
	indent := strings.Repeat(DepthIndent, item.Depth)

	var icon string
	switch {
	case item.Node.IsDir && !item.HasChildren():
		icon = IconEmptyDir + " "
	case item.Node.IsDir && item.IsExpanded:
		icon = IconExpanded + " "
	case item.Node.IsDir:
		icon = IconCollapsed + " "
	default:
		icon = IconFile + " "
	}

	rowStyle := FileStyle
	switch {
	case item.Node.IsDir:
		rowStyle = DirStyle
	case item.Node.Path == m.nav.Document().Path:
		rowStyle = OpenFileStyle
	case !item.Node.IsMarkdown():
		rowStyle = OtherFileStyle
	}
	if isSelected {
		rowStyle = SelectedStyle
	}

	isCut := item.Node.Path == m.cutPath
	if isCut {
		icon = IconCut + " "
		rowStyle = CutStyle
	}

	name := rowStyle.Render(item.Label)
	if len(item.Matched) > 0 {
		name = highlightMatch(item.Label, item.Matched, SearchCharStyle, rowStyle)
	}

	line := indent + rowStyle.Render(icon) + name
	if lineWidth := lipgloss.Width(line); lineWidth < width {
		line += rowStyle.Render(strings.Repeat(" ", width-lineWidth))
	}
	return line
}

func (m Model) renderDocPanel(width, height int) string {
	doc := m.nav.Document()

	// Reserve last line for the file path
	bodyHeight := height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case !doc.Open():
		body = FooterStyle.Render(" Select a file to open it")
	case m.nav.Mode() == wiki.ModeView:
		body = m.pane.preview.View() + "\n" + m.renderLinkBar(width)
	case m.focus == focusDoc:
		body = m.pane.editor.View()
	default:
		body = m.pane.Highlighted()
	}

	lines := strings.Split(body, "\n")
	if len(lines) > bodyHeight {
		lines = lines[:bodyHeight]
	}
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}

	pathLine := ""
	if doc.Open() {
		pathLine = lipgloss.NewStyle().Foreground(ColorGrayDim).Render(fileHyperlink(doc.Path))
	}
	lines = append(lines, pathLine)

	return strings.Join(lines, "\n")
}

// renderLinkBar shows the preview's links with the selected one highlighted.
func (m Model) renderLinkBar(width int) string {
	if len(m.pane.links) == 0 {
		return FooterStyle.Render("no links")
	}
	parts := make([]string, 0, len(m.pane.links))
	for i, l := range m.pane.links {
		label := l.Label
		if label == "" {
			label = l.Target
		}
		if i == m.pane.linkIdx {
			parts = append(parts, ActiveLinkStyle.Render(label))
		} else {
			parts = append(parts, LinkStyle.Render(label))
		}
	}
	bar := strings.Join(parts, " ")
	if lipgloss.Width(bar) > width {
		bar = lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}
	return bar
}

func (m Model) renderFooter(width int) string {
	if m.input != inputNone {
		return InputPromptStyle.Render(inputPrompt(m.input)) + m.textInput.View()
	}

	help := m.keys.ShortHelp()
	switch {
	case m.isSearching:
		help = "type to search  ↑↓ nav  enter open  esc clear"
	case m.searchQuery != "":
		help = "esc clear filter  ↑↓ nav  enter open"
	case m.focus == focusDoc && m.nav.Mode() == wiki.ModeView:
		help = "↑↓ scroll  tab/shift+tab pick link  enter follow  ctrl+p edit  esc sidebar"
	case m.focus == focusDoc:
		help = "ctrl+s save  ctrl+g follow link  ctrl+p view  esc sidebar"
	}
	return FooterStyle.MaxWidth(width).Render(help)
}

func inputPrompt(kind inputKind) string {
	switch kind {
	case inputNewFile:
		return "New file: "
	case inputNewFolder:
		return "New folder: "
	case inputRename:
		return "Rename to: "
	case inputOpenFolder:
		return "Open folder: "
	}
	return "> "
}

func (m Model) renderHelpModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	keyStyle := ModalKeyStyle.Width(18)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	for _, binding := range m.keys.FullHelp() {
		b.WriteString(keyStyle.Render(binding[0]))
		b.WriteString(descStyle.Render(binding[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.version != "" {
		b.WriteString(FooterStyle.Render("mdwiki " + m.version))
		b.WriteString("\n")
	}
	b.WriteString(FooterStyle.Render("Press Esc or ? to close"))

	return ModalStyle.Render(b.String())
}

func (m Model) renderDeleteModal() string {
	var b strings.Builder

	name := m.deleteTarget
	if m.store != nil {
		name = m.store.Rel(m.deleteTarget)
	}

	b.WriteString(ModalTitleStyle.Render("Delete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete '%s'?\nThis cannot be undone.\n\n", name))
	b.WriteString(lipgloss.NewStyle().Foreground(ColorGreen).Render("[y]") + " Yes  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorRed).Render("[n]") + " No")

	return ModalStyle.Render(b.String())
}

func (m Model) renderDiscardModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Unsaved Changes"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("'%s' has unsaved changes.\n\n", filepath.Base(m.nav.Document().Path)))
	b.WriteString(lipgloss.NewStyle().Foreground(ColorGreen).Render("[s]") + " Save  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorRed).Render("[d]") + " Discard  ")
	b.WriteString(ModalKeyStyle.Render("[c]") + " Cancel")

	return ModalStyle.Render(b.String())
}

func (m Model) renderRecentModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Recent Folders"))
	b.WriteString("\n\n")
	for i, dir := range m.recentFolders {
		b.WriteString(ModalKeyStyle.Render(fmt.Sprintf("[%d] ", i+1)))
		b.WriteString(dir)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("Press a number to open, Esc to close"))

	return ModalStyle.Render(b.String())
}

// highlightMatch styles the bytes of name at the matched indexes with
// charStyle and the rest with rowStyle.
func highlightMatch(name string, matched []int, charStyle, rowStyle lipgloss.Style) string {
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	var run strings.Builder
	runHit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runHit {
			b.WriteString(charStyle.Render(run.String()))
		} else {
			b.WriteString(rowStyle.Render(run.String()))
		}
		run.Reset()
	}
	for i, r := range name {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

// fileHyperlink wraps a file path in an OSC 8 terminal hyperlink so it's clickable.
func fileHyperlink(path string) string {
	if path == "" {
		return ""
	}
	url := "file://" + path
	return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, path)
}

func getLine(block string, idx int, width int) string {
	lines := strings.Split(block, "\n")
	if idx < len(lines) {
		line := lines[idx]
		lineWidth := lipgloss.Width(line)
		if lineWidth < width {
			return line + strings.Repeat(" ", width-lineWidth)
		}
		return line
	}
	return strings.Repeat(" ", width)
}

func placeOverlay(modal string, width, height int) string {
	modalLines := strings.Split(modal, "\n")

	topPadding := (height - len(modalLines)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	leftPadding := (width - lipgloss.Width(modalLines[0])) / 2
	if leftPadding < 0 {
		leftPadding = 0
	}

	var result strings.Builder
	for i := 0; i < topPadding; i++ {
		result.WriteString("\n")
	}

	for _, line := range modalLines {
		result.WriteString(strings.Repeat(" ", leftPadding))
		result.WriteString(line)
		result.WriteString("\n")
	}

	return result.String()
}
