package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Enter      key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Sidebar    key.Binding
	Save       key.Binding
	ToggleMode key.Binding
	FollowLink key.Binding
	NewFile    key.Binding
	NewFolder  key.Binding
	Rename     key.Binding
	Delete     key.Binding
	Cut        key.Binding
	Paste      key.Binding
	OpenFolder key.Binding
	Recent     key.Binding
	Search     key.Binding
	External   key.Binding
	Reload     key.Binding
	Sync       key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "collapse"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "expand"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous link"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "focus sidebar"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		// ctrl+` arrives as ctrl+@ on most terminals.
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+@", "ctrl+p"),
			key.WithHelp("ctrl+`/ctrl+p", "edit/view"),
		),
		FollowLink: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "follow link"),
		),
		NewFile: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new file"),
		),
		NewFolder: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "new folder"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r", "f2"),
			key.WithHelp("r/f2", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Cut: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cut"),
		),
		Paste: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "paste"),
		),
		OpenFolder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open folder"),
		),
		Recent: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "recent folders"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		External: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "$EDITOR"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		Sync: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "git sync"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the footer help text.
func (k KeyMap) ShortHelp() string {
	return "↑↓ nav  enter open  tab pane  ctrl+s save  ctrl+p view  n/N new  r rename  x/p move  o open  / search  ? help"
}

// FullHelp returns all key bindings for the help modal.
func (k KeyMap) FullHelp() [][]string {
	return [][]string{
		{"↑/k ↓/j", "Move / scroll"},
		{"←/h →/l", "Collapse / expand"},
		{"enter", "Open file, toggle folder, follow link"},
		{"tab", "Switch pane (next link in view mode)"},
		{"shift+tab", "Previous link in view mode"},
		{"esc", "Focus sidebar"},
		{"ctrl+s", "Save"},
		{"ctrl+` / ctrl+p", "Toggle edit/view mode"},
		{"ctrl+g", "Follow link on the cursor line"},
		{"n / N", "New file / folder"},
		{"r / f2", "Rename"},
		{"d / delete", "Delete (with confirmation)"},
		{"x / p", "Cut / paste into folder"},
		{"o", "Open wiki folder"},
		{"O", "Open recent folder"},
		{"/", "Fuzzy find file"},
		{"E", "Edit in $EDITOR"},
		{"R", "Reload tree"},
		{"S", "Git sync the wiki folder"},
		{"?", "Toggle help"},
		{"q / ctrl+c", "Quit"},
	}
}
