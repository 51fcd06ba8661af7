package tui

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stefanpenner/mdwiki/pkg/config"
	"github.com/stefanpenner/mdwiki/pkg/settings"
	"github.com/stefanpenner/mdwiki/pkg/store"
	gsync "github.com/stefanpenner/mdwiki/pkg/sync"
	"github.com/stefanpenner/mdwiki/pkg/wiki"
)

// SyncDoneMsg is sent when git sync completes.
type SyncDoneMsg struct {
	Result gsync.Result
	Err    error
}

// EditorFinishedMsg is sent when $EDITOR returns.
type EditorFinishedMsg struct {
	Path string
	Err  error
}

var clipboardWrite = clipboard.WriteAll

const statusTTL = 4 * time.Second

type focus int

const (
	focusSidebar focus = iota
	focusDoc
)

type inputKind int

const (
	inputNone inputKind = iota
	inputNewFile
	inputNewFolder
	inputRename
	inputOpenFolder
)

// statusLine is the Navigator's Reporter.
type statusLine struct {
	msg string
	at  time.Time
}

func (s *statusLine) Status(msg string) {
	s.msg = msg
	s.at = time.Now()
}

func (s *statusLine) current() string {
	if s.msg == "" || time.Since(s.at) > statusTTL {
		return ""
	}
	return s.msg
}

// pendingOp runs once the unsaved-changes prompt allows it.
type pendingOp func(m *Model) tea.Cmd

// Model is the Bubble Tea model for the wiki TUI.
type Model struct {
	keys    KeyMap
	cfg     *config.Config
	logger  *slog.Logger
	recent  *settings.File
	watcher *Watcher
	version string

	nav    *wiki.Navigator
	pane   *docPane
	status *statusLine
	store  *store.Store // nil until a wiki folder is open

	width    int
	height   int
	nodes    []*store.Node
	expanded map[string]bool
	items    []TreeItem
	cursor   int
	focus    focus

	// Modal state
	showHelpModal     bool
	showDeleteConfirm bool
	deleteTarget      string
	showDiscard       bool
	pending           pendingOp
	showRecent        bool
	recentFolders     []string

	// Prompt for names and folders
	input       inputKind
	textInput   textinput.Model
	inputTarget string

	// Search state
	isSearching bool
	searchQuery string

	cutPath string
}

// Option configures a Model.
type Option func(*Model)

// WithConfig sets the user configuration.
func WithConfig(cfg *config.Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithRecent sets where recently opened folders are kept.
func WithRecent(f *settings.File) Option {
	return func(m *Model) { m.recent = f }
}

// WithWatcher makes the model point w at every folder it opens.
func WithWatcher(w *Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithVersion sets the version shown in the help modal.
func WithVersion(v string) Option {
	return func(m *Model) { m.version = v }
}

// NewModel creates a new TUI model. With an empty root the most recently
// opened folder is reopened, if there is one.
func NewModel(root string, opts ...Option) Model {
	m := Model{
		keys:     DefaultKeyMap(),
		cfg:      config.NewDefaultConfig(),
		logger:   slog.New(slog.DiscardHandler),
		status:   &statusLine{},
		expanded: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&m)
	}

	ti := textinput.New()
	ti.CharLimit = 255
	m.textInput = ti
	m.pane = newDocPane(m.cfg)

	navOpts := []wiki.Option{
		wiki.WithReporter(m.status),
		wiki.WithLogger(m.logger),
	}
	if m.recent != nil {
		navOpts = append(navOpts, wiki.WithHistory(m.recent))
	}
	m.nav = wiki.NewNavigator(nil, m.pane, navOpts...)

	if root == "" {
		root = m.mostRecent()
	}
	if root != "" {
		m.openRoot(root)
	} else {
		m.status.Status("Press o to open a wiki folder")
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, tea.ClearScreen

	case FileChangedMsg:
		if m.store != nil && msg.Root == m.store.Root {
			m.reload()
			m.refreshOpenDocument()
		}
		return m, nil

	case SyncDoneMsg:
		if msg.Err != nil {
			m.status.Status("Sync failed: " + msg.Err.Error())
		} else {
			m.status.Status(msg.Result.Summary())
			m.reload()
			m.refreshOpenDocument()
		}
		return m, nil

	case EditorFinishedMsg:
		if msg.Err != nil {
			m.status.Status("Editor failed: " + msg.Err.Error())
		}
		m.reload()
		if msg.Path != "" && msg.Path == m.nav.Document().Path {
			m.refreshOpenDocument()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Cursor blink and friends
	var cmd tea.Cmd
	switch {
	case m.input != inputNone:
		m.textInput, cmd = m.textInput.Update(msg)
	case m.focus == focusDoc && m.nav.Mode() == wiki.ModeEdit:
		m.pane.editor, cmd = m.pane.editor.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input != inputNone {
		return m.handleInput(msg)
	}

	if m.isSearching {
		return m.handleSearchInput(msg)
	}

	if m.showHelpModal {
		switch msg.String() {
		case "esc", "enter", "?", "q":
			m.showHelpModal = false
		}
		return m, nil
	}

	if m.showDiscard {
		switch msg.String() {
		case "s", "S":
			cmd := m.settle(wiki.ChoiceSave)
			return m, cmd
		case "d", "D":
			cmd := m.settle(wiki.ChoiceDiscard)
			return m, cmd
		case "c", "C", "esc":
			cmd := m.settle(wiki.ChoiceCancel)
			return m, cmd
		}
		return m, nil
	}

	if m.showDeleteConfirm {
		switch msg.String() {
		case "y", "Y":
			m.deleteSelected()
			m.showDeleteConfirm = false
		case "n", "N", "esc":
			m.showDeleteConfirm = false
		}
		return m, nil
	}

	if m.showRecent {
		return m.handleRecent(msg)
	}

	// Keys that work in every pane
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		cmd := m.guarded(quitOp)
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil

	case key.Matches(msg, m.keys.ToggleMode):
		m.toggleMode()
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		if m.searchQuery != "" {
			m.clearSearch()
			return m, nil
		}
		m.focusSidebar()
		m.status.Status("Sidebar focused")
		return m, nil
	}

	if m.focus == focusDoc {
		if m.nav.Mode() == wiki.ModeView {
			return m.handlePreview(msg)
		}
		return m.handleEditor(msg)
	}
	return m.handleSidebar(msg)
}

// handleEditor handles keys while the textarea has focus.
func (m Model) handleEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.focusSidebar()
		return m, nil

	case key.Matches(msg, m.keys.FollowLink):
		target, ok := wiki.LinkOnLine(m.pane.CursorLine())
		if !ok {
			m.status.Status("No link on this line")
			return m, nil
		}
		cmd := m.follow(target)
		return m, cmd
	}

	if !m.nav.Document().Open() {
		return m, nil
	}
	before := m.pane.editor.Value()
	var cmd tea.Cmd
	m.pane.editor, cmd = m.pane.editor.Update(msg)
	if m.pane.editor.Value() != before {
		m.nav.MarkDirty()
	}
	return m, cmd
}

// handlePreview handles keys while the rendered preview has focus.
func (m Model) handlePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
		delta := 1
		if key.Matches(msg, m.keys.ShiftTab) {
			delta = -1
		}
		if link, ok := m.pane.CycleLink(delta); ok {
			m.status.Status("Link: " + link.Label + " → " + link.Target)
		} else {
			m.status.Status("No links in this document")
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		link, ok := m.pane.ActiveLink()
		if !ok {
			m.status.Status("No link selected, press tab to pick one")
			return m, nil
		}
		cmd := m.follow(link.Target)
		return m, cmd

	case key.Matches(msg, m.keys.Quit):
		cmd := m.guarded(quitOp)
		return m, cmd
	}

	var cmd tea.Cmd
	m.pane.preview, cmd = m.pane.preview.Update(msg)
	return m, cmd
}

func (m Model) handleSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		cmd := m.guarded(quitOp)
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Right):
		if item, ok := m.selected(); ok && item.Node.IsDir {
			m.expanded[item.ID()] = true
			m.rebuildVisible()
		}

	case key.Matches(msg, m.keys.Left):
		if item, ok := m.selected(); ok {
			if item.IsExpanded {
				m.expanded[item.ID()] = false
				m.rebuildVisible()
			} else if item.Node.Parent != nil {
				m.selectPath(item.Node.Parent.Path)
			}
		}

	case key.Matches(msg, m.keys.Enter):
		item, ok := m.selected()
		if !ok {
			break
		}
		if item.Node.IsDir {
			m.expanded[item.ID()] = !m.expanded[item.ID()]
			m.rebuildVisible()
			break
		}
		m.clearSearch()
		cmd := m.open(item.Node.Path)
		return m, cmd

	case key.Matches(msg, m.keys.Tab):
		cmd := m.focusDoc()
		return m, cmd

	case key.Matches(msg, m.keys.NewFile):
		if m.requireRoot() {
			cmd := m.startInput(inputNewFile, "", "file name")
			return m, cmd
		}

	case key.Matches(msg, m.keys.NewFolder):
		if m.requireRoot() {
			cmd := m.startInput(inputNewFolder, "", "folder name")
			return m, cmd
		}

	case key.Matches(msg, m.keys.Rename):
		if item, ok := m.selected(); ok {
			m.inputTarget = item.Node.Path
			cmd := m.startInput(inputRename, item.Node.Name, "new name")
			return m, cmd
		}

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(); ok {
			m.deleteTarget = item.Node.Path
			m.showDeleteConfirm = true
		}

	case key.Matches(msg, m.keys.Cut):
		m.cutSelected()

	case key.Matches(msg, m.keys.Paste):
		m.paste()

	case key.Matches(msg, m.keys.OpenFolder):
		start := m.nav.Root()
		if start == "" {
			start, _ = os.UserHomeDir()
		}
		cmd := m.startInput(inputOpenFolder, start, "wiki folder")
		return m, cmd

	case key.Matches(msg, m.keys.Recent):
		m.openRecentMenu()

	case key.Matches(msg, m.keys.Search):
		if m.requireRoot() {
			m.isSearching = true
			m.searchQuery = ""
			m.rebuildVisible()
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.External):
		cmd := m.editExternally()
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		m.reload()
		m.status.Status("Reloaded")

	case key.Matches(msg, m.keys.Sync):
		if m.requireRoot() {
			m.status.Status("Syncing...")
			cmd := m.doSync()
			return m, cmd
		}

	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = !m.showHelpModal
	}

	return m, nil
}

// handleSearchInput handles key messages while typing in the search bar.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.clearSearch()
		return m, nil

	case tea.KeyEnter:
		item, ok := m.selected()
		m.clearSearch()
		if !ok {
			return m, nil
		}
		cmd := m.open(item.Node.Path)
		return m, cmd

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case tea.KeyDown, tea.KeyTab:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			_, size := utf8.DecodeLastRuneInString(m.searchQuery)
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-size]
		}
		m.rebuildVisible()
		m.cursor = 0
		return m, nil

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.searchQuery += string(msg.Runes)
			m.rebuildVisible()
			m.cursor = 0
		}
		return m, nil
	}
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.input == inputRename || m.input == inputOpenFolder {
			m.status.Status("Nothing has been done.")
		}
		m.endInput()
		return m, nil

	case tea.KeyEnter:
		kind := m.input
		value := strings.TrimSpace(m.textInput.Value())
		m.endInput()
		cmd := m.submitInput(kind, value)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
}

func (m Model) handleRecent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	if s == "esc" || s == "q" || s == "O" {
		m.showRecent = false
		return m, nil
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		i := int(s[0] - '1')
		if i < len(m.recentFolders) {
			m.showRecent = false
			cmd := m.guarded(rootOp(m.recentFolders[i]))
			return m, cmd
		}
	}
	return m, nil
}

// guarded runs op now, or after the unsaved-changes prompt when the open
// document is dirty.
func (m *Model) guarded(op pendingOp) tea.Cmd {
	if m.nav.Dirty() {
		m.pending = op
		m.showDiscard = true
		return nil
	}
	return op(m)
}

// settle resolves the unsaved-changes prompt and resumes the pending op.
func (m *Model) settle(c wiki.Choice) tea.Cmd {
	op := m.pending
	m.pending = nil
	m.showDiscard = false
	if !m.nav.Settle(c) {
		if c == wiki.ChoiceCancel {
			m.status.Status("Cancelled: unsaved changes kept.")
		}
		return nil
	}
	if op == nil {
		return nil
	}
	return op(m)
}

// follow checks a link target before the unsaved-changes prompt, so a
// rejected link keeps the edited buffer dirty.
func (m *Model) follow(target string) tea.Cmd {
	if _, err := m.nav.Target(target); err != nil {
		return nil
	}
	return m.guarded(followOp(target))
}

func (m *Model) open(path string) tea.Cmd {
	if _, err := m.nav.Locate(path); err != nil {
		return nil
	}
	return m.guarded(openOp(path))
}

func quitOp(*Model) tea.Cmd { return tea.Quit }

func openOp(path string) pendingOp {
	return func(m *Model) tea.Cmd {
		if err := m.nav.Open(path); err == nil {
			m.afterOpen()
		}
		return nil
	}
}

func followOp(target string) pendingOp {
	return func(m *Model) tea.Cmd {
		if err := m.nav.Navigate(target); err == nil {
			m.afterOpen()
		}
		return nil
	}
}

func rootOp(dir string) pendingOp {
	return func(m *Model) tea.Cmd {
		m.openRoot(dir)
		return nil
	}
}

// afterOpen reveals the newly opened document in the tree and focuses it.
func (m *Model) afterOpen() {
	path := m.nav.Document().Path
	if node := findNode(m.nodes, path); node != nil {
		expandTo(node, m.expanded)
		m.rebuildVisible()
		m.selectPath(path)
	}
	m.focus = focusDoc
	if m.nav.Mode() == wiki.ModeEdit {
		m.pane.editor.Focus()
	}
}

// openRoot switches the wiki folder. Callers have already settled unsaved
// changes.
func (m *Model) openRoot(dir string) {
	if err := m.nav.SetRoot(expandHome(dir)); err != nil {
		return
	}
	s, err := store.NewStore(m.nav.Root())
	if err != nil {
		m.status.Status("Failed to open folder: " + err.Error())
		return
	}
	m.store = s
	m.nav.SetDocuments(s)
	m.expanded = make(map[string]bool)
	m.cursor = 0
	m.cutPath = ""
	m.searchQuery = ""
	m.isSearching = false
	m.focusSidebar()
	m.reload()

	if m.watcher != nil && m.cfg.Watch {
		if err := m.watcher.Watch(s.Root); err != nil {
			m.logger.Warn("watching wiki folder", slog.String("root", s.Root), slog.String("error", err.Error()))
		}
	}
}

func (m *Model) mostRecent() string {
	if m.recent == nil {
		return ""
	}
	s, err := m.recent.Load()
	if err != nil {
		m.logger.Warn("loading recent folders", slog.String("error", err.Error()))
		return ""
	}
	if s.Prune() {
		if err := m.recent.Save(s); err != nil {
			m.logger.Warn("saving recent folders", slog.String("error", err.Error()))
		}
	}
	return s.MostRecent()
}

func (m *Model) openRecentMenu() {
	if m.recent == nil {
		m.status.Status("No recent folders")
		return
	}
	folders, err := m.recent.Recent()
	if err != nil {
		m.status.Status("Failed to read recent folders: " + err.Error())
		return
	}
	if len(folders) == 0 {
		m.status.Status("No recent folders")
		return
	}
	m.recentFolders = folders
	m.showRecent = true
}

func (m *Model) save() {
	if m.nav.Save(m.pane.Content()) == nil {
		m.reload()
	}
}

func (m *Model) toggleMode() {
	if m.nav.ToggleMode() == wiki.ModeEdit {
		m.focus = focusDoc
		m.pane.editor.Focus()
		return
	}
	m.pane.editor.Blur()
	m.focus = focusDoc
}

func (m *Model) focusSidebar() {
	m.focus = focusSidebar
	m.pane.editor.Blur()
}

func (m *Model) focusDoc() tea.Cmd {
	m.focus = focusDoc
	if m.nav.Mode() == wiki.ModeEdit {
		return m.pane.editor.Focus()
	}
	return nil
}

func (m *Model) requireRoot() bool {
	if m.store == nil {
		m.status.Status("Open a wiki folder first.")
		return false
	}
	return true
}

func (m *Model) startInput(kind inputKind, value, placeholder string) tea.Cmd {
	m.input = kind
	m.textInput.Reset()
	m.textInput.Placeholder = placeholder
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	m.textInput.Focus()
	return textinput.Blink
}

func (m *Model) endInput() {
	m.input = inputNone
	m.textInput.Blur()
}

func (m *Model) submitInput(kind inputKind, value string) tea.Cmd {
	switch kind {
	case inputNewFile, inputNewFolder:
		m.create(kind, value)
	case inputRename:
		m.rename(m.inputTarget, value)
	case inputOpenFolder:
		if value == "" {
			m.status.Status("No folder selected. Nothing has been done.")
			return nil
		}
		return m.guarded(rootOp(value))
	}
	return nil
}

func (m *Model) create(kind inputKind, name string) {
	if name == "" || m.store == nil {
		return
	}
	dir := m.store.DirOf(m.selectedPath())

	var (
		p   string
		err error
	)
	if kind == inputNewFolder {
		p, err = m.store.CreateFolder(dir, name)
	} else {
		p, err = m.store.CreateFile(dir, name)
	}
	switch {
	case errors.Is(err, store.ErrExists):
		m.status.Status("A file with that name already exists. Nothing has been done.")
		return
	case err != nil:
		m.status.Status("Error creating file: " + err.Error())
		return
	}

	if kind == inputNewFolder {
		m.status.Status("Created folder: " + m.store.Rel(p))
	} else {
		m.status.Status("Created file: " + m.store.Rel(p))
	}
	m.expanded[dir] = true
	m.reload()
	m.selectPath(p)
}

func (m *Model) rename(path, newName string) {
	if newName == "" {
		m.status.Status("No new name has been given. Nothing has been done.")
		return
	}
	to, err := m.store.Rename(path, newName)
	switch {
	case errors.Is(err, store.ErrSameName):
		m.status.Status("New name and old name are the same. Nothing has been done.")
		return
	case errors.Is(err, store.ErrExists):
		m.status.Status("File with this name already exists. Nothing has been done.")
		return
	case err != nil:
		m.status.Status("Rename failed: " + err.Error())
		return
	}

	m.nav.Relocate(path, to)
	if m.expanded[path] {
		m.expanded[to] = true
	}
	if m.cutPath == path {
		m.cutPath = to
	}
	m.status.Status("Item renamed successfully.")
	m.reload()
	m.selectPath(to)
}

func (m *Model) deleteSelected() {
	path := m.deleteTarget
	m.deleteTarget = ""
	if err := m.store.Delete(path); err != nil {
		m.logger.Warn("delete failed", slog.String("path", path), slog.String("error", err.Error()))
		m.status.Status("Error deleting: " + m.store.Rel(path))
		return
	}
	m.nav.Forget(path)
	if m.cutPath == path {
		m.cutPath = ""
	}
	m.status.Status("Deleted: " + m.store.Rel(path))
	m.reload()
}

func (m *Model) cutSelected() {
	item, ok := m.selected()
	if !ok {
		return
	}
	m.cutPath = item.Node.Path
	if err := clipboardWrite(item.Node.Path); err != nil {
		m.logger.Debug("clipboard unavailable", slog.String("error", err.Error()))
	}
	m.status.Status("Cut: " + item.Node.Name)
}

func (m *Model) paste() {
	if m.cutPath == "" || m.store == nil {
		m.status.Status("Nothing to paste")
		return
	}
	dest := m.store.DirOf(m.selectedPath())
	from := m.cutPath

	to, err := m.store.Move(from, dest)
	switch {
	case errors.Is(err, store.ErrSamePath):
		m.status.Status("Source and destination are the same")
		return
	case errors.Is(err, store.ErrExists):
		m.status.Status("File already exists: " + m.store.Rel(filepath.Join(dest, filepath.Base(from))))
		return
	case err != nil:
		m.logger.Warn("move failed", slog.String("from", from), slog.String("to", dest), slog.String("error", err.Error()))
		m.status.Status("Failed to move file: " + err.Error())
		return
	}

	m.nav.Relocate(from, to)
	m.cutPath = ""
	m.expanded[dest] = true
	m.status.Status("Moved to: " + m.store.Rel(to))
	m.reload()
	m.selectPath(to)
}

// refreshOpenDocument picks up changes made to the open file outside the
// editor. Unsaved edits always win.
func (m *Model) refreshOpenDocument() {
	doc := m.nav.Document()
	if !doc.Open() || doc.Dirty || m.store == nil {
		return
	}
	content, err := m.store.Read(doc.Path)
	if errors.Is(err, fs.ErrNotExist) {
		m.nav.Forget(doc.Path)
		m.status.Status("File: " + filepath.Base(doc.Path) + " was removed.")
		return
	}
	if err != nil || expandTabs(content, m.pane.tabWidth) == m.pane.Content() {
		return
	}
	m.pane.Load(doc.Path, content)
	m.pane.Preview(content)
}

func (m *Model) editExternally() tea.Cmd {
	path := m.nav.Document().Path
	if item, ok := m.selected(); ok && !item.Node.IsDir && m.focus == focusSidebar {
		path = item.Node.Path
	}
	if path == "" {
		m.status.Status("No file to edit")
		return nil
	}

	run := func(m *Model) tea.Cmd {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vim"
		}
		c := exec.Command(editor, path)
		return tea.ExecProcess(c, func(err error) tea.Msg {
			return EditorFinishedMsg{Path: path, Err: err}
		})
	}
	if path == m.nav.Document().Path {
		return m.guarded(run)
	}
	return run(m)
}

func (m Model) doSync() tea.Cmd {
	root := m.store.Root
	logger := m.logger
	return func() tea.Msg {
		res, err := gsync.SyncRepo(context.Background(), root, logger)
		return SyncDoneMsg{Result: res, Err: err}
	}
}

func (m *Model) layout() {
	_, right, content := m.panelSizes()
	m.pane.SetSize(right, content-1)
	m.textInput.Width = right - 4
}

func (m *Model) reload() {
	if m.store == nil {
		m.nodes = nil
		m.items = nil
		return
	}
	nodes, err := m.store.LoadTree()
	if err != nil {
		m.status.Status("Load error: " + err.Error())
		return
	}
	m.nodes = nodes
	m.rebuildVisible()
}

func (m *Model) rebuildVisible() {
	cur := m.selectedPath()
	if m.isSearching || m.searchQuery != "" {
		m.items = FuzzyItems(m.nodes, m.searchQuery)
	} else {
		m.items = FlattenVisibleItems(m.nodes, m.expanded)
	}
	if cur != "" {
		m.selectPath(cur)
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) clearSearch() {
	if !m.isSearching && m.searchQuery == "" {
		return
	}
	cur := m.selectedPath()
	m.isSearching = false
	m.searchQuery = ""
	if node := findNode(m.nodes, cur); node != nil {
		expandTo(node, m.expanded)
	}
	m.rebuildVisible()
}

func (m *Model) selected() (TreeItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return TreeItem{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) selectedPath() string {
	if item, ok := m.selected(); ok {
		return item.Node.Path
	}
	return ""
}

func (m *Model) selectPath(path string) {
	for i, item := range m.items {
		if item.Node.Path == path {
			m.cursor = i
			return
		}
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Compile-time check that the pane satisfies the Navigator's editor contract.
var _ wiki.Editor = (*docPane)(nil)
