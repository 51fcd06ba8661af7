package wiki

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrCancelled is returned when the user keeps their unsaved changes.
	ErrCancelled = errors.New("navigation cancelled")
	// ErrNoDocument is returned by Save when no file is open.
	ErrNoDocument = errors.New("no file open")
)

// Choice is the answer to the unsaved-changes prompt.
type Choice int

const (
	ChoiceCancel Choice = iota
	ChoiceSave
	ChoiceDiscard
)

func (c Choice) String() string {
	switch c {
	case ChoiceSave:
		return "save"
	case ChoiceDiscard:
		return "discard"
	default:
		return "cancel"
	}
}

// Mode is the editor's display mode.
type Mode int

const (
	ModeEdit Mode = iota
	ModeView
)

func (m Mode) String() string {
	if m == ModeView {
		return "view"
	}
	return "edit"
}

// Documents reads and writes wiki files.
type Documents interface {
	Read(path string) (string, error)
	Write(path, content string) error
}

// Editor receives loaded documents and owns the in-memory buffer.
type Editor interface {
	// Load replaces the buffer with a freshly read document.
	Load(path, content string)
	// Content returns the current, possibly unsaved, buffer.
	Content() string
	// Preview renders markdown into the preview pane.
	Preview(content string)
}

// Confirmer answers the unsaved-changes prompt. Implementations block until a
// definitive answer is available.
type Confirmer interface {
	ConfirmDiscard() Choice
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func() Choice

func (f ConfirmFunc) ConfirmDiscard() Choice { return f() }

// Decided returns a Confirmer that always answers c. Front ends that prompt
// asynchronously collect the answer first and navigate with it.
func Decided(c Choice) Confirmer {
	return ConfirmFunc(func() Choice { return c })
}

// Reporter receives one human-readable status line per outcome.
type Reporter interface {
	Status(msg string)
}

// History records opened wiki roots.
type History interface {
	Remember(root string) error
}

// DocumentState is the file currently loaded in the editor.
type DocumentState struct {
	Path  string // absolute, empty when nothing is open
	Dirty bool
}

// Open reports whether a document is loaded.
func (d DocumentState) Open() bool { return d.Path != "" }

// Navigator owns the wiki root, the current document and the display mode.
// It is not safe for concurrent use; all calls come from the UI thread.
type Navigator struct {
	docs    Documents
	editor  Editor
	confirm Confirmer
	status  Reporter
	history History
	logger  *slog.Logger

	root string
	doc  DocumentState
	mode Mode
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithConfirmer sets the unsaved-changes prompt. Without one, dirty documents
// block every navigation.
func WithConfirmer(c Confirmer) Option {
	return func(n *Navigator) { n.confirm = c }
}

// WithReporter sets the status line.
func WithReporter(r Reporter) Option {
	return func(n *Navigator) { n.status = r }
}

// WithHistory sets where opened roots are recorded.
func WithHistory(h History) Option {
	return func(n *Navigator) { n.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) { n.logger = l }
}

// NewNavigator creates a Navigator with no root and no open document.
func NewNavigator(docs Documents, editor Editor, opts ...Option) *Navigator {
	n := &Navigator{
		docs:    docs,
		editor:  editor,
		confirm: Decided(ChoiceCancel),
		status:  nopReporter{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetDocuments swaps the document collaborator, used when the store is
// rebuilt for a new root.
func (n *Navigator) SetDocuments(docs Documents) { n.docs = docs }

func (n *Navigator) Root() string            { return n.root }
func (n *Navigator) Document() DocumentState { return n.doc }
func (n *Navigator) Dirty() bool             { return n.doc.Dirty }
func (n *Navigator) Mode() Mode              { return n.mode }

// MarkDirty flags the open document as edited.
func (n *Navigator) MarkDirty() {
	if n.doc.Open() {
		n.doc.Dirty = true
	}
}

// Settle applies an answer to the unsaved-changes prompt and reports whether
// the pending operation may proceed. A failed save keeps the document dirty
// and blocks it.
func (n *Navigator) Settle(c Choice) bool {
	if !n.doc.Dirty {
		return true
	}
	n.logger.Debug("settle unsaved changes", slog.String("choice", c.String()), slog.String("path", n.doc.Path))
	switch c {
	case ChoiceSave:
		return n.Save(n.editor.Content()) == nil
	case ChoiceDiscard:
		n.doc.Dirty = false
		return true
	default:
		return false
	}
}

// gate runs the unsaved-changes prompt when needed.
func (n *Navigator) gate() error {
	if !n.doc.Dirty {
		return nil
	}
	c := n.confirm.ConfirmDiscard()
	if !n.Settle(c) {
		if c == ChoiceCancel {
			n.report("Cancelled: unsaved changes kept.")
		}
		return ErrCancelled
	}
	return nil
}

// CanQuit runs the unsaved-changes prompt for application exit.
func (n *Navigator) CanQuit() bool {
	return n.gate() == nil
}

// Target resolves a link target against the open document. A rejection is
// logged and reported, and leaves the document state alone.
func (n *Navigator) Target(target string) (string, error) {
	if n.root == "" {
		n.report("Open a wiki folder first.")
		return "", fmt.Errorf("navigate %q: %w", target, ErrNotFound)
	}
	path, err := Resolve(target, n.doc.Path, n.root)
	if err != nil {
		n.logger.Info("navigation rejected", slog.String("target", target), slog.String("error", err.Error()))
		n.report(rejectionMessage(target, err))
		return "", err
	}
	return path, nil
}

// Locate is Target for a path picked from the tree.
func (n *Navigator) Locate(path string) (string, error) {
	if n.root == "" {
		n.report("Open a wiki folder first.")
		return "", fmt.Errorf("open %s: %w", path, ErrNotFound)
	}
	resolved, err := ResolveFile(path, n.root)
	if err != nil {
		n.logger.Info("open rejected", slog.String("path", path), slog.String("error", err.Error()))
		n.report(rejectionMessage(path, err))
		return "", err
	}
	return resolved, nil
}

// Navigate follows a link target relative to the open document. The target
// is resolved before the unsaved-changes prompt, so a rejected link never
// clears the dirty flag.
func (n *Navigator) Navigate(target string) error {
	path, err := n.Target(target)
	if err != nil {
		return err
	}
	if err := n.gate(); err != nil {
		return err
	}
	return n.load(path)
}

// Open loads a file picked from the tree. Directories are ignored.
func (n *Navigator) Open(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	resolved, err := n.Locate(path)
	if err != nil {
		return err
	}
	if err := n.gate(); err != nil {
		return err
	}
	return n.load(resolved)
}

func (n *Navigator) load(path string) error {
	content, err := n.docs.Read(path)
	if err != nil {
		n.logger.Warn("read failed", slog.String("path", path), slog.String("error", err.Error()))
		n.report(fmt.Sprintf("Failed to open file: %v", err))
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	n.editor.Load(path, content)
	n.editor.Preview(content)
	n.doc = DocumentState{Path: path}
	n.logger.Debug("opened", slog.String("path", path))
	n.report("Opened file: " + filepath.Base(path))
	return nil
}

// Save writes content to the open document.
func (n *Navigator) Save(content string) error {
	if !n.doc.Open() {
		n.report("No file to save")
		return ErrNoDocument
	}
	if err := n.docs.Write(n.doc.Path, content); err != nil {
		n.logger.Warn("write failed", slog.String("path", n.doc.Path), slog.String("error", err.Error()))
		n.report(fmt.Sprintf("Failed to save file: %v", err))
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	n.doc.Dirty = false
	if n.mode == ModeView {
		n.editor.Preview(content)
	}
	n.report("Saved file: " + filepath.Base(n.doc.Path))
	return nil
}

// SetRoot opens a new wiki folder. The open document is closed and nothing is
// loaded in its place.
func (n *Navigator) SetRoot(root string) error {
	if err := n.gate(); err != nil {
		return err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		n.report("Selected folder does not exist!")
		return fmt.Errorf("set root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		n.report("Selected folder does not exist!")
		return fmt.Errorf("set root %s: %w", abs, ErrNotFound)
	}

	n.root = abs
	if n.doc.Open() {
		n.editor.Load("", "")
		n.editor.Preview("")
	}
	n.doc = DocumentState{}
	n.logger.Info("project opened", slog.String("root", abs))

	if n.history != nil {
		if err := n.history.Remember(abs); err != nil {
			n.logger.Warn("recording recent folder failed", slog.String("root", abs), slog.String("error", err.Error()))
			n.report(fmt.Sprintf("Project opened: %s (recent list not saved: %v)", abs, err))
			return nil
		}
	}
	n.report("Project opened: " + abs)
	return nil
}

// ToggleMode switches between Edit and View. Entering View renders the
// in-memory buffer, not the file on disk.
func (n *Navigator) ToggleMode() Mode {
	if n.mode == ModeEdit {
		n.mode = ModeView
		n.editor.Preview(n.editor.Content())
		n.report("View mode")
	} else {
		n.mode = ModeEdit
		n.report("Edit mode")
	}
	return n.mode
}

// Relocate follows the open document when it, or a directory containing it,
// was renamed or moved from "from" to "to" on disk.
func (n *Navigator) Relocate(from, to string) {
	if !n.doc.Open() {
		return
	}
	rel, ok := within(from, n.doc.Path)
	if !ok {
		return
	}
	n.doc.Path = filepath.Join(to, rel)
	n.logger.Debug("document relocated", slog.String("path", n.doc.Path))
}

// Forget closes the open document when path, or a directory containing it,
// was deleted. Unsaved edits are dropped with it.
func (n *Navigator) Forget(path string) {
	if !n.doc.Open() {
		return
	}
	if _, ok := within(path, n.doc.Path); !ok {
		return
	}
	n.editor.Load("", "")
	n.editor.Preview("")
	n.doc = DocumentState{}
}

// within reports whether path is dir or lies under it, and returns the
// remainder.
func within(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func (n *Navigator) report(msg string) {
	n.status.Status(msg)
}

func rejectionMessage(target string, err error) string {
	var re *ResolveError
	name := target
	if errors.As(err, &re) && re.Path != "" {
		name = filepath.Base(re.Path)
	}
	switch {
	case errors.Is(err, ErrOutsideRoot):
		return fmt.Sprintf("Navigation blocked: %s is outside the wiki.", target)
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("File: %s does not exist.", name)
	case errors.Is(err, ErrMalformed):
		return fmt.Sprintf("Invalid link: %s", target)
	default:
		return fmt.Sprintf("Navigation error: %v", err)
	}
}

type nopReporter struct{}

func (nopReporter) Status(string) {}
