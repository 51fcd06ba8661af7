package wiki

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Rejection reasons. Resolve errors unwrap to exactly one of these.
var (
	ErrMalformed   = errors.New("malformed link target")
	ErrOutsideRoot = errors.New("target is outside the wiki root")
	ErrNotFound    = errors.New("file not found")
	ErrIO          = errors.New("i/o error")
)

// ResolveError describes why a navigation target was rejected.
type ResolveError struct {
	Target string // raw target as written in the link
	Path   string // candidate absolute path, empty when the target was malformed
	Reason error  // one of ErrMalformed, ErrOutsideRoot, ErrNotFound, ErrIO
	Err    error  // underlying cause, if any
}

func (e *ResolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %q: %v: %v", e.Target, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve %q: %v", e.Target, e.Reason)
}

func (e *ResolveError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Reason, e.Err}
	}
	return []error{e.Reason}
}

// schemeRe matches URL schemes. Two characters minimum so that Windows drive
// letters ("C:") are not mistaken for one.
var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]+:`)

// Resolve turns a link target into an absolute path of an existing regular
// file inside root. Relative targets are taken against the directory of
// current, or against root when no document is open (current == "").
//
// The returned path is expressed under the cleaned absolute form of root, so
// it is always root itself or a lexical descendant of it.
func Resolve(target, current, root string) (string, error) {
	cleaned, err := normalizeTarget(target)
	if err != nil {
		return "", &ResolveError{Target: target, Reason: ErrMalformed, Err: err}
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", &ResolveError{Target: target, Reason: ErrIO, Err: err}
	}

	candidate := cleaned
	if !filepath.IsAbs(candidate) {
		base := rootAbs
		if current != "" {
			base = filepath.Dir(current)
		}
		candidate = filepath.Join(base, candidate)
	}
	return checkCandidate(target, filepath.Clean(candidate), rootAbs)
}

// ResolveFile checks an absolute file path picked outside of any link (from
// the file tree, say) against root. It applies the containment and existence
// rules of Resolve without link-target decoding.
func ResolveFile(path, root string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", &ResolveError{Target: path, Reason: ErrIO, Err: err}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &ResolveError{Target: path, Reason: ErrIO, Err: err}
	}
	return checkCandidate(path, abs, rootAbs)
}

func checkCandidate(target, candidate, rootAbs string) (string, error) {
	path, err := Contain(rootAbs, candidate)
	if err != nil {
		return "", &ResolveError{Target: target, Path: candidate, Reason: reasonOf(err), Err: causeOf(err)}
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", &ResolveError{Target: target, Path: path, Reason: ErrNotFound}
	case err != nil:
		return "", &ResolveError{Target: target, Path: path, Reason: ErrIO, Err: err}
	case !info.Mode().IsRegular():
		return "", &ResolveError{Target: target, Path: path, Reason: ErrNotFound}
	}
	return path, nil
}

// Contain checks that path (absolute) lies inside root after `..` collapsing
// and symlink evaluation, and returns it re-expressed under the cleaned root.
// The path need not exist; symlinks are evaluated on its longest existing
// prefix.
func Contain(root, path string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	rootReal, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", fmt.Errorf("wiki root %s: %w", rootAbs, errors.Join(ErrNotFound, err))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	resolved, err := evalExisting(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}

	rel, err := filepath.Rel(rootReal, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ErrOutsideRoot
	}
	if rel == "." {
		return filepath.Clean(rootAbs), nil
	}
	return filepath.Join(rootAbs, rel), nil
}

// evalExisting resolves symlinks on the longest existing prefix of path and
// appends the remaining (non-existent) components unchanged.
func evalExisting(path string) (string, error) {
	var rest []string
	cur := path
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

func normalizeTarget(target string) (string, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", errors.New("empty target")
	}
	if strings.ContainsRune(t, 0) {
		return "", errors.New("target contains NUL")
	}
	if schemeRe.MatchString(t) {
		return "", errors.New("target is a URL, not a path")
	}
	if i := strings.IndexByte(t, '#'); i >= 0 {
		t = t[:i]
	}
	if t == "" {
		return "", errors.New("target has no path")
	}
	decoded, err := url.PathUnescape(t)
	if err != nil {
		return "", err
	}
	if strings.ContainsRune(decoded, 0) {
		return "", errors.New("target contains NUL")
	}
	return filepath.FromSlash(decoded), nil
}

func reasonOf(err error) error {
	for _, reason := range []error{ErrOutsideRoot, ErrNotFound, ErrMalformed} {
		if errors.Is(err, reason) {
			return reason
		}
	}
	return ErrIO
}

func causeOf(err error) error {
	if err == ErrOutsideRoot {
		return nil
	}
	return err
}
