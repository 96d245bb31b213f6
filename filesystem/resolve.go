// server/filesystem/resolve.go
package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ViniZap4/carnet-server/domain"
)

// Resolve confines target to root and returns the absolute path to operate
// on. A relative target is joined onto the canonical root; an absolute one
// is taken as-is. Both must stay under the canonical root.
//
// The returned path is not symlink-resolved, so callers can create it when
// it does not exist yet.
func Resolve(root, target string) (string, error) {
	resolved, _, err := resolve(root, target, false)
	return resolved, err
}

// resolveEntry is Resolve for operations on the directory entry itself
// rather than on what it points to. A dangling symlink is accepted when
// both its lexical path and its parent directory are under the root.
func resolveEntry(root, target string) (string, string, error) {
	return resolve(root, target, true)
}

func resolve(root, target string, entry bool) (string, string, error) {
	const op = "filesystem.Resolve"

	canonRoot, err := canonicalize(root)
	if err != nil {
		return "", "", domain.NewError(domain.KindInvalidRoot, op, err, "")
	}

	// Checked on the raw input: filepath.Join would clean the ".." away.
	if hasParentRef(target) {
		return "", "", domain.NewError(domain.KindInvalidPath, op, nil, target)
	}

	joined := filepath.Clean(target)
	if !filepath.IsAbs(target) {
		joined = filepath.Join(canonRoot, target)
	}

	if info, err := os.Lstat(joined); err == nil {
		canon, err := filepath.EvalSymlinks(joined)
		if err != nil && entry && info.Mode()&os.ModeSymlink != 0 {
			return danglingLink(op, canonRoot, joined, target, err)
		}
		if err != nil {
			return "", "", domain.NewError(domain.KindInvalidPath, op, err, "")
		}
		if !within(canonRoot, canon) {
			return "", "", domain.NewError(domain.KindPathEscapesRoot, op, nil, target)
		}
		return joined, canonRoot, nil
	}

	// Not there yet: the lexical form and the closest existing ancestor
	// must both be under the root.
	if !within(canonRoot, joined) {
		return "", "", domain.NewError(domain.KindPathEscapesRoot, op, nil, target)
	}
	anc, err := filepath.EvalSymlinks(existingAncestor(joined))
	if err != nil {
		return "", "", domain.NewError(domain.KindInvalidPath, op, err, "")
	}
	if !within(canonRoot, anc) {
		return "", "", domain.NewError(domain.KindPathEscapesRoot, op, nil, target)
	}
	return joined, canonRoot, nil
}

func danglingLink(op, canonRoot, joined, target string, cause error) (string, string, error) {
	if !within(canonRoot, joined) {
		return "", "", domain.NewError(domain.KindPathEscapesRoot, op, nil, target)
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(joined))
	if err != nil {
		return "", "", domain.NewError(domain.KindInvalidPath, op, cause, "")
	}
	if !within(canonRoot, parent) {
		return "", "", domain.NewError(domain.KindPathEscapesRoot, op, nil, target)
	}
	return joined, canonRoot, nil
}

// canonicalize returns the absolute, symlink-free form of an existing path.
func canonicalize(path string) (string, error) {
	if path == "" {
		return "", os.ErrNotExist
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func hasParentRef(path string) bool {
	for _, part := range strings.FieldsFunc(path, isSeparator) {
		if part == ".." {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\' || r == filepath.Separator
}

// within reports whether path equals root or lies below it, component-wise.
func within(root, path string) bool {
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

func existingAncestor(path string) string {
	dir := filepath.Dir(path)
	for {
		if _, err := os.Lstat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// isRoot reports whether path designates the canonical root itself. A
// symlink pointing at the root is its own entry, not the root.
func isRoot(path, canonRoot string) bool {
	if path == canonRoot {
		return true
	}
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink != 0 {
		return false
	}
	canon, err := filepath.EvalSymlinks(path)
	return err == nil && canon == canonRoot
}
