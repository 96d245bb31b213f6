// server/filesystem/tree.go
package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ViniZap4/carnet-server/domain"
)

// ListTree lists the notes and folders below root.
func ListTree(root string) ([]*domain.Node, error) {
	dir, err := canonicalize(root)
	if err != nil {
		dir = root
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, domain.NewError(domain.KindRootNotFound, "filesystem.ListTree", nil, root)
	}

	return BuildTree(dir)
}

// BuildTree walks dir recursively and returns its subdirectories and note
// files, sorted with directories first. Empty directories are kept.
//
// Symlinked directories are followed. A directory that resolves to one of
// its own ancestors is listed without children instead of being walked
// again: this cycle guard is a deliberate addition to the plain recursive
// walk, which would never terminate on such a loop.
func BuildTree(dir string) ([]*domain.Node, error) {
	return buildTree(dir, map[string]struct{}{})
}

func buildTree(dir string, ancestors map[string]struct{}) ([]*domain.Node, error) {
	if canon, err := filepath.EvalSymlinks(dir); err == nil {
		ancestors[canon] = struct{}{}
		defer delete(ancestors, canon)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.NewError(domain.KindReadDir, "filesystem.BuildTree", err, "")
	}

	nodes := make([]*domain.Node, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if isDir(entry, path) {
			node := domain.NewDirNode(entry.Name(), path)
			if !onChain(path, ancestors) {
				children, err := buildTree(path, ancestors)
				if err != nil {
					return nil, err
				}
				node.Children = children
			}
			nodes = append(nodes, node)
			continue
		}

		if IsNote(entry.Name()) {
			nodes = append(nodes, domain.NewFileNode(entry.Name(), path))
		}
	}

	SortNodes(nodes)
	return nodes, nil
}

// SortNodes orders siblings: directories before files, then by name
// ignoring case.
func SortNodes(nodes []*domain.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].IsDir != nodes[j].IsDir {
			return nodes[i].IsDir
		}
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
}

func isDir(entry os.DirEntry, path string) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func onChain(path string, ancestors map[string]struct{}) bool {
	canon, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	_, ok := ancestors[canon]
	return ok
}
