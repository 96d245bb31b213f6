// server/domain/note.go
package domain

import "encoding/json"

// NoteExt is the extension that marks a file as a note. Matching is
// case-insensitive.
const NoteExt = ".md"

// Node is one entry of the note tree. Children is nil for files and
// non-nil (possibly empty) for directories.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	IsDir    bool    `json:"is_dir"`
	Children []*Node `json:"children,omitempty"`
}

type nodeJSON struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	IsDir    bool     `json:"is_dir"`
	Children *[]*Node `json:"children,omitempty"`
}

// MarshalJSON writes children for every directory, as [] when it has
// none, and never for files.
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{Name: n.Name, Path: n.Path, IsDir: n.IsDir}
	if n.IsDir {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = &children
	}
	return json.Marshal(out)
}

// NewDirNode returns a directory node with an empty, non-nil child list.
func NewDirNode(name, path string) *Node {
	return &Node{Name: name, Path: path, IsDir: true, Children: []*Node{}}
}

// NewFileNode returns a note file node.
func NewFileNode(name, path string) *Node {
	return &Node{Name: name, Path: path}
}

// ViewMode is the editor layout chosen for a root.
type ViewMode string

const (
	ViewEdit            ViewMode = "edit"
	ViewPreview         ViewMode = "preview"
	ViewSplitVertical   ViewMode = "split-vertical"
	ViewSplitHorizontal ViewMode = "split-horizontal"
	ViewStack           ViewMode = "stack"
)

// Valid reports whether m is one of the known view modes.
func (m ViewMode) Valid() bool {
	switch m {
	case ViewEdit, ViewPreview, ViewSplitVertical, ViewSplitHorizontal, ViewStack:
		return true
	}
	return false
}

// Settings are the UI preferences stored inside a note root.
type Settings struct {
	ViewMode            ViewMode `json:"viewMode"`
	ShowLineNumbers     bool     `json:"showLineNumbers"`
	RelativeLineNumbers bool     `json:"relativeLineNumbers"`
	ShowConfigInSidebar bool     `json:"showConfigInSidebar"`
	LastNotePath        *string  `json:"lastNotePath"`
}

// DefaultSettings returns the settings of a root that has none saved.
func DefaultSettings() Settings {
	return Settings{
		ViewMode:        ViewEdit,
		ShowLineNumbers: true,
	}
}

// AppState is the process-wide state kept outside any note root.
type AppState struct {
	LastRoot *string `json:"lastRoot"`
}
