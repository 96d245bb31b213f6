// server/filesystem/create.go
package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ViniZap4/carnet-server/domain"
)

// CreateFolder creates the directory name inside parent and returns its
// path. Intermediate directories are not created.
func CreateFolder(root, parent, name string) (string, error) {
	const op = "filesystem.CreateFolder"

	parentPath, err := Resolve(root, parent)
	if err != nil {
		return "", err
	}

	name, err = ValidateName(name)
	if err != nil {
		return "", err
	}

	newDir := filepath.Join(parentPath, name)
	if exists(newDir) {
		return "", domain.NewError(domain.KindAlreadyExists, op, nil, "")
	}

	if err := os.Mkdir(newDir, 0755); err != nil {
		return "", domain.NewError(domain.KindMkdirFailed, op, err, "")
	}

	return newDir, nil
}

// CreateNote creates an empty note in dir and returns its path. The
// directory chain is created when missing. Whatever extension the caller
// typed is replaced by the note extension.
func CreateNote(root, dir, name string) (string, error) {
	const op = "filesystem.CreateNote"

	dirPath, err := Resolve(root, dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", domain.NewError(domain.KindCreateFailed, op, err, "ensure dir")
	}

	name, err = ValidateName(name)
	if err != nil {
		return "", err
	}

	base := stripExt(name)
	if strings.TrimSpace(base) == "" {
		return "", domain.NewError(domain.KindInvalidName, op, nil, "")
	}

	filePath := filepath.Join(dirPath, base+domain.NoteExt)
	if exists(filePath) {
		return "", domain.NewError(domain.KindAlreadyExists, op, nil, "")
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", domain.NewError(domain.KindAlreadyExists, op, nil, "")
		}
		return "", domain.NewError(domain.KindCreateFailed, op, err, "")
	}
	if err := f.Close(); err != nil {
		return "", domain.NewError(domain.KindCreateFailed, op, err, "")
	}

	return filePath, nil
}

// RenamePath renames the file or folder at path within its parent and
// returns the new path. Files keep their current extension whatever the
// caller typed; folders take newName verbatim.
func RenamePath(root, path, newName string) (string, error) {
	const op = "filesystem.RenamePath"

	target, canonRoot, err := resolveEntry(root, path)
	if err != nil {
		return "", err
	}
	if isRoot(target, canonRoot) {
		return "", domain.NewError(domain.KindInvalidPath, op, nil, "cannot rename the root")
	}

	name, err := ValidateName(newName)
	if err != nil {
		return "", err
	}

	info, statErr := os.Stat(target)
	isFile := statErr == nil && info.Mode().IsRegular()

	finalName := name
	if isFile {
		base := stripExt(name)
		if strings.TrimSpace(base) == "" {
			return "", domain.NewError(domain.KindInvalidName, op, nil, "")
		}
		finalName = base + extension(filepath.Base(target))
	}
	if _, err := ValidateName(finalName); err != nil {
		return "", err
	}

	newPath := filepath.Join(filepath.Dir(target), finalName)
	if newPath == target {
		return newPath, nil
	}
	if exists(newPath) {
		return "", domain.NewError(domain.KindAlreadyExists, op, nil, "")
	}

	if err := os.Rename(target, newPath); err != nil {
		return "", domain.NewError(domain.KindRenameFailed, op, err, "")
	}

	return newPath, nil
}

// DeletePath removes the file or folder at path, folders recursively. A
// path that does not exist is not an error.
func DeletePath(root, path string) error {
	const op = "filesystem.DeletePath"

	target, canonRoot, err := resolveEntry(root, path)
	if err != nil {
		return err
	}
	if isRoot(target, canonRoot) {
		return domain.NewError(domain.KindInvalidPath, op, nil, "cannot delete the root")
	}

	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return domain.NewError(domain.KindDeleteFailed, op, err, "")
	}

	if info.IsDir() {
		err = os.RemoveAll(target)
	} else {
		err = os.Remove(target)
	}
	if err != nil {
		return domain.NewError(domain.KindDeleteFailed, op, err, "")
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
