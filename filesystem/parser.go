// server/filesystem/parser.go
package filesystem

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/saintfish/chardet"

	"github.com/ViniZap4/carnet-server/domain"
)

// ReadNote returns the full text of the note at path.
func ReadNote(root, path string) (string, error) {
	const op = "filesystem.ReadNote"

	target, err := Resolve(root, path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(target)
	if err != nil {
		return "", domain.NewError(domain.KindOpenFailed, op, err, "")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", domain.NewError(domain.KindReadFailed, op, err, "")
	}

	if !utf8.Valid(data) {
		return "", domain.NewError(domain.KindReadFailed, op, nil, encodingDetail(data))
	}

	return string(data), nil
}

func encodingDetail(data []byte) string {
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res.Charset == "" {
		return "content is not valid UTF-8"
	}
	return fmt.Sprintf("content is not valid UTF-8 (looks like %s)", res.Charset)
}

// WriteNote replaces the content of the note at path, creating the file if
// needed.
func WriteNote(root, path, content string) error {
	const op = "filesystem.WriteNote"

	target, err := Resolve(root, path)
	if err != nil {
		return err
	}

	f, err := os.Create(target)
	if err != nil {
		return domain.NewError(domain.KindCreateFailed, op, err, "")
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return domain.NewError(domain.KindWriteFailed, op, err, "")
	}
	if err := f.Close(); err != nil {
		return domain.NewError(domain.KindWriteFailed, op, err, "")
	}

	return nil
}
