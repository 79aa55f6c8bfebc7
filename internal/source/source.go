// Package source loads script files for the interpreter: it checks that the
// file exists, decompresses .gz and .zst scripts, and strips comments.
package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var ErrNotFound = errors.New("not found")

// Source is a loaded script. Raw is the file as written (after
// decompression); Text is Raw with comments removed and the same number of
// lines, so line numbers agree between the two.
type Source struct {
	Path string
	Raw  string
	Text string
}

func Load(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("`%s` %w", path, ErrNotFound)
		}
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := decompress(path, f)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	raw := string(data)
	return &Source{Path: path, Raw: raw, Text: StripComments(raw)}, nil
}

func decompress(path string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return gzip.NewReader(r)
	case ".zst":
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// StripComments removes everything from an unescaped '#' to the end of each
// line and turns `\#` into a literal '#'.
func StripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripComment(line)
	}
	return strings.Join(lines, "\n")
}

func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] != '\\') {
			line = line[:i]
			break
		}
	}
	return strings.ReplaceAll(line, `\#`, "#")
}
