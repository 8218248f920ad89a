package pages

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IndexFile is the page served for a directory route.
const IndexFile = "index.html"

// ErrNotFound is returned when no file or ancestor index could be read.
var ErrNotFound = errors.New("pages: not found")

// ResolvedFile is the file chosen to answer a request.
type ResolvedFile struct {
	// Path is the filesystem path that was read.
	Path string
	// Content is the raw file content.
	Content []byte
	// Ext is the file extension without the leading dot, or "" when the
	// file name has none.
	Ext string
}

// Resolve locates the file that answers reqPath under dir.
//
// A regular file at dir+reqPath is returned directly. A directory, or a
// missing path whose last element has no extension, is answered by the
// index.html of reqPath itself or of its nearest ancestor, searching upward
// until dir is reached. A missing path with an extension is not found.
// reqPath is cleaned first, so it can never address anything above dir.
// Every read failure is reported as ErrNotFound.
func Resolve(dir, reqPath string) (ResolvedFile, error) {
	clean := CleanPath(reqPath)
	candidate := filepath.Join(dir, filepath.FromSlash(clean))

	info, err := os.Stat(candidate)
	switch {
	case err == nil && info.Mode().IsRegular():
		content, err := os.ReadFile(candidate)
		if err != nil {
			return ResolvedFile{}, fmt.Errorf("%w: %s: %v", ErrNotFound, clean, err)
		}
		return ResolvedFile{Path: candidate, Content: content, Ext: Ext(candidate)}, nil
	case err != nil && Ext(clean) != "":
		// A missing file such as /app.css is not a route.
		return ResolvedFile{}, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}

	for prefix := range Ancestors(clean) {
		index := filepath.Join(dir, filepath.FromSlash(prefix), IndexFile)
		content, err := os.ReadFile(index)
		if err != nil {
			continue
		}
		return ResolvedFile{Path: index, Content: content, Ext: Ext(IndexFile)}, nil
	}

	return ResolvedFile{}, fmt.Errorf("%w: %s", ErrNotFound, clean)
}

// CleanPath normalizes a request path to a rooted, slash-separated path with
// no "." or ".." elements. The empty path becomes "/".
func CleanPath(p string) string {
	return path.Clean("/" + p)
}

// Ancestors yields p followed by each of its ancestor paths, most specific
// first, ending with "/". Every prefix is produced exactly once. The sequence
// is lazy and may be ranged over any number of times.
func Ancestors(p string) iter.Seq[string] {
	start := CleanPath(p)
	return func(yield func(string) bool) {
		cur := start
		for {
			if !yield(cur) {
				return
			}
			if cur == "/" {
				return
			}
			cur = path.Dir(cur)
		}
	}
}

// Ext returns the text after the last "." of the final element of name, or
// "" when there is none.
func Ext(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return base[i+1:]
}
