// Package corpus abstracts where course documents come from: a local
// directory or an S3 prefix.
package corpus

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// documentExtensions are the file types the pipeline knows how to process.
var documentExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

func isDocument(path string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(path))]
}

// DirSource reads course documents from a local directory tree.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// List walks the directory and returns document paths in lexical order. A
// missing directory is not an error; it reads as an empty corpus.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && isDocument(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Read returns a document's raw contents.
func (s *DirSource) Read(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
