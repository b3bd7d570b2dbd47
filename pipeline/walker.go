package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultExtensions is the allowlist of text-like file extensions used
// when a caller supplies none.
var DefaultExtensions = []string{
	".txt", ".md", ".markdown", ".rst",
	".html", ".htm", ".csv", ".json",
	".yaml", ".yml", ".xml",
}

// DiscoverFiles walks root recursively and returns, in walk order, the
// files whose extension is in the allowed set. Ignore patterns match by
// plain substring containment against the path, not by glob; a matching
// directory is pruned entirely.
func DiscoverFiles(root string, extensions, ignorePatterns []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if containsAny(path, ignorePatterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

func containsAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}
