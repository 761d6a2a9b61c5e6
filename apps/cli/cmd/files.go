package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// checkFileSuffixes name the files collected from directories.
var checkFileSuffixes = []string{".domspec.yaml", ".domspec.yml"}

func isCheckFile(path string) bool {
	for _, suffix := range checkFileSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// collectFiles expands args into check files. Directories are walked for
// check files; files are taken as given. Without args the include globs
// are matched from the working directory.
func collectFiles(args []string, include []string) ([]string, error) {
	if len(args) == 0 {
		return globFiles(".", include)
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isCheckFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// globFiles matches patterns under root. A leading "**/" matches any
// directory depth, including none.
func globFiles(root string, patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !strings.HasPrefix(pattern, "**/") {
			matches, err := filepath.Glob(filepath.Join(root, pattern))
			if err != nil {
				return nil, fmt.Errorf("include %q: %w", pattern, err)
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					files = append(files, m)
				}
			}
			continue
		}

		rest := strings.TrimPrefix(pattern, "**/")
		if _, err := filepath.Match(rest, ""); err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if matchTail(filepath.ToSlash(rel), rest) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// matchTail reports whether pattern matches rel or any of its trailing
// path segments.
func matchTail(rel, pattern string) bool {
	for {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		i := strings.IndexByte(rel, '/')
		if i < 0 {
			return false
		}
		rel = rel[i+1:]
	}
}
