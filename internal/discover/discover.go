// Package discover finds component files to compile under a project root.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/templateloader/internal/lang"
)

// FileEntry represents a discovered component file.
type FileEntry struct {
	Path string // Relative to root
	// Component is true for single-file components (.vue); plain .html
	// files are bare templates.
	Component bool
}

// Filter narrows discovery.
type Filter struct {
	// Exclude holds extra gitignore-style patterns.
	Exclude []string
	// Tests keeps files that IsTestFile reports as tests.
	Tests bool
}

var skipDirs = map[string]struct{}{
	"node_modules":     {},
	"bower_components": {},
	"dist":             {},
	"build":            {},
	"coverage":         {},
	"public":           {},
	".git":             {},
	".hg":              {},
	".svn":             {},
}

// Files discovers component files under root, sorted by path.
func Files(root string, f Filter) ([]FileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}
	var excludes *ignore.GitIgnore
	if len(f.Exclude) > 0 {
		excludes = ignore.CompileIgnoreLines(f.Exclude...)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		ext := filepath.Ext(name)
		if lang.ForExtension(ext) != lang.HTML {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		slashed := filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[slashed]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(slashed) {
			return nil
		}
		if excludes != nil && excludes.MatchesPath(slashed) {
			return nil
		}
		if !f.Tests && IsTestFile(slashed) {
			return nil
		}

		results = append(results, FileEntry{Path: rel, Component: ext == ".vue"})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

var testDirs = map[string]struct{}{
	"__tests__": {},
	"__mocks__": {},
	"tests":     {},
	"test":      {},
	"spec":      {},
	"fixtures":  {},
	"e2e":       {},
}

// IsTestFile reports whether the slash-separated path looks like a test
// component or fixture rather than application code.
func IsTestFile(path string) bool {
	parts := strings.Split(path, "/")
	for _, dir := range parts[:len(parts)-1] {
		if _, ok := testDirs[dir]; ok {
			return true
		}
	}
	base := parts[len(parts)-1]
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, ".spec") || strings.HasSuffix(stem, ".test") ||
		strings.HasSuffix(stem, ".stories")
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
