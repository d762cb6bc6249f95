// Package store discovers access-log files from paths, directories and glob
// patterns.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

// StdinPath names standard input.
const StdinPath = "-"

// ErrNoInputs is returned when no pattern matched a readable log file.
var ErrNoInputs = errors.New("no log files found")

// rotated matches logrotate suffixes such as access.log.1 and access.log.3.gz.
var rotated = regexp.MustCompile(`\.log\.\d+(\.gz)?$`)

// DiscoverOptions controls how patterns are expanded.
type DiscoverOptions struct {
	// Recursive descends into subdirectories of directory arguments.
	Recursive bool
	// Limit caps the number of returned paths when positive.
	Limit int
}

// DiscoverResult contains the discovered paths, warnings for globs and
// directories that yielded nothing usable, and errors for literal paths that
// could not be opened.
type DiscoverResult struct {
	Paths    []string
	Warnings []error
	Errors   []error
}

// Err combines the errors into one error, or nil.
func (r DiscoverResult) Err() error {
	return multierr.Combine(r.Errors...)
}

// DiscoverLogs expands patterns into log file paths. A pattern may be a
// file, a directory, a doublestar glob or StdinPath. Paths keep the order of
// the patterns; directory and glob matches are sorted. Duplicates are
// dropped. A literal path that cannot be stat'ed lands in Errors and the
// remaining patterns are still expanded.
func DiscoverLogs(patterns []string, opts DiscoverOptions) (DiscoverResult, error) {
	var (
		result DiscoverResult
		seen   = make(map[string]struct{})
	)
	add := func(path string) {
		key := path
		if path != StdinPath {
			key = filepath.Clean(path)
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		result.Paths = append(result.Paths, path)
	}

	for _, pattern := range patterns {
		if pattern == StdinPath {
			add(StdinPath)
			continue
		}

		info, err := os.Stat(pattern)
		switch {
		case err == nil && info.IsDir():
			paths, warnings := walkDir(pattern, opts.Recursive)
			result.Warnings = append(result.Warnings, warnings...)
			for _, p := range paths {
				add(p)
			}
		case err == nil:
			add(pattern)
		case hasMeta(pattern):
			matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Errorf("glob %s: %w", pattern, err))
				continue
			}
			if len(matches) == 0 {
				result.Warnings = append(result.Warnings, fmt.Errorf("glob %s: no matches", pattern))
				continue
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
		default:
			result.Errors = append(result.Errors, err)
		}
	}

	if opts.Limit > 0 && len(result.Paths) > opts.Limit {
		result.Paths = result.Paths[:opts.Limit]
	}
	if len(result.Paths) == 0 {
		if err := result.Err(); err != nil {
			return result, fmt.Errorf("%w: %w", ErrNoInputs, err)
		}
		return result, ErrNoInputs
	}
	return result, nil
}

func walkDir(root string, recursive bool) ([]string, []error) {
	var (
		paths    []string
		warnings []error
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			warnings = append(warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsLogFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		warnings = append(warnings, err)
	}
	sort.Strings(paths)
	return paths, warnings
}

// IsLogFile reports whether name looks like an access log, including
// rotated and gzipped ones.
func IsLogFile(name string) bool {
	name = strings.ToLower(name)
	if strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.gz") {
		return true
	}
	return rotated.MatchString(name)
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{`)
}
