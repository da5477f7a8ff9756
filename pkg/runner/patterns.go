package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// PatternSet is a compiled list of ignore or include globs.
//
// Patterns use "/" as separator: "*" stays within one path segment and
// "**" crosses segments. A pattern without "/" also matches a bare file
// or directory name anywhere in the tree, so "*_pb2.py" and "build" work
// as expected.
type PatternSet struct {
	full []glob.Glob
	base []glob.Glob
}

// CompilePatterns compiles globs, returning an error naming the first
// malformed pattern.
func CompilePatterns(patterns []string) (*PatternSet, error) {
	set := &PatternSet{}
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if strings.Contains(pattern, "/") {
			set.full = append(set.full, g)
		} else {
			set.base = append(set.base, g)
		}
	}
	return set, nil
}

// empty reports whether the set has no patterns.
func (s *PatternSet) empty() bool {
	return s == nil || len(s.full)+len(s.base) == 0
}

// MatchFile reports whether the slash-separated relative path matches.
func (s *PatternSet) MatchFile(relPath string) bool {
	if s == nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	for _, g := range s.full {
		if g.Match(relPath) {
			return true
		}
	}
	name := relPath[strings.LastIndexByte(relPath, '/')+1:]
	for _, g := range s.base {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// MatchDir reports whether a directory, and so everything below it, is matched.
// "build/**" matches the directory "build" itself.
func (s *PatternSet) MatchDir(relPath string) bool {
	if s == nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	for _, g := range s.full {
		if g.Match(relPath) || g.Match(relPath+"/") {
			return true
		}
	}
	name := relPath[strings.LastIndexByte(relPath, '/')+1:]
	for _, g := range s.base {
		if g.Match(name) {
			return true
		}
	}
	return false
}
