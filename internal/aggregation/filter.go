package aggregation

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter keeps paths matching any include pattern and no exclude pattern.
// An empty include list matches everything.
type PathFilter struct {
	include []string
	exclude []string
}

// NewPathFilter validates the glob patterns and builds a filter.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &PathFilter{include: include, exclude: exclude}, nil
}

// Match reports whether path passes the filter. A nil filter matches every path.
func (f *PathFilter) Match(path string) bool {
	if f == nil {
		return true
	}
	path = filepath.ToSlash(path)

	for _, p := range f.exclude {
		if ok, _ := doublestar.Match(p, path); ok {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
