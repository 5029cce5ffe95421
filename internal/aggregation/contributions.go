package aggregation

import (
	"sort"
	"strings"

	"github.com/robmazan/CodeAnalyzer/internal/git"
)

// rootArea names files that live at the repository root.
const rootArea = "."

// ContributionMatrix counts changed lines per author and top-level directory.
type ContributionMatrix struct {
	cells   map[string]map[string]int
	authors map[string]string
	filter  *PathFilter
}

// NewContributionMatrix creates an empty matrix. A nil filter keeps every path.
func NewContributionMatrix(filter *PathFilter) *ContributionMatrix {
	return &ContributionMatrix{
		cells:   make(map[string]map[string]int),
		authors: make(map[string]string),
		filter:  filter,
	}
}

// AreaOf returns the top-level directory of path, or "." for root files.
func AreaOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx > 0 {
		return path[:idx]
	}
	return rootArea
}

// Process adds every change of changeSets to the matrix.
func (m *ContributionMatrix) Process(changeSets []git.CommitChangeSet) {
	for _, cs := range changeSets {
		key := cs.Commit.Author.ContributorKey()
		if _, ok := m.authors[key]; !ok {
			m.authors[key] = cs.Commit.Author.Name
		}

		for _, change := range cs.Changes {
			if !m.filter.Match(change.Path) {
				continue
			}
			row, ok := m.cells[key]
			if !ok {
				row = make(map[string]int)
				m.cells[key] = row
			}
			row[AreaOf(change.Path)] += change.Churn()
		}
	}
}

// Authors returns contributor keys with at least one counted change, by total lines descending.
func (m *ContributionMatrix) Authors() []string {
	authors := make([]string, 0, len(m.cells))
	for a := range m.cells {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool {
		ti, tj := m.AuthorTotal(authors[i]), m.AuthorTotal(authors[j])
		if ti != tj {
			return ti > tj
		}
		return authors[i] < authors[j]
	})
	return authors
}

// Areas returns every top-level directory seen, sorted by name.
func (m *ContributionMatrix) Areas() []string {
	seen := make(map[string]struct{})
	for _, row := range m.cells {
		for area := range row {
			seen[area] = struct{}{}
		}
	}
	areas := make([]string, 0, len(seen))
	for a := range seen {
		areas = append(areas, a)
	}
	sort.Strings(areas)
	return areas
}

// Lines returns the changed lines of author in area.
func (m *ContributionMatrix) Lines(author, area string) int {
	return m.cells[author][area]
}

// AuthorTotal returns all changed lines of author.
func (m *ContributionMatrix) AuthorTotal(author string) int {
	total := 0
	for _, n := range m.cells[author] {
		total += n
	}
	return total
}

// DisplayName returns the first name seen for the contributor key.
func (m *ContributionMatrix) DisplayName(author string) string {
	if name := m.authors[author]; name != "" {
		return name
	}
	return author
}
