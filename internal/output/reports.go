package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robmazan/CodeAnalyzer/internal/aggregation"
	"github.com/robmazan/CodeAnalyzer/internal/sonar"
)

// HistoryReport is a metrics timeline: one row per selected commit.
type HistoryReport struct {
	Branch      string
	Component   string
	Metrics     []string
	GeneratedAt time.Time
	Items       []sonar.EnrichedRecord
}

// Title implements Report.
func (r *HistoryReport) Title() string { return "Metrics History" }

// Summary implements Report.
func (r *HistoryReport) Summary() []string {
	return []string{
		"Component: " + r.Component,
		"Branch: " + r.Branch,
		fmt.Sprintf("Commits: %d", len(r.Items)),
	}
}

// Headers implements Report.
func (r *HistoryReport) Headers() []string {
	return append([]string{"Day", "Commit", "Author", "Subject"}, r.Metrics...)
}

// Rows implements Report. Missing measures render as "-".
func (r *HistoryReport) Rows() [][]string {
	rows := make([][]string, len(r.Items))
	for i, item := range r.Items {
		row := []string{item.Day, item.Commit.ShortHash(), item.Commit.Author, truncateMessage(item.Commit.Subject, 50)}
		for _, m := range r.Metrics {
			v, ok := item.Measures[m]
			if !ok {
				v = "-"
			}
			row = append(row, v)
		}
		rows[i] = row
	}
	return rows
}

// JSONHistoryItem is one commit of the history in JSON output.
type JSONHistoryItem struct {
	Day      string            `json:"day"`
	Commit   string            `json:"commit"`
	Date     string            `json:"date"`
	Author   string            `json:"author"`
	Subject  string            `json:"subject"`
	Measures map[string]string `json:"measures"`
}

// Data implements Report.
func (r *HistoryReport) Data() any {
	items := make([]JSONHistoryItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = JSONHistoryItem{
			Day:      item.Day,
			Commit:   item.Commit.Hash,
			Date:     item.Commit.Timestamp(),
			Author:   item.Commit.Author,
			Subject:  item.Commit.Subject,
			Measures: item.Measures,
		}
	}
	return struct {
		Component   string            `json:"component"`
		Branch      string            `json:"branch"`
		Metrics     []string          `json:"metrics"`
		GeneratedAt string            `json:"generatedAt"`
		Items       []JSONHistoryItem `json:"items"`
	}{r.Component, r.Branch, r.Metrics, r.GeneratedAt.Format(time.RFC3339), items}
}

// FileMeasuresReport lists the current per-file measures of a component.
type FileMeasuresReport struct {
	Component string
	Metrics   []string
	Files     []sonar.FileMeasures
}

// NewFileMeasuresReport keeps the first top files (all when top <= 0).
func NewFileMeasuresReport(component string, metrics []string, files []sonar.FileMeasures, top int) *FileMeasuresReport {
	return &FileMeasuresReport{Component: component, Metrics: metrics, Files: limitTop(files, top)}
}

// Title implements Report.
func (r *FileMeasuresReport) Title() string { return "File Measures" }

// Summary implements Report.
func (r *FileMeasuresReport) Summary() []string {
	return []string{"Component: " + r.Component, fmt.Sprintf("Files: %d", len(r.Files))}
}

// Headers implements Report.
func (r *FileMeasuresReport) Headers() []string {
	return append([]string{"Path"}, r.Metrics...)
}

// Rows implements Report.
func (r *FileMeasuresReport) Rows() [][]string {
	rows := make([][]string, len(r.Files))
	for i, f := range r.Files {
		row := []string{f.Path}
		for _, m := range r.Metrics {
			v, ok := f.Measures[m]
			if !ok {
				v = "-"
			}
			row = append(row, v)
		}
		rows[i] = row
	}
	return rows
}

// Data implements Report.
func (r *FileMeasuresReport) Data() any {
	return struct {
		Component string               `json:"component"`
		Metrics   []string             `json:"metrics"`
		Files     []sonar.FileMeasures `json:"files"`
	}{r.Component, r.Metrics, r.Files}
}

// FileStatsReport lists per-file change statistics, highest churn first.
type FileStatsReport struct {
	RepoPath string
	Branch   string
	Total    int
	Items    []*aggregation.FileMetrics
}

// NewFileStatsReport keeps the first top of the ranked items (all when top <= 0).
func NewFileStatsReport(repoPath, branch string, ranked []*aggregation.FileMetrics, top int) *FileStatsReport {
	return &FileStatsReport{RepoPath: repoPath, Branch: branch, Total: len(ranked), Items: limitTop(ranked, top)}
}

// Title implements Report.
func (r *FileStatsReport) Title() string { return "File Change Statistics" }

// Summary implements Report.
func (r *FileStatsReport) Summary() []string {
	return []string{
		"Repository: " + r.RepoPath,
		"Branch: " + r.Branch,
		fmt.Sprintf("Total files analyzed: %d", r.Total),
	}
}

// Headers implements Report.
func (r *FileStatsReport) Headers() []string {
	return []string{"Path", "Commits", "Added", "Deleted", "Churn", "Contributors", "Ownership", "Top Contributor", "Last Modified"}
}

// Rows implements Report.
func (r *FileStatsReport) Rows() [][]string {
	rows := make([][]string, len(r.Items))
	for i, fm := range r.Items {
		rows[i] = []string{
			fm.Path,
			strconv.Itoa(fm.CommitCount),
			strconv.Itoa(fm.AddedLines),
			strconv.Itoa(fm.DeletedLines),
			strconv.Itoa(fm.ChurnTotal()),
			strconv.Itoa(fm.ContributorCount()),
			fmt.Sprintf("%.2f", fm.OwnershipRatio()),
			fm.TopContributor(),
			fm.LastModifiedAt.Format(reportDateLayout),
		}
	}
	return rows
}

// JSONFileStats is one file in JSON output.
type JSONFileStats struct {
	Path           string  `json:"path"`
	CommitCount    int     `json:"commitCount"`
	ChurnAdded     int     `json:"churnAdded"`
	ChurnDeleted   int     `json:"churnDeleted"`
	ChurnTotal     int     `json:"churnTotal"`
	Binary         bool    `json:"binary,omitempty"`
	Contributors   int     `json:"contributors"`
	OwnershipRatio float64 `json:"ownershipRatio"`
	TopContributor string  `json:"topContributor"`
	FirstModified  string  `json:"firstModified"`
	LastModified   string  `json:"lastModified"`
}

// Data implements Report.
func (r *FileStatsReport) Data() any {
	items := make([]JSONFileStats, len(r.Items))
	for i, fm := range r.Items {
		items[i] = JSONFileStats{
			Path:           fm.Path,
			CommitCount:    fm.CommitCount,
			ChurnAdded:     fm.AddedLines,
			ChurnDeleted:   fm.DeletedLines,
			ChurnTotal:     fm.ChurnTotal(),
			Binary:         fm.Binary,
			Contributors:   fm.ContributorCount(),
			OwnershipRatio: fm.OwnershipRatio(),
			TopContributor: fm.TopContributor(),
			FirstModified:  fm.FirstModifiedAt.Format(reportDateTimeLayout),
			LastModified:   fm.LastModifiedAt.Format(reportDateTimeLayout),
		}
	}
	return struct {
		Repo       string          `json:"repo"`
		Branch     string          `json:"branch"`
		TotalFiles int             `json:"totalFiles"`
		Items      []JSONFileStats `json:"items"`
	}{r.RepoPath, r.Branch, r.Total, items}
}

// ContributionReport renders a contribution matrix: authors by top-level directory.
type ContributionReport struct {
	RepoPath string
	Matrix   *aggregation.ContributionMatrix
	Top      int
}

func (r *ContributionReport) authors() []string {
	return limitTop(r.Matrix.Authors(), r.Top)
}

// Title implements Report.
func (r *ContributionReport) Title() string { return "Contribution Matrix" }

// Summary implements Report.
func (r *ContributionReport) Summary() []string {
	return []string{
		"Repository: " + r.RepoPath,
		fmt.Sprintf("Contributors: %d", len(r.Matrix.Authors())),
		"Values are changed lines (added + deleted).",
	}
}

// Headers implements Report.
func (r *ContributionReport) Headers() []string {
	return append(append([]string{"Author"}, r.Matrix.Areas()...), "Total")
}

// Rows implements Report.
func (r *ContributionReport) Rows() [][]string {
	areas := r.Matrix.Areas()
	authors := r.authors()
	rows := make([][]string, len(authors))
	for i, a := range authors {
		row := []string{r.Matrix.DisplayName(a)}
		for _, area := range areas {
			row = append(row, strconv.Itoa(r.Matrix.Lines(a, area)))
		}
		rows[i] = append(row, strconv.Itoa(r.Matrix.AuthorTotal(a)))
	}
	return rows
}

// JSONContribution is one author's row in JSON output.
type JSONContribution struct {
	Author string         `json:"author"`
	Name   string         `json:"name"`
	Lines  map[string]int `json:"lines"`
	Total  int            `json:"total"`
}

// Data implements Report.
func (r *ContributionReport) Data() any {
	areas := r.Matrix.Areas()
	authors := r.authors()
	items := make([]JSONContribution, len(authors))
	for i, a := range authors {
		lines := make(map[string]int)
		for _, area := range areas {
			if n := r.Matrix.Lines(a, area); n > 0 {
				lines[area] = n
			}
		}
		items[i] = JSONContribution{Author: a, Name: r.Matrix.DisplayName(a), Lines: lines, Total: r.Matrix.AuthorTotal(a)}
	}
	return struct {
		Repo    string             `json:"repo"`
		Areas   []string           `json:"areas"`
		Authors []JSONContribution `json:"authors"`
	}{r.RepoPath, areas, items}
}
