package output

import (
	"github.com/skelly-dev/cnote/internal/registry"
	"github.com/skelly-dev/cnote/internal/scan"
)

// EntryRecord is one tagged file and its tags.
type EntryRecord struct {
	Path string   `json:"path"`
	Tags []string `json:"tags"`
}

// TagRecord is one tag and the files carrying it.
type TagRecord struct {
	Tag     string   `json:"tag"`
	Entries []string `json:"entries"`
}

// Report is the listing produced by one run.
type Report struct {
	RunID   string        `json:"run_id,omitempty"`
	Filter  []string      `json:"filter,omitempty"`
	Narrow  []string      `json:"narrow,omitempty"`
	Unknown []string      `json:"unknown,omitempty"`
	Entries []EntryRecord `json:"entries"`
	Tags    []TagRecord   `json:"tags"`
	Issues  []scan.Issue  `json:"issues,omitempty"`
}

// PathFunc rewrites entry paths for display.
type PathFunc func(string) string

// BuildReport lists view's entries and tags. A tag's entries are limited
// to those in the view. A nil display keeps paths as stored.
func BuildReport(reg *registry.Registry, view registry.View, display PathFunc) Report {
	if display == nil {
		display = func(path string) string { return path }
	}

	shown := make(map[registry.EntryID]bool, len(view.Entries))
	report := Report{
		Narrow:  view.Selected,
		Unknown: view.Unknown,
		Entries: make([]EntryRecord, 0, len(view.Entries)),
		Tags:    make([]TagRecord, 0, len(view.Tags)),
	}
	for _, entry := range view.Entries {
		shown[entry.ID] = true
		report.Entries = append(report.Entries, EntryRecord{
			Path: display(entry.Path),
			Tags: reg.TagTexts(entry),
		})
	}
	for _, tag := range view.Tags {
		rec := TagRecord{Tag: tag.Text, Entries: make([]string, 0, tag.Len())}
		for _, id := range tag.Entries() {
			if entry := reg.Entry(id); entry != nil && shown[id] {
				rec.Entries = append(rec.Entries, display(entry.Path))
			}
		}
		report.Tags = append(report.Tags, rec)
	}
	return report
}

// FromScan builds the report for a scan result narrowed to the tags in
// narrow. filter is recorded as given.
func FromScan(res *scan.Result, filter registry.Filter, narrow []string, display PathFunc) Report {
	report := BuildReport(res.Registry, res.Registry.Narrow(narrow...), display)
	report.RunID = res.RunID
	report.Filter = filter.Tags()
	report.Issues = res.Issues
	return report
}
