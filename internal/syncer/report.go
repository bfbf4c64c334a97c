package syncer

import (
	"fmt"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Status is the outcome recorded for one page or remote document.
type Status string

const (
	StatusCreated    Status = "created"
	StatusUpdated    Status = "updated"
	StatusSkipped    Status = "skipped"
	StatusArchived   Status = "archived"
	StatusUnarchived Status = "unarchived"
	StatusDeleted    Status = "deleted"
	StatusReordered  Status = "reordered"
	StatusError      Status = "error"
)

// Entry is one line of a Report.
type Entry struct {
	Source  string
	Title   string
	ID      string
	Status  Status
	Message string
	Err     error
}

// Report describes what a sync did, or would do on a dry run.
type Report struct {
	Space    string
	DryRun   bool
	Entries  []Entry
	Warnings []string
}

// Count returns the number of entries with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, entry := range r.Entries {
		if entry.Status == status {
			n++
		}
	}
	return n
}

// Errors returns the errors attached to failed entries.
func (r *Report) Errors() []error {
	var out []error
	for _, entry := range r.Entries {
		if entry.Err != nil {
			out = append(out, entry.Err)
		}
	}
	return out
}

// Err folds every entry error into one, or returns nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	aggregate := goerrors.New(fmt.Sprintf("%d page(s) failed to sync in space %s", len(errs), r.Space), goerrors.CategoryOperation).
		WithTextCode(TextCodeSyncFailed).
		WithMetadata(map[string]any{"space_key": r.Space, "error_count": len(errs)})
	aggregate.Source = goerrors.Join(errs...)
	return aggregate
}

// Summary is a one-line count of entries per status.
func (r *Report) Summary() string {
	counts := map[Status]int{}
	for _, entry := range r.Entries {
		counts[entry.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", status, counts[Status(status)]))
	}
	prefix := "sync"
	if r.DryRun {
		prefix = "plan"
	}
	return fmt.Sprintf("%s %s: %s", prefix, r.Space, strings.Join(parts, " "))
}

// reportAccumulator collects entries keyed by source so a page created in the
// content phase keeps its created status when it is later updated.
type reportAccumulator struct {
	report *Report
	index  map[string]int
}

func newReportAccumulator(space string, dryRun bool) *reportAccumulator {
	return &reportAccumulator{
		report: &Report{Space: space, DryRun: dryRun},
		index:  map[string]int{},
	}
}

func (a *reportAccumulator) record(entry Entry) {
	key := entry.Source
	if key == "" {
		key = "remote:" + entry.ID
	}
	if i, ok := a.index[key]; ok {
		existing := &a.report.Entries[i]
		if existing.Status == StatusError {
			return
		}
		if existing.Status == StatusCreated && entry.Status != StatusError {
			if entry.ID != "" {
				existing.ID = entry.ID
			}
			return
		}
		*existing = entry
		return
	}
	a.index[key] = len(a.report.Entries)
	a.report.Entries = append(a.report.Entries, entry)
}

// append adds an entry for a remote document without merging it into the
// entry of a local page.
func (a *reportAccumulator) append(entry Entry) {
	a.report.Entries = append(a.report.Entries, entry)
}

func (a *reportAccumulator) failed(source, title string, err error) {
	a.record(Entry{Source: source, Title: title, Status: StatusError, Message: err.Error(), Err: err})
}

func (a *reportAccumulator) failedSource(source string) bool {
	i, ok := a.index[source]
	return ok && a.report.Entries[i].Status == StatusError
}

func (a *reportAccumulator) warn(message string) {
	a.report.Warnings = append(a.report.Warnings, message)
}

func (a *reportAccumulator) result() *Report {
	return a.report
}
