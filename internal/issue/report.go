// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"golang.org/x/exp/slices"
)

// Report accumulates non-fatal per-resource diagnostics over a run. A bundle
// failing validation or a release failing to publish is recorded here and the
// run continues; the report is rendered after all processing completes.
type Report struct {
	byResource map[string][]string
	order      []string
}

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{byResource: make(map[string][]string)}
}

// Add records one diagnostic message against a resource (a skill path, a
// descriptor path, a release tag).
func (r *Report) Add(resource, message string) {
	if _, seen := r.byResource[resource]; !seen {
		r.order = append(r.order, resource)
	}
	r.byResource[resource] = append(r.byResource[resource], message)
}

// AddError records an error against a resource.
func (r *Report) AddError(resource string, err error) {
	r.Add(resource, err.Error())
}

// Empty reports whether nothing was recorded.
func (r *Report) Empty() bool {
	return len(r.byResource) == 0
}

// Count returns the number of resources with at least one diagnostic.
func (r *Report) Count() int {
	return len(r.byResource)
}

// Resources returns the affected resources in first-recorded order.
func (r *Report) Resources() []string {
	return slices.Clone(r.order)
}

// Messages returns the diagnostics recorded for one resource.
func (r *Report) Messages(resource string) []string {
	return slices.Clone(r.byResource[resource])
}

// Lines flattens the report into line-oriented diagnostics, resources in
// first-recorded order, each line "resource: message".
func (r *Report) Lines() []string {
	var lines []string
	for _, resource := range r.order {
		for _, message := range r.byResource[resource] {
			lines = append(lines, resource+": "+message)
		}
	}
	return lines
}

// HasResource reports whether the given resource has recorded diagnostics.
func (r *Report) HasResource(resource string) bool {
	_, ok := r.byResource[resource]
	return ok
}
