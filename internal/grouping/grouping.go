// SPDX-License-Identifier: MPL-2.0

package grouping

import (
	"log/slog"

	"skillpack-cli/internal/manifest"
)

// Member pairs one bundle result with the descriptor path resolved for it
// during processing. An empty DescriptorPath marks a standalone skill.
type Member struct {
	Result         manifest.BundleResult
	DescriptorPath string
}

// GroupResults folds members into release groups. Members sharing the same
// resolved descriptor path (not merely the same descriptor name) fold into
// one group carrying that descriptor; two distinct descriptor files that
// happen to declare identical names stay distinct groups. Members without a
// descriptor each become their own standalone single-member group.
//
// Output order is stable: groups appear in first-encounter order of their
// key (descriptor path, or the member itself for standalone) while iterating
// members in input order.
//
// Descriptors are re-read at fold time. If a descriptor that resolved during
// processing can no longer be read or parsed (e.g., concurrent deletion),
// every member that would have belonged to that group degrades to a
// standalone group with a warning; the run is never aborted.
func (f *Finder) GroupResults(members []Member) []manifest.Group {
	var groups []manifest.Group
	groupIdx := make(map[string]int) // descriptor path -> index in groups
	failed := make(map[string]struct{})

	for _, member := range members {
		path := member.DescriptorPath
		if path == "" {
			groups = append(groups, standalone(member.Result))
			continue
		}
		if _, broken := failed[path]; broken {
			groups = append(groups, standalone(member.Result))
			continue
		}

		if idx, ok := groupIdx[path]; ok {
			groups[idx].Bundles = append(groups[idx].Bundles, member.Result)
			continue
		}

		info, ok := f.readDescriptor(path)
		if !ok {
			failed[path] = struct{}{}
			groups = append(groups, standalone(member.Result))
			continue
		}

		groupIdx[path] = len(groups)
		groups = append(groups, manifest.Group{
			Plugin:  info,
			Bundles: []manifest.BundleResult{member.Result},
		})
	}

	return groups
}

// readDescriptor loads one descriptor at fold time, downgrading any failure
// to a warning.
func (f *Finder) readDescriptor(path string) (*manifest.GroupInfo, bool) {
	data, err := f.ReadFile(path)
	if err != nil {
		slog.Warn("plugin descriptor disappeared before grouping, degrading members to standalone", "path", path, "error", err)
		return nil, false
	}
	info, err := parseDescriptor(path, data)
	if err != nil {
		slog.Warn("plugin descriptor became invalid before grouping, degrading members to standalone", "path", path, "error", err)
		return nil, false
	}
	return info, true
}

func standalone(result manifest.BundleResult) manifest.Group {
	return manifest.Group{Bundles: []manifest.BundleResult{result}}
}
