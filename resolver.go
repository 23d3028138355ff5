// resolver.go: Dependency, conflict, and ordering resolution for plugin sets
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"sort"

	"github.com/agilira/go-errors"
)

// ResolvePlugins validates a requested plugin set and produces the execution
// order every later stage uses.
//
// Rules, applied in order:
//   - descriptors with an empty name, or whose dependency and conflict sets
//     overlap, are excluded as invalid
//   - duplicate names keep the first declaration only
//   - disabled descriptors are excluded but still recorded
//   - of two active plugins in conflict, whichever side declared it, only
//     the earlier-declared one is kept; the later one is excluded
//   - a descriptor whose dependency is absent from the active set is
//     excluded; exclusions cascade until the set is stable
//
// Survivors are sorted by priority descending; declaration order breaks ties
// (the sort is stable). Resolution is non-fatal by design: an excluded
// plugin contributes no behavior, a diagnostic is emitted, and the host
// continues with the reduced set.
func ResolvePlugins(requested []PluginDescriptor, logger Logger) ([]PluginDescriptor, []ResolutionDiagnostic) {
	if logger == nil {
		logger = DefaultLogger()
	}

	var diagnostics []ResolutionDiagnostic
	exclude := func(d ResolutionDiagnostic, err *errors.Error) {
		diagnostics = append(diagnostics, d)
		logger.Warn("Plugin excluded during resolution",
			"plugin", d.Plugin,
			"code", d.Code,
			"reason", d.Reason,
			"subject", d.Subject,
			"error", err)
	}

	// Validity and duplicate pass, first declaration wins.
	seen := make(map[string]bool, len(requested))
	active := make([]PluginDescriptor, 0, len(requested))
	for _, desc := range requested {
		if desc.Name == "" {
			exclude(ResolutionDiagnostic{
				Plugin: desc.Name,
				Code:   ErrCodeInvalidDescriptor,
				Reason: "descriptor has no name",
			}, NewInvalidDescriptorError(desc.Name, "descriptor has no name"))
			continue
		}
		if overlap := dependencyConflictOverlap(desc); overlap != "" {
			exclude(ResolutionDiagnostic{
				Plugin:  desc.Name,
				Code:    ErrCodeInvalidDescriptor,
				Reason:  "dependencies and conflicts overlap",
				Subject: overlap,
			}, NewInvalidDescriptorError(desc.Name, "dependencies and conflicts overlap"))
			continue
		}
		if seen[desc.Name] {
			exclude(ResolutionDiagnostic{
				Plugin: desc.Name,
				Code:   ErrCodeDuplicatePlugin,
				Reason: "name already declared; first declaration wins",
			}, NewDuplicatePluginError(desc.Name))
			continue
		}
		seen[desc.Name] = true
		if !desc.Enabled {
			exclude(ResolutionDiagnostic{
				Plugin: desc.Name,
				Code:   ErrCodePluginDisabled,
				Reason: "plugin is disabled",
			}, NewPluginDisabledError(desc.Name))
			continue
		}
		if desc.Priority < PriorityLow || desc.Priority > PriorityHigh {
			desc.Priority = PriorityMedium
		}
		active = append(active, desc)
	}

	// Conflict pass. The relation is symmetric no matter which side declared
	// it; scanning in declaration order against the kept set makes the
	// earlier-declared plugin win deterministically.
	kept := active[:0]
	for _, desc := range active {
		conflicting := ""
		for _, peer := range kept {
			if namesContain(desc.Conflicts, peer.Name) || namesContain(peer.Conflicts, desc.Name) {
				conflicting = peer.Name
				break
			}
		}
		if conflicting != "" {
			exclude(ResolutionDiagnostic{
				Plugin:  desc.Name,
				Code:    ErrCodePluginConflict,
				Reason:  "conflicts with an earlier-declared active plugin",
				Subject: conflicting,
			}, NewPluginConflictError(desc.Name, conflicting))
			continue
		}
		kept = append(kept, desc)
	}
	active = kept

	// Dependency pass, cascading until stable.
	for {
		present := nameSet(active)
		removed := false
		kept = active[:0]
		for _, desc := range active {
			missing := ""
			for _, dep := range desc.Dependencies {
				if !present[dep] {
					missing = dep
					break
				}
			}
			if missing != "" {
				removed = true
				exclude(ResolutionDiagnostic{
					Plugin:  desc.Name,
					Code:    ErrCodeMissingDependency,
					Reason:  "dependency is not in the active set",
					Subject: missing,
				}, NewMissingDependencyError(desc.Name, missing))
				continue
			}
			kept = append(kept, desc)
		}
		active = kept
		if !removed {
			break
		}
	}

	// Priority descending, declaration order preserved within a band.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})

	return active, diagnostics
}

func dependencyConflictOverlap(desc PluginDescriptor) string {
	deps := make(map[string]bool, len(desc.Dependencies))
	for _, dep := range desc.Dependencies {
		deps[dep] = true
	}
	for _, peer := range desc.Conflicts {
		if deps[peer] {
			return peer
		}
	}
	return ""
}

func nameSet(descriptors []PluginDescriptor) map[string]bool {
	set := make(map[string]bool, len(descriptors))
	for _, desc := range descriptors {
		set[desc.Name] = true
	}
	return set
}

func namesContain(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
