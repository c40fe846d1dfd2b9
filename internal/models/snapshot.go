package models

// System is a target platform tuple, e.g. "x86_64-linux".
type System string

const (
	SystemLinux  System = "x86_64-linux"
	SystemDarwin System = "x86_64-darwin"
)

// AllSystems lists the systems the stdenv snapshot and out-path diff track.
var AllSystems = []System{SystemLinux, SystemDarwin}

// StdenvSnapshot holds the per-system before/after stdenv output-path
// digest (§3, §4.2 "Stdenv snapshot").
type StdenvSnapshot struct {
	Before map[System]*string
	After  map[System]*string
}

// NewStdenvSnapshot returns an empty snapshot ready to be filled in.
func NewStdenvSnapshot() *StdenvSnapshot {
	return &StdenvSnapshot{
		Before: make(map[System]*string),
		After:  make(map[System]*string),
	}
}

// changedSystem reports whether before/after differ for one system. Either
// side may be nil; if one side is nil, the system is considered changed only
// when the other side is non-nil (both-nil means "not evaluated", not
// "changed").
func changedSystem(before, after *string) bool {
	if before == nil && after == nil {
		return false
	}
	if before == nil || after == nil {
		return true
	}
	return *before != *after
}

// Changed returns the set of systems whose stdenv output path changed.
func (s *StdenvSnapshot) Changed() map[System]bool {
	out := make(map[System]bool)
	for _, sys := range AllSystems {
		if changedSystem(s.Before[sys], s.After[sys]) {
			out[sys] = true
		}
	}
	return out
}

// AreSame reports whether no system's stdenv changed — the dual of
// Changed() being empty (§8 round-trip law).
func (s *StdenvSnapshot) AreSame() bool {
	return len(s.Changed()) == 0
}

// OutPathKey identifies one (system, attribute) cell in an out-path map.
type OutPathKey struct {
	System    System
	Attribute string
}

// OutPathDiff computes before/after output-path maps for a bounded set of
// attributes across systems (§3, §4.2 "Out-path diff").
type OutPathDiff struct {
	Before map[OutPathKey]string
	After  map[OutPathKey]string
}

// NewOutPathDiff returns an empty diff ready to be filled in.
func NewOutPathDiff() *OutPathDiff {
	return &OutPathDiff{
		Before: make(map[OutPathKey]string),
		After:  make(map[OutPathKey]string),
	}
}

// attributeSet collects the distinct attribute names present in a map.
func attributeSet(m map[OutPathKey]string) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range m {
		out[k.Attribute] = struct{}{}
	}
	return out
}

// PackageDiff returns (removed, added) package-name sets: an attribute is
// "removed" if it had an output path before but has none after (for every
// system it appeared on), and "added" the opposite. Both are stable-sorted
// and deduplicated (§4.2, §8).
func (d *OutPathDiff) PackageDiff() (removed, added []string) {
	beforeAttrs := attributeSet(d.Before)
	afterAttrs := attributeSet(d.After)

	var rem, add []string
	for a := range beforeAttrs {
		if _, ok := afterAttrs[a]; !ok {
			rem = append(rem, a)
		}
	}
	for a := range afterAttrs {
		if _, ok := beforeAttrs[a]; !ok {
			add = append(add, a)
		}
	}
	return sortedUniqueStrings(rem), sortedUniqueStrings(add)
}

// RebuildEntry names one (system, attribute) whose output path changed.
type RebuildEntry struct {
	System    System
	Attribute string
}

// CalculateRebuild returns the list of (system, attribute) entries whose
// output path differs between before and after. A key present in only one
// side counts as changed.
func (d *OutPathDiff) CalculateRebuild() []RebuildEntry {
	keys := make(map[OutPathKey]struct{})
	for k := range d.Before {
		keys[k] = struct{}{}
	}
	for k := range d.After {
		keys[k] = struct{}{}
	}

	var out []RebuildEntry
	for k := range keys {
		before, hasBefore := d.Before[k]
		after, hasAfter := d.After[k]
		if hasBefore != hasAfter || before != after {
			out = append(out, RebuildEntry{System: k.System, Attribute: k.Attribute})
		}
	}
	return out
}

// ImpactedMaintainers maps a touched package attribute to its maintainer
// logins, plus the inverse (§3, §4.2 "Impacted maintainers").
type ImpactedMaintainers struct {
	ByAttribute map[string][]string
	ByLogin     map[string][]string
}

// NewImpactedMaintainers builds both directions of the mapping from a flat
// attribute->maintainers table.
func NewImpactedMaintainers(byAttribute map[string][]string) *ImpactedMaintainers {
	byLogin := make(map[string][]string)
	for attr, logins := range byAttribute {
		for _, login := range logins {
			byLogin[login] = append(byLogin[login], attr)
		}
	}
	return &ImpactedMaintainers{ByAttribute: byAttribute, ByLogin: byLogin}
}

// Count returns the total number of distinct maintainer logins.
func (m *ImpactedMaintainers) Count() int {
	return len(m.ByLogin)
}

// AuthorIsMaintainer reports whether login maintains any touched package.
func (m *ImpactedMaintainers) AuthorIsMaintainer(login string) bool {
	_, ok := m.ByLogin[login]
	return ok
}
