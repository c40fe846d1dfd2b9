// -----------------------------------------------------------------------
// Label Reconciler (§4.4). Pure set arithmetic: given the desired add and
// remove sets and the labels currently on the issue, compute the minimal
// writes needed so the reconciliation is idempotent when replayed.
// -----------------------------------------------------------------------

package labels

// Plan is the minimal set of label writes needed to reconcile current
// labels with the desired add/remove request.
type Plan struct {
	Add    []string
	Remove []string
}

// IsNoop reports whether applying this plan would write nothing.
func (p Plan) IsNoop() bool {
	return len(p.Add) == 0 && len(p.Remove) == 0
}

// Reconcile computes the write-minimal Plan: to_add is add minus whatever
// is already present, to_remove is remove intersected with what is
// actually present. Replaying the same (current, add, remove) always
// yields the same Plan, and a Plan computed against its own result is a
// no-op — idempotency required by §4.4 and the round-trip law in §8.
func Reconcile(current []string, add []string, remove []string) Plan {
	present := make(map[string]struct{}, len(current))
	for _, l := range current {
		present[l] = struct{}{}
	}

	toAdd := make([]string, 0, len(add))
	seenAdd := make(map[string]struct{}, len(add))
	for _, l := range add {
		if _, ok := seenAdd[l]; ok {
			continue
		}
		seenAdd[l] = struct{}{}
		if _, ok := present[l]; ok {
			continue
		}
		toAdd = append(toAdd, l)
	}

	toRemove := make([]string, 0, len(remove))
	seenRemove := make(map[string]struct{}, len(remove))
	for _, l := range remove {
		if _, ok := seenRemove[l]; ok {
			continue
		}
		seenRemove[l] = struct{}{}
		if _, ok := present[l]; ok {
			toRemove = append(toRemove, l)
		}
	}

	return Plan{Add: toAdd, Remove: toRemove}
}
