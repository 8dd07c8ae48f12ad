package engine

import "sort"

// compactor shifts placed sessions to the earliest legal slot on their
// day so sections wrap up quickly instead of trailing gaps. Every shift
// passes the full hard-constraint check with the session's own teacher
// and room fixed, so compaction can never introduce a violation. It
// runs to a fixed-point or the configured pass bound.
type compactor struct {
	idx       *availabilityIndex
	gen       *candidateGenerator
	maxPasses int
}

func newCompactor(idx *availabilityIndex, gen *candidateGenerator, maxPasses int) *compactor {
	return &compactor{idx: idx, gen: gen, maxPasses: maxPasses}
}

// run mutates the placement list in place and returns the shift count.
func (c *compactor) run(placed []placement) int {
	sort.SliceStable(placed, func(i, j int) bool {
		a, b := placed[i], placed[j]
		if a.Session.Section != b.Session.Section {
			return a.Session.Section < b.Session.Section
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Period < b.Period
	})

	shifts := 0
	for pass := 0; pass < c.maxPasses; pass++ {
		moved := false
		for i := range placed {
			if c.shiftEarlier(&placed[i]) {
				moved = true
				shifts++
			}
		}
		if !moved {
			break
		}
	}

	return shifts
}

func (c *compactor) shiftEarlier(pl *placement) bool {
	if pl.Period <= 1 {
		return false
	}

	// Release first so the entry does not conflict with itself, then
	// restore on the original slot when no earlier one is legal.
	c.idx.release(*pl)

	for target := 1; target < pl.Period; target++ {
		if c.gen.allowedAt(pl.Session, pl.Day, target, pl.RoomID) {
			pl.Period = target
			c.idx.reserve(*pl)
			return true
		}
	}

	c.idx.reserve(*pl)
	return false
}
