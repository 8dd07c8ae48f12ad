package engine

import (
	"encoding/binary"
	"hash/fnv"
)

// Strategy is the pluggable search policy: it ranks legal candidates by
// soft preference and bounds how much backtracking a run may spend.
// Hard-constraint logic never passes through it, so swapping strategies
// can change which valid timetable comes out but never admit an invalid
// one.
type Strategy interface {
	Score(s Session, c Candidate) float64
	BacktrackBudget(sessionCount int) int
}

// weightedStrategy is the default Strategy: weighted compactness,
// teacher break avoidance, day spread, room consistency, and senior lab
// preference, all tuned through Options.
type weightedStrategy struct {
	cal  *Calendar
	idx  *availabilityIndex
	opts Options
}

// Score is higher for better candidates. Soft shortfalls never block a
// commit; they only lower a candidate's score.
func (w *weightedStrategy) Score(s Session, c Candidate) float64 {
	var score float64

	// Compactness: favour the earliest slot that extends the section's
	// day without opening a gap.
	start := c.Period
	score -= w.opts.WeightCompactness * float64(start-1)
	if start > 1 && !w.idx.isSectionFree(s.Section, slotRef{Day: c.Day, Period: start - 1}) {
		score += w.opts.WeightCompactness
	}

	// Teacher break: avoid giving a teacher a third consecutive period.
	if start > 2 &&
		w.idx.teacherBusy[s.TeacherID][slotRef{Day: c.Day, Period: start - 1}] &&
		w.idx.teacherBusy[s.TeacherID][slotRef{Day: c.Day, Period: start - 2}] {
		score -= w.opts.WeightTeacherBreak
	}

	// Day spread: favour lighter days for the section.
	score -= w.opts.WeightDaySpread * float64(w.sectionLoadOn(s.Section, c.Day))

	// Room consistency: keep a subject in the room it already uses.
	if w.idx.usesRoom(s.SubjectID, s.Section, c.Room.ID) {
		score += w.opts.WeightCompactness
	}

	// Senior practicals go to the highest-priority lab building when one
	// is free.
	if s.IsPractical && s.FinalYear && c.Room.PriorityRank() == 1 {
		score += w.opts.WeightDaySpread
	}

	return score
}

func (w *weightedStrategy) BacktrackBudget(sessionCount int) int {
	return w.opts.BacktrackMultiplier * sessionCount
}

func (w *weightedStrategy) sectionLoadOn(section string, day int) int {
	count := 0
	for period := 1; period <= w.cal.PeriodsPerDay; period++ {
		if !w.idx.isSectionFree(section, slotRef{Day: day, Period: period}) {
			count++
		}
	}
	return count
}

// scorer wraps the active Strategy with the seeded tie-break, which
// stays outside the Strategy so every policy inherits the same
// determinism contract.
type scorer struct {
	strategy Strategy
	seed     int64
}

func newScorer(cal *Calendar, idx *availabilityIndex, opts Options, seed int64) *scorer {
	strategy := opts.Strategy
	if strategy == nil {
		strategy = &weightedStrategy{cal: cal, idx: idx, opts: opts}
	}
	return &scorer{strategy: strategy, seed: seed}
}

// tieBreak hashes (seed, subject, section, day, period, room) so equal
// scores resolve deterministically for a given seed and differently
// across regenerations.
func (sc *scorer) tieBreak(s Session, c Candidate) uint64 {
	h := fnv.New64a()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(sc.seed))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(s.SubjectCode))
	_, _ = h.Write([]byte(s.Section))
	binary.BigEndian.PutUint64(buf[:], uint64(c.Day))
	_, _ = h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(c.Period))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(c.Room.Name))

	return h.Sum64()
}

// pickBest returns the highest-scoring candidate, breaking ties with
// the seeded hash. Candidates arrive in deterministic order, so the
// final fallback comparison is stable too.
func (sc *scorer) pickBest(s Session, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	best := candidates[0]
	bestScore := sc.strategy.Score(s, best)
	bestHash := sc.tieBreak(s, best)

	for _, c := range candidates[1:] {
		score := sc.strategy.Score(s, c)
		switch {
		case score > bestScore:
		case score == bestScore && sc.tieBreak(s, c) > bestHash:
		default:
			continue
		}
		best = c
		bestScore = score
		bestHash = sc.tieBreak(s, c)
	}

	return best, true
}
