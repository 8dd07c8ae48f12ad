package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/campusops/timetable-api/internal/models"
)

// FailureRunBudget marks sessions left unplaced because the run's
// wall-clock budget expired, distinct from the named hard constraints
// an individual session can fail on.
const FailureRunBudget = "run_budget_exhausted"

// placer runs the core search: sessions ordered by constrainedness,
// best-scoring candidate committed per session, bounded local
// backtracking when a session has no legal slot left.
type placer struct {
	cal  *Calendar
	idx  *availabilityIndex
	gen  *candidateGenerator
	sc   *scorer
	opts Options

	placed []placement
	failed []models.FailedSession

	backtrackSteps  int
	backtrackBudget int
}

func newPlacer(cal *Calendar, idx *availabilityIndex, gen *candidateGenerator, sc *scorer, opts Options, sessionCount int) *placer {
	return &placer{
		cal:             cal,
		idx:             idx,
		gen:             gen,
		sc:              sc,
		opts:            opts,
		backtrackBudget: sc.strategy.BacktrackBudget(sessionCount),
	}
}

// orderSessions sorts by decreasing constrainedness: final-year thesis
// first (one legal day), then practicals (fewer legal rooms, longer
// blocks), then teachers with the most unavailable periods, with a
// stable (subject, section, occurrence) tie-break so identical inputs
// always produce identical orderings.
func (p *placer) orderSessions(sessions []Session) []Session {
	ordered := make([]Session, len(sessions))
	copy(ordered, sessions)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]

		aThesis := a.IsThesis && a.FinalYear
		bThesis := b.IsThesis && b.FinalYear
		if aThesis != bThesis {
			return aThesis
		}
		if a.IsPractical != b.IsPractical {
			return a.IsPractical
		}
		au, bu := p.idx.unavailableCount(a.TeacherID), p.idx.unavailableCount(b.TeacherID)
		if au != bu {
			return au > bu
		}
		if a.SubjectCode != b.SubjectCode {
			return a.SubjectCode < b.SubjectCode
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.Occurrence < b.Occurrence
	})

	return ordered
}

// run places every session or records why it could not be placed. A
// cancelled context stops the search between placements, leaving
// already-committed placements intact and marking the remainder failed.
func (p *placer) run(ctx context.Context, sessions []Session) {
	ordered := p.orderSessions(sessions)

	for i, session := range ordered {
		if err := ctx.Err(); err != nil {
			for _, rest := range ordered[i:] {
				p.fail(rest, "run budget exhausted before placement", FailureRunBudget)
			}
			return
		}
		p.placeOne(session)
	}
}

func (p *placer) placeOne(s Session) {
	candidates := p.gen.generate(s)
	if len(candidates) == 0 && !p.backtrack(s) {
		reason, constraint := p.explainFailure(s)
		p.fail(s, reason, constraint)
		return
	}
	if len(candidates) == 0 {
		// backtrack freed a slot and committed the session itself
		return
	}

	best, _ := p.sc.pickBest(s, candidates)
	p.commit(placement{Session: s, Day: best.Day, Period: best.Period, RoomID: best.Room.ID})
}

func (p *placer) commit(pl placement) {
	p.idx.reserve(pl)
	p.placed = append(p.placed, pl)
}

func (p *placer) uncommit(i int) placement {
	pl := p.placed[i]
	p.idx.release(pl)
	p.placed = append(p.placed[:i], p.placed[i+1:]...)
	return pl
}

// backtrack tries to free a legal slot for the stuck session by
// removing one already-placed session and re-placing it elsewhere,
// scanning most recently placed first. Each attempt consumes budget;
// when the budget is gone the stuck session fails instead of the run
// hanging.
func (p *placer) backtrack(stuck Session) bool {
	for i := len(p.placed) - 1; i >= 0; i-- {
		if p.backtrackSteps >= p.backtrackBudget {
			return false
		}
		p.backtrackSteps++

		victim := p.uncommit(i)

		stuckCandidates := p.gen.generate(stuck)
		if len(stuckCandidates) == 0 {
			p.commit(victim)
			continue
		}

		best, _ := p.sc.pickBest(stuck, stuckCandidates)
		p.commit(placement{Session: stuck, Day: best.Day, Period: best.Period, RoomID: best.Room.ID})

		victimCandidates := p.gen.generate(victim.Session)
		if len(victimCandidates) > 0 {
			vb, _ := p.sc.pickBest(victim.Session, victimCandidates)
			p.commit(placement{Session: victim.Session, Day: vb.Day, Period: vb.Period, RoomID: vb.Room.ID})
			return true
		}

		// undo: the swap only traded one failure for another
		p.uncommit(len(p.placed) - 1)
		p.commit(victim)
	}
	return false
}

func (p *placer) fail(s Session, reason, constraint string) {
	p.failed = append(p.failed, models.FailedSession{
		SubjectID:   s.SubjectID,
		SubjectCode: s.SubjectCode,
		Section:     s.Section,
		TeacherID:   s.TeacherID,
		Occurrence:  s.Occurrence,
		IsPractical: s.IsPractical,
		Reason:      reason,
		Constraint:  constraint,
	})
}

// explainFailure traces an unplaceable session to the hard constraint
// that eliminated the most slots, so the report names something
// actionable instead of a generic "no slot found".
func (p *placer) explainFailure(s Session) (string, string) {
	if s.IsPractical && len(p.idx.labRooms) == 0 {
		return "no lab rooms available for practical block", "practical_in_labs_only"
	}

	counts := map[string]int{}
	for day := range p.cal.Days {
		if !p.gen.dayAllowed(s, day) {
			counts["thesis_day_constraint"] += p.cal.PeriodsPerDay
			continue
		}
		for period := 1; period+s.Duration-1 <= p.cal.PeriodsPerDay; period++ {
			switch {
			case p.fridayCapped(s, day, period):
				counts["friday_time_limits"]++
			case p.idx.subjectOnDay(s.SubjectID, s.Section, day):
				counts["subject_frequency"]++
			case !p.teacherFreeAll(s, day, period):
				counts["teacher_conflicts"]++
			case !p.sectionFreeAll(s, day, period):
				counts["section_simultaneous_classes"]++
			default:
				counts["room_double_booking"]++
			}
		}
	}

	constraint := "room_double_booking"
	max := -1
	for _, name := range []string{"teacher_conflicts", "section_simultaneous_classes", "room_double_booking", "friday_time_limits", "thesis_day_constraint", "subject_frequency"} {
		if counts[name] > max {
			constraint = name
			max = counts[name]
		}
	}

	return fmt.Sprintf("no legal slot for %s in section %s, dominant blocker %s", s.SubjectCode, s.Section, constraint), constraint
}

func (p *placer) fridayCapped(s Session, day, period int) bool {
	if day != p.gen.fridayIdx || p.gen.fridayIdx < 0 {
		return false
	}
	limit := p.opts.FridayTheoryCap
	if p.gen.sectionHasPractical[s.Section] {
		limit = p.opts.FridayPracticalCap
	}
	return period+s.Duration-1 > limit
}

func (p *placer) teacherFreeAll(s Session, day, period int) bool {
	for i := 0; i < s.Duration; i++ {
		if !p.idx.isTeacherFree(s.TeacherID, slotRef{Day: day, Period: period + i}) {
			return false
		}
	}
	return true
}

func (p *placer) sectionFreeAll(s Session, day, period int) bool {
	for i := 0; i < s.Duration; i++ {
		if !p.idx.isSectionFree(s.Section, slotRef{Day: day, Period: period + i}) {
			return false
		}
	}
	return true
}
