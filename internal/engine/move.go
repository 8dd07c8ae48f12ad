package engine

import (
	"fmt"
	"sort"

	"github.com/campusops/timetable-api/internal/models"
)

// Move-time rejection reasons. Moves re-run only the hard-constraint
// checks touching the edited entry; nothing else is regenerated.
const (
	MoveViolationWorkingHours     = "working_hours_compliance"
	MoveViolationThesisDay        = "thesis_day_constraint"
	MoveViolationFridayLimit      = "friday_time_limits"
	MoveViolationSubjectFrequency = "subject_frequency"
	MoveViolationTeacherConflict  = "teacher_conflict"
	MoveViolationSectionConflict  = "section_conflict"
	MoveViolationRoomConflict     = "room_conflict"
)

// MoveRequest asks to relocate one entry (or, for a practical, its
// whole 3-period block) to a new day and start period. The room and
// teacher stay fixed.
type MoveRequest struct {
	EntryID   string
	NewDay    string
	NewPeriod int
}

// MoveOutcome is the result of a legal move: the affected entries with
// updated slots and times.
type MoveOutcome struct {
	Updated []models.TimetableEntry
}

// CheckMove validates a single-slot edit against the hard constraints
// and returns the updated entries when legal. An illegal move returns
// the violated constraint name and leaves the input untouched; a
// missing entry returns an error.
func CheckMove(snap *Snapshot, opts Options, entries []models.TimetableEntry, req MoveRequest) (*MoveOutcome, string, error) {
	opts = opts.normalized()

	cal, err := NewCalendar(snap.Config)
	if err != nil {
		return nil, "", err
	}

	moving, err := movingSet(entries, req.EntryID)
	if err != nil {
		return nil, "", err
	}

	newDay := cal.DayIndex(req.NewDay)
	if newDay < 0 || !cal.FitsBlock(req.NewPeriod, len(moving)) {
		return nil, MoveViolationWorkingHours, nil
	}

	session, err := sessionForEntries(snap, opts, moving)
	if err != nil {
		return nil, "", err
	}

	idx, err := newAvailabilityIndex(snap, cal)
	if err != nil {
		return nil, "", err
	}
	skip := make(map[string]bool, len(moving))
	for _, e := range moving {
		skip[e.ID] = true
	}
	idx.loadEntries(entries, skip)

	sessions := demandSessionsForSections(snap, opts)
	gen := newCandidateGenerator(cal, idx, opts, sessions)

	if violated := diagnoseMove(gen, idx, session, newDay, req.NewPeriod, moving[0].RoomID); violated != "" {
		return nil, violated, nil
	}

	outcome := &MoveOutcome{Updated: make([]models.TimetableEntry, len(moving))}
	for i, e := range moving {
		e.Day = cal.Days[newDay]
		e.Period = req.NewPeriod + i
		e.StartTime = cal.PeriodStart(e.Period)
		e.EndTime = cal.PeriodEnd(e.Period)
		outcome.Updated[i] = e
	}

	return outcome, "", nil
}

// movingSet resolves the entry and, for practicals, the rest of its
// block in period order.
func movingSet(entries []models.TimetableEntry, entryID string) ([]models.TimetableEntry, error) {
	var target *models.TimetableEntry
	for i := range entries {
		if entries[i].ID == entryID {
			target = &entries[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("entry %s not found", entryID)
	}

	if !target.IsPractical || target.BlockID == nil {
		return []models.TimetableEntry{*target}, nil
	}

	var block []models.TimetableEntry
	for _, e := range entries {
		if e.BlockID != nil && *e.BlockID == *target.BlockID {
			block = append(block, e)
		}
	}
	sort.Slice(block, func(i, j int) bool { return block[i].Period < block[j].Period })
	return block, nil
}

func sessionForEntries(snap *Snapshot, opts Options, moving []models.TimetableEntry) (Session, error) {
	head := moving[0]

	var subject *models.Subject
	for i := range snap.Subjects {
		if snap.Subjects[i].ID == head.SubjectID {
			subject = &snap.Subjects[i]
			break
		}
	}
	if subject == nil {
		return Session{}, fmt.Errorf("subject %s not found in snapshot", head.SubjectID)
	}

	finalYear := false
	for _, b := range snap.Batches {
		if b.ID == subject.BatchID {
			finalYear = b.IsFinalYear(opts.SeniorSemesterFloor)
			break
		}
	}

	return Session{
		SubjectID:   subject.ID,
		SubjectCode: subject.Code,
		SubjectName: subject.Name,
		TeacherID:   head.TeacherID,
		BatchID:     subject.BatchID,
		Section:     head.Section,
		Occurrence:  1,
		IsPractical: subject.IsPractical,
		IsThesis:    subject.IsThesis,
		FinalYear:   finalYear,
		Duration:    len(moving),
	}, nil
}

// demandSessionsForSections provides the generator with enough demand
// context to evaluate the Friday practical relaxation per section.
func demandSessionsForSections(snap *Snapshot, opts Options) []Session {
	cal, err := NewCalendar(snap.Config)
	if err != nil {
		return nil
	}
	sessions, _ := ExpandDemand(snap, cal, opts)
	return sessions
}

// diagnoseMove mirrors the generator's hard checks one at a time so the
// rejection names the constraint that blocked the slot.
func diagnoseMove(gen *candidateGenerator, idx *availabilityIndex, s Session, day, period int, roomID string) string {
	if !gen.dayAllowed(s, day) {
		return MoveViolationThesisDay
	}
	if gen.fridayIdx >= 0 && day == gen.fridayIdx {
		limit := gen.opts.FridayTheoryCap
		if gen.sectionHasPractical[s.Section] {
			limit = gen.opts.FridayPracticalCap
		}
		if period+s.Duration-1 > limit {
			return MoveViolationFridayLimit
		}
	}
	if idx.subjectOnDay(s.SubjectID, s.Section, day) {
		return MoveViolationSubjectFrequency
	}
	for i := 0; i < s.Duration; i++ {
		ref := slotRef{Day: day, Period: period + i}
		if !idx.isTeacherFree(s.TeacherID, ref) {
			return MoveViolationTeacherConflict
		}
		if !idx.isSectionFree(s.Section, ref) {
			return MoveViolationSectionConflict
		}
		if !idx.isRoomFree(roomID, ref) {
			return MoveViolationRoomConflict
		}
	}
	return ""
}
