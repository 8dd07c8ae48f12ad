package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/campusops/timetable-api/internal/models"
)

// Validator independently re-checks a set of timetable entries against
// every named constraint, regardless of how the entries were produced.
// Hard-constraint breaches fail the report; soft shortfalls surface as
// warnings and never fail it.
type Validator struct {
	snap *Snapshot
	cal  *Calendar
	opts Options

	subjects  map[string]models.Subject
	rooms     map[string]models.Room
	batches   map[string]models.Batch
	batchOf   map[string]string // section label -> batch ID
	assigned  map[string]map[string]map[string]bool
	bestLab   int
	fridayIdx int
	thesisIdx int
}

type constraintCheck struct {
	name string
	hard bool
	fn   func(entries []models.TimetableEntry) ([]models.ConstraintViolation, int)
}

// NewValidator prepares lookup tables from the snapshot.
func NewValidator(snap *Snapshot, opts Options) (*Validator, error) {
	opts = opts.normalized()

	cal, err := NewCalendar(snap.Config)
	if err != nil {
		return nil, err
	}

	v := &Validator{
		snap:      snap,
		cal:       cal,
		opts:      opts,
		subjects:  make(map[string]models.Subject, len(snap.Subjects)),
		rooms:     make(map[string]models.Room, len(snap.Rooms)),
		batches:   make(map[string]models.Batch, len(snap.Batches)),
		batchOf:   make(map[string]string, len(snap.Sections)),
		assigned:  make(map[string]map[string]map[string]bool),
		fridayIdx: cal.DayIndex("FRIDAY"),
		thesisIdx: cal.DayIndex(opts.ThesisDay),
	}

	for _, s := range snap.Subjects {
		v.subjects[s.ID] = s
	}
	for _, b := range snap.Batches {
		v.batches[b.ID] = b
	}
	for _, sec := range snap.Sections {
		v.batchOf[sec.Label] = sec.BatchID
	}

	v.bestLab = len(models.BuildingPriority) + 1
	for _, r := range snap.Rooms {
		v.rooms[r.ID] = r
		if r.Active && r.Type == models.RoomTypeLab && r.PriorityRank() < v.bestLab {
			v.bestLab = r.PriorityRank()
		}
	}

	for _, a := range snap.Assignments {
		labels, err := a.SectionLabels()
		if err != nil {
			continue
		}
		if v.assigned[a.SubjectID] == nil {
			v.assigned[a.SubjectID] = make(map[string]map[string]bool)
		}
		for _, label := range labels {
			if v.assigned[a.SubjectID][label] == nil {
				v.assigned[a.SubjectID][label] = make(map[string]bool)
			}
			v.assigned[a.SubjectID][label][a.TeacherID] = true
		}
	}

	return v, nil
}

// Validate runs all 19 constraint checks and aggregates the report.
func (v *Validator) Validate(entries []models.TimetableEntry) *models.ValidationReport {
	checks := []constraintCheck{
		{"cross_semester_conflicts", true, v.checkCrossBatchTeacher},
		{"subject_frequency", true, v.checkSubjectFrequency},
		{"teacher_conflicts", true, v.checkTeacherConflicts},
		{"room_conflicts", true, v.checkRoomValidity},
		{"practical_blocks", true, v.checkPracticalBlocks},
		{"friday_time_limits", true, v.checkFridayLimits},
		{"thesis_day_constraint", true, v.checkThesisDay},
		{"teacher_assignments", true, v.checkTeacherAssignments},
		{"minimum_daily_classes", false, v.checkMinimumDaily},
		{"compact_scheduling", false, v.checkCompactness},
		{"friday_aware_scheduling", false, v.checkFridayAwareness},
		{"room_double_booking", true, v.checkRoomDoubleBooking},
		{"practical_same_lab", true, v.checkPracticalSameLab},
		{"practical_in_labs_only", true, v.checkPracticalLabOnly},
		{"theory_room_consistency", false, v.checkTheoryRoomConsistency},
		{"section_simultaneous_classes", true, v.checkSectionOverlap},
		{"working_hours_compliance", true, v.checkWorkingHours},
		{"max_theory_per_day", true, v.checkMaxTheoryPerDay},
		{"senior_batch_lab_priority", false, v.checkSeniorLabPriority},
	}

	report := &models.ValidationReport{
		Status:      models.ConstraintStatusPass,
		Constraints: make([]models.ConstraintReport, 0, len(checks)),
		CheckedAt:   time.Now().UTC(),
	}

	for _, check := range checks {
		violations, compliant := check.fn(entries)
		status := models.ConstraintStatusPass
		if len(violations) > 0 {
			if check.hard {
				status = models.ConstraintStatusFail
				report.Status = models.ConstraintStatusFail
			} else {
				status = models.ConstraintStatusWarning
			}
		}
		report.Constraints = append(report.Constraints, models.ConstraintReport{
			Name:           check.name,
			Status:         status,
			Violations:     violations,
			CompliantCount: compliant,
		})
	}

	return report
}

func groupBy(entries []models.TimetableEntry, key func(models.TimetableEntry) string) map[string][]models.TimetableEntry {
	groups := make(map[string][]models.TimetableEntry)
	for _, e := range entries {
		groups[key(e)] = append(groups[key(e)], e)
	}
	return groups
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func entryIDs(entries []models.TimetableEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)
	return ids
}

func (v *Validator) checkCrossBatchTeacher(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return fmt.Sprintf("%s|%s|%d", e.TeacherID, e.Day, e.Period)
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		batches := make(map[string]bool)
		for _, e := range group {
			batches[e.BatchID] = true
		}
		if len(batches) > 1 {
			e := group[0]
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("teacher %s booked for %d batches at %s period %d", e.TeacherID, len(batches), e.Day, e.Period),
				TeacherID:   e.TeacherID,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkTeacherConflicts(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return fmt.Sprintf("%s|%s|%d", e.TeacherID, e.Day, e.Period)
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if len(group) > 1 {
			e := group[0]
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("teacher %s has %d overlapping classes at %s period %d", e.TeacherID, len(group), e.Day, e.Period),
				TeacherID:   e.TeacherID,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkRoomValidity(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	var violations []models.ConstraintViolation
	compliant := 0
	for _, e := range entries {
		room, ok := v.rooms[e.RoomID]
		if !ok || !room.Active {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("entry references unknown or inactive room %s", e.RoomID),
				RoomID:      e.RoomID,
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    []string{e.ID},
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkRoomDoubleBooking(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return fmt.Sprintf("%s|%s|%d", e.RoomID, e.Day, e.Period)
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if len(group) > 1 {
			e := group[0]
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("room %s hosts %d classes at %s period %d", e.RoomID, len(group), e.Day, e.Period),
				RoomID:      e.RoomID,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkSubjectFrequency(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return e.SubjectID + "|" + e.Section
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		subject, ok := v.subjects[group[0].SubjectID]
		if !ok {
			continue
		}
		expected := subject.Credits
		if subject.IsPractical {
			expected = practicalBlockLength
		}
		if len(group) != expected {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("subject %s in section %s has %d placed periods, expected %d", subject.Code, group[0].Section, len(group), expected),
				SubjectID:   subject.ID,
				Section:     group[0].Section,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkPracticalBlocks(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	blocks := v.practicalBlocks(entries)

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(blocks) {
		block := blocks[key]
		if ok, why := blockShape(block); !ok {
			violations = append(violations, models.ConstraintViolation{
				Description: why,
				SubjectID:   block[0].SubjectID,
				Section:     block[0].Section,
				Day:         block[0].Day,
				EntryIDs:    entryIDs(block),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) practicalBlocks(entries []models.TimetableEntry) map[string][]models.TimetableEntry {
	blocks := make(map[string][]models.TimetableEntry)
	for _, e := range entries {
		if !e.IsPractical {
			continue
		}
		key := e.SubjectID + "|" + e.Section
		if e.BlockID != nil {
			key = *e.BlockID
		}
		blocks[key] = append(blocks[key], e)
	}
	return blocks
}

func blockShape(block []models.TimetableEntry) (bool, string) {
	if len(block) != practicalBlockLength {
		return false, fmt.Sprintf("practical block for subject %s section %s has %d periods, expected %d", block[0].SubjectID, block[0].Section, len(block), practicalBlockLength)
	}

	periods := make([]int, 0, len(block))
	for _, e := range block {
		if e.Day != block[0].Day {
			return false, fmt.Sprintf("practical block for subject %s section %s spans multiple days", block[0].SubjectID, block[0].Section)
		}
		if e.TeacherID != block[0].TeacherID {
			return false, fmt.Sprintf("practical block for subject %s section %s changes teacher mid-block", block[0].SubjectID, block[0].Section)
		}
		periods = append(periods, e.Period)
	}
	sort.Ints(periods)
	for i := 1; i < len(periods); i++ {
		if periods[i] != periods[i-1]+1 {
			return false, fmt.Sprintf("practical block for subject %s section %s is not on consecutive periods", block[0].SubjectID, block[0].Section)
		}
	}
	return true, ""
}

func (v *Validator) checkPracticalSameLab(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	blocks := v.practicalBlocks(entries)

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(blocks) {
		block := blocks[key]
		rooms := make(map[string]bool)
		for _, e := range block {
			rooms[e.RoomID] = true
		}
		if len(rooms) > 1 {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("practical block for subject %s section %s uses %d different rooms", block[0].SubjectID, block[0].Section, len(rooms)),
				SubjectID:   block[0].SubjectID,
				Section:     block[0].Section,
				Day:         block[0].Day,
				EntryIDs:    entryIDs(block),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkPracticalLabOnly(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	var violations []models.ConstraintViolation
	compliant := 0
	for _, e := range entries {
		if !e.IsPractical {
			continue
		}
		if room, ok := v.rooms[e.RoomID]; !ok || room.Type != models.RoomTypeLab {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("practical entry for subject %s section %s placed in non-lab room %s", e.SubjectID, e.Section, e.RoomID),
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				RoomID:      e.RoomID,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    []string{e.ID},
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

// sectionHasPractical reports whether any subject offered to the
// section is practical, which is what relaxes the Friday cap.
func (v *Validator) sectionHasPractical(section string) bool {
	batchID := v.batchOf[section]
	for _, s := range v.snap.Subjects {
		if s.BatchID == batchID && s.IsPractical {
			if teachers := v.assigned[s.ID][section]; len(teachers) > 0 {
				return true
			}
		}
	}
	return false
}

func (v *Validator) checkFridayLimits(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	var violations []models.ConstraintViolation
	compliant := 0
	for _, e := range entries {
		if v.cal.DayIndex(e.Day) != v.fridayIdx || v.fridayIdx < 0 {
			continue
		}
		limit := v.opts.FridayTheoryCap
		if v.sectionHasPractical(e.Section) {
			limit = v.opts.FridayPracticalCap
		}
		if e.Period > limit {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("section %s has a class at Friday period %d, latest allowed is %d", e.Section, e.Period, limit),
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    []string{e.ID},
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) isFinalYearSection(section string) bool {
	batch, ok := v.batches[v.batchOf[section]]
	if !ok {
		return false
	}
	return batch.IsFinalYear(v.opts.SeniorSemesterFloor)
}

func (v *Validator) checkThesisDay(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	var violations []models.ConstraintViolation
	compliant := 0
	for _, e := range entries {
		subject := v.subjects[e.SubjectID]
		onThesisDay := v.thesisIdx >= 0 && v.cal.DayIndex(e.Day) == v.thesisIdx

		switch {
		case onThesisDay && v.isFinalYearSection(e.Section) && !subject.IsThesis:
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("non-thesis subject %s scheduled on the reserved day for final-year section %s", subject.Code, e.Section),
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    []string{e.ID},
			})
		case !onThesisDay && subject.IsThesis:
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("thesis subject %s scheduled outside the reserved day for section %s", subject.Code, e.Section),
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    []string{e.ID},
			})
		default:
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkTeacherAssignments(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	var violations []models.ConstraintViolation
	compliant := 0
	for _, e := range entries {
		if !v.assigned[e.SubjectID][e.Section][e.TeacherID] {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("teacher %s is not assigned to subject %s for section %s", e.TeacherID, e.SubjectID, e.Section),
				TeacherID:   e.TeacherID,
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    []string{e.ID},
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkSectionOverlap(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return fmt.Sprintf("%s|%s|%d", e.Section, e.Day, e.Period)
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if len(group) > 1 {
			e := group[0]
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("section %s has %d simultaneous classes at %s period %d", e.Section, len(group), e.Day, e.Period),
				Section:     e.Section,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkWorkingHours(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	var violations []models.ConstraintViolation
	compliant := 0
	for _, e := range entries {
		if v.cal.DayIndex(e.Day) < 0 || !v.cal.ValidPeriod(e.Period) {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("entry for subject %s section %s sits outside the working grid at %s period %d", e.SubjectID, e.Section, e.Day, e.Period),
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				Day:         e.Day,
				Period:      e.Period,
				EntryIDs:    []string{e.ID},
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkMaxTheoryPerDay(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return fmt.Sprintf("%s|%s|%s", e.SubjectID, e.Section, e.Day)
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if group[0].IsPractical {
			continue
		}
		if len(group) > 1 {
			e := group[0]
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("subject %s meets section %s %d times on %s, at most once allowed", e.SubjectID, e.Section, len(group), e.Day),
				SubjectID:   e.SubjectID,
				Section:     e.Section,
				Day:         e.Day,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

// checkMinimumDaily flags days that give a section too little to come
// in for: no classes at all, a single class, or practical sessions with
// no theory around them.
func (v *Validator) checkMinimumDaily(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	byDay := groupBy(entries, func(e models.TimetableEntry) string {
		return e.Section + "|" + e.Day
	})
	sections := make(map[string]bool)
	for _, e := range entries {
		sections[e.Section] = true
	}

	var violations []models.ConstraintViolation
	compliant := 0
	for _, section := range sortedKeys(sections) {
		for dayIdx, day := range v.cal.Days {
			if dayIdx == v.thesisIdx && v.isFinalYearSection(section) {
				continue
			}
			group := byDay[section+"|"+day]

			theory, practical := 0, 0
			for _, e := range group {
				if e.IsPractical {
					practical++
				} else {
					theory++
				}
			}

			switch {
			case len(group) == 0:
				violations = append(violations, models.ConstraintViolation{
					Description: fmt.Sprintf("section %s has no classes on %s", section, day),
					Section:     section,
					Day:         day,
				})
			case len(group) == 1:
				violations = append(violations, models.ConstraintViolation{
					Description: fmt.Sprintf("section %s has only one class on %s", section, day),
					Section:     section,
					Day:         day,
					EntryIDs:    entryIDs(group),
				})
			case practical > 0 && theory == 0:
				violations = append(violations, models.ConstraintViolation{
					Description: fmt.Sprintf("section %s has only practical sessions on %s", section, day),
					Section:     section,
					Day:         day,
					EntryIDs:    entryIDs(group),
				})
			default:
				compliant++
			}
		}
	}
	return violations, compliant
}

func (v *Validator) checkCompactness(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return e.Section + "|" + e.Day
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		periods := make([]int, 0, len(group))
		for _, e := range group {
			periods = append(periods, e.Period)
		}
		sort.Ints(periods)

		gap := false
		for i := 1; i < len(periods); i++ {
			if periods[i] > periods[i-1]+1 {
				gap = true
				break
			}
		}

		e := group[0]
		if gap {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("section %s has idle gaps between classes on %s", e.Section, e.Day),
				Section:     e.Section,
				Day:         e.Day,
				EntryIDs:    entryIDs(group),
			})
		}
		if last := periods[len(periods)-1]; last > v.opts.DayTailCap {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("section %s runs until period %d on %s, past the preferred end of day %d", e.Section, last, e.Day, v.opts.DayTailCap),
				Section:     e.Section,
				Day:         e.Day,
				Period:      last,
				EntryIDs:    entryIDs(group),
			})
		} else if !gap {
			compliant++
		}
	}
	return violations, compliant
}

// checkFridayAwareness expects the other weekdays to absorb Friday's
// shortened afternoon: when Friday is a capped working day, no other
// day of the section should run past the preferred end of day.
func (v *Validator) checkFridayAwareness(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return e.Section + "|" + e.Day
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		e := group[0]
		if v.fridayIdx < 0 || v.cal.DayIndex(e.Day) == v.fridayIdx {
			compliant++
			continue
		}

		last := 0
		for _, entry := range group {
			if entry.Period > last {
				last = entry.Period
			}
		}
		if last > v.opts.DayTailCap {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("section %s runs until period %d on %s despite the shortened Friday", e.Section, last, e.Day),
				Section:     e.Section,
				Day:         e.Day,
				Period:      last,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkTheoryRoomConsistency(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	groups := groupBy(entries, func(e models.TimetableEntry) string {
		return e.SubjectID + "|" + e.Section
	})

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if group[0].IsPractical {
			continue
		}
		rooms := make(map[string]bool)
		for _, e := range group {
			rooms[e.RoomID] = true
		}
		if len(rooms) > 1 {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("theory subject %s for section %s moves across %d rooms during the week", group[0].SubjectID, group[0].Section, len(rooms)),
				SubjectID:   group[0].SubjectID,
				Section:     group[0].Section,
				EntryIDs:    entryIDs(group),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}

func (v *Validator) checkSeniorLabPriority(entries []models.TimetableEntry) ([]models.ConstraintViolation, int) {
	blocks := v.practicalBlocks(entries)

	var violations []models.ConstraintViolation
	compliant := 0
	for _, key := range sortedKeys(blocks) {
		block := blocks[key]
		if !v.isFinalYearSection(block[0].Section) {
			compliant++
			continue
		}
		room := v.rooms[block[0].RoomID]
		if room.PriorityRank() > v.bestLab {
			violations = append(violations, models.ConstraintViolation{
				Description: fmt.Sprintf("final-year section %s practical assigned to %s instead of a priority lab building", block[0].Section, room.Name),
				Section:     block[0].Section,
				RoomID:      block[0].RoomID,
				Day:         block[0].Day,
				EntryIDs:    entryIDs(block),
			})
		} else {
			compliant++
		}
	}
	return violations, compliant
}
