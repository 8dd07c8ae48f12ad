package engine

import (
	"fmt"
	"sort"

	"github.com/campusops/timetable-api/internal/models"
)

type slotRef struct {
	Day    int
	Period int
}

type subjectSectionKey struct {
	SubjectID string
	Section   string
}

// availabilityIndex is the single source of conflict truth during a
// run. It is rebuilt per run and mutated in lockstep with every commit
// and rollback, so candidate queries always reflect already-placed
// sessions. Not safe for concurrent use.
type availabilityIndex struct {
	cal *Calendar

	teacherBlocked   map[string]map[slotRef]bool
	teacherBusy      map[string]map[slotRef]bool
	teacherDayCount  map[string]map[int]int
	teacherMaxPerDay map[string]int
	teacherBlockedN  map[string]int

	roomBusy    map[string]map[slotRef]bool
	sectionBusy map[string]map[slotRef]bool

	// subjectDays tracks which days already host a theory session for a
	// subject/section pair, enforcing the distinct-day rule.
	subjectDays map[subjectSectionKey]map[int]int

	// subjectRooms tracks the rooms already used by a subject/section
	// pair, feeding the room-consistency preference.
	subjectRooms map[subjectSectionKey]map[string]int

	roomsByID map[string]models.Room
	labRooms  []models.Room
	stdRooms  []models.Room
}

func newAvailabilityIndex(snap *Snapshot, cal *Calendar) (*availabilityIndex, error) {
	idx := &availabilityIndex{
		cal:              cal,
		teacherBlocked:   make(map[string]map[slotRef]bool),
		teacherBusy:      make(map[string]map[slotRef]bool),
		teacherDayCount:  make(map[string]map[int]int),
		teacherMaxPerDay: make(map[string]int),
		teacherBlockedN:  make(map[string]int),
		roomBusy:         make(map[string]map[slotRef]bool),
		sectionBusy:      make(map[string]map[slotRef]bool),
		subjectDays:      make(map[subjectSectionKey]map[int]int),
		subjectRooms:     make(map[subjectSectionKey]map[string]int),
		roomsByID:        make(map[string]models.Room),
	}

	for _, t := range snap.Teachers {
		idx.teacherMaxPerDay[t.ID] = t.MaxSessionsPerDay
		slots, err := t.Unavailability()
		if err != nil {
			return nil, fmt.Errorf("teacher %s: %w", t.ID, err)
		}
		for _, slot := range slots {
			day := cal.DayIndex(slot.Day)
			if day < 0 || !cal.ValidPeriod(slot.Period) {
				continue
			}
			idx.blockTeacher(t.ID, slotRef{Day: day, Period: slot.Period})
		}
	}

	for _, r := range snap.Rooms {
		if !r.Active {
			continue
		}
		idx.roomsByID[r.ID] = r
		if r.Type == models.RoomTypeLab {
			idx.labRooms = append(idx.labRooms, r)
		} else {
			idx.stdRooms = append(idx.stdRooms, r)
		}
	}

	sortRooms(idx.labRooms)
	sortRooms(idx.stdRooms)

	return idx, nil
}

// sortRooms orders rooms by building priority then name so candidate
// enumeration is deterministic.
func sortRooms(rooms []models.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].PriorityRank() != rooms[j].PriorityRank() {
			return rooms[i].PriorityRank() < rooms[j].PriorityRank()
		}
		return rooms[i].Name < rooms[j].Name
	})
}

func (idx *availabilityIndex) blockTeacher(teacherID string, ref slotRef) {
	if idx.teacherBlocked[teacherID] == nil {
		idx.teacherBlocked[teacherID] = make(map[slotRef]bool)
	}
	if !idx.teacherBlocked[teacherID][ref] {
		idx.teacherBlocked[teacherID][ref] = true
		idx.teacherBlockedN[teacherID]++
	}
}

// isTeacherFree reports whether the teacher can take one more period on
// the slot: not marked unavailable, not already teaching anywhere
// (including other batches), and under the per-day session cap.
func (idx *availabilityIndex) isTeacherFree(teacherID string, ref slotRef) bool {
	if idx.teacherBlocked[teacherID][ref] {
		return false
	}
	if idx.teacherBusy[teacherID][ref] {
		return false
	}
	if max := idx.teacherMaxPerDay[teacherID]; max > 0 && idx.teacherDayCount[teacherID][ref.Day] >= max {
		return false
	}
	return true
}

func (idx *availabilityIndex) isRoomFree(roomID string, ref slotRef) bool {
	return !idx.roomBusy[roomID][ref]
}

func (idx *availabilityIndex) isSectionFree(section string, ref slotRef) bool {
	return !idx.sectionBusy[section][ref]
}

// unavailableCount feeds the constrainedness ordering.
func (idx *availabilityIndex) unavailableCount(teacherID string) int {
	return idx.teacherBlockedN[teacherID]
}

// subjectOnDay reports whether the subject/section pair already has a
// session on the day.
func (idx *availabilityIndex) subjectOnDay(subjectID, section string, day int) bool {
	return idx.subjectDays[subjectSectionKey{SubjectID: subjectID, Section: section}][day] > 0
}

func (idx *availabilityIndex) teacherLoadOn(teacherID string, day int) int {
	return idx.teacherDayCount[teacherID][day]
}

// reserve commits a placement across every period it covers. The caller
// must have verified legality; reserve panics on double booking so a
// bookkeeping bug cannot silently corrupt a run.
func (idx *availabilityIndex) reserve(p placement) {
	for _, ref := range p.slots() {
		if idx.teacherBusy[p.Session.TeacherID][ref] || idx.roomBusy[p.RoomID][ref] || idx.sectionBusy[p.Session.Section][ref] {
			panic(fmt.Sprintf("double booking at day %d period %d", ref.Day, ref.Period))
		}
		setSlot(idx.teacherBusy, p.Session.TeacherID, ref)
		setSlot(idx.roomBusy, p.RoomID, ref)
		setSlot(idx.sectionBusy, p.Session.Section, ref)
		if idx.teacherDayCount[p.Session.TeacherID] == nil {
			idx.teacherDayCount[p.Session.TeacherID] = make(map[int]int)
		}
		idx.teacherDayCount[p.Session.TeacherID][ref.Day]++
	}

	key := subjectSectionKey{SubjectID: p.Session.SubjectID, Section: p.Session.Section}
	if idx.subjectDays[key] == nil {
		idx.subjectDays[key] = make(map[int]int)
	}
	idx.subjectDays[key][p.Day]++
	if idx.subjectRooms[key] == nil {
		idx.subjectRooms[key] = make(map[string]int)
	}
	idx.subjectRooms[key][p.RoomID]++
}

// release undoes a reserve during backtracking.
func (idx *availabilityIndex) release(p placement) {
	for _, ref := range p.slots() {
		delete(idx.teacherBusy[p.Session.TeacherID], ref)
		delete(idx.roomBusy[p.RoomID], ref)
		delete(idx.sectionBusy[p.Session.Section], ref)
		if idx.teacherDayCount[p.Session.TeacherID][ref.Day] > 0 {
			idx.teacherDayCount[p.Session.TeacherID][ref.Day]--
		}
	}

	key := subjectSectionKey{SubjectID: p.Session.SubjectID, Section: p.Session.Section}
	if idx.subjectDays[key][p.Day] > 0 {
		idx.subjectDays[key][p.Day]--
	}
	if idx.subjectRooms[key][p.RoomID] > 0 {
		idx.subjectRooms[key][p.RoomID]--
	}
}

// usesRoom reports whether the subject/section pair already meets in
// the room elsewhere in the week.
func (idx *availabilityIndex) usesRoom(subjectID, section, roomID string) bool {
	return idx.subjectRooms[subjectSectionKey{SubjectID: subjectID, Section: section}][roomID] > 0
}

// loadEntries seeds occupancy from already-persisted entries, used for
// incremental edits on a stored timetable. Unlike reserve it tolerates
// pre-existing conflicts; the validator, not the loader, reports them.
func (idx *availabilityIndex) loadEntries(entries []models.TimetableEntry, skip map[string]bool) {
	for _, e := range entries {
		if skip[e.ID] {
			continue
		}
		day := idx.cal.DayIndex(e.Day)
		if day < 0 {
			continue
		}
		ref := slotRef{Day: day, Period: e.Period}
		setSlot(idx.teacherBusy, e.TeacherID, ref)
		setSlot(idx.roomBusy, e.RoomID, ref)
		setSlot(idx.sectionBusy, e.Section, ref)
		if idx.teacherDayCount[e.TeacherID] == nil {
			idx.teacherDayCount[e.TeacherID] = make(map[int]int)
		}
		idx.teacherDayCount[e.TeacherID][day]++

		key := subjectSectionKey{SubjectID: e.SubjectID, Section: e.Section}
		if idx.subjectDays[key] == nil {
			idx.subjectDays[key] = make(map[int]int)
		}
		idx.subjectDays[key][day]++
	}
}

func setSlot(m map[string]map[slotRef]bool, key string, ref slotRef) {
	if m[key] == nil {
		m[key] = make(map[slotRef]bool)
	}
	m[key][ref] = true
}

// placement binds a session to a concrete (day, start period, room).
type placement struct {
	Session Session
	Day     int
	Period  int
	RoomID  string
}

func (p placement) slots() []slotRef {
	refs := make([]slotRef, 0, p.Session.Duration)
	for i := 0; i < p.Session.Duration; i++ {
		refs = append(refs, slotRef{Day: p.Day, Period: p.Period + i})
	}
	return refs
}
