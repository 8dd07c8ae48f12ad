package engine

import "github.com/campusops/timetable-api/internal/models"

// Candidate is one legal (day, start period, room) choice for a
// session. It is what a Strategy ranks.
type Candidate struct {
	Day    int
	Period int
	Room   models.Room
}

// candidateGenerator enumerates every placement that violates no hard
// constraint. Anything it never yields is illegal by construction;
// hard rules are never relaxed by scoring.
type candidateGenerator struct {
	cal  *Calendar
	idx  *availabilityIndex
	opts Options

	fridayIdx int
	thesisIdx int

	// sectionHasPractical marks sections whose weekly demand includes a
	// practical block, which relaxes the Friday end-of-day cap by one
	// period.
	sectionHasPractical map[string]bool
}

func newCandidateGenerator(cal *Calendar, idx *availabilityIndex, opts Options, sessions []Session) *candidateGenerator {
	hasPractical := make(map[string]bool)
	for _, s := range sessions {
		if s.IsPractical {
			hasPractical[s.Section] = true
		}
	}

	return &candidateGenerator{
		cal:                 cal,
		idx:                 idx,
		opts:                opts,
		fridayIdx:           cal.DayIndex("FRIDAY"),
		thesisIdx:           cal.DayIndex(opts.ThesisDay),
		sectionHasPractical: hasPractical,
	}
}

// generate returns all legal candidates for a session in deterministic
// (day, period, room-priority) order.
func (g *candidateGenerator) generate(s Session) []Candidate {
	var out []Candidate
	rooms := g.roomPool(s)

	for day := range g.cal.Days {
		if !g.dayAllowed(s, day) {
			continue
		}
		for period := 1; period+s.Duration-1 <= g.cal.PeriodsPerDay; period++ {
			if !g.slotAllowed(s, day, period) {
				continue
			}
			for _, room := range rooms {
				if g.roomFreeAll(room.ID, day, period, s.Duration) {
					out = append(out, Candidate{Day: day, Period: period, Room: room})
				}
			}
		}
	}

	return out
}

// allowed re-checks a fixed (day, period, room) triple, used by the
// compactor and by single-entry moves where the room is already chosen.
func (g *candidateGenerator) allowed(s Session, day string, period int, roomID string) bool {
	dayIdx := g.cal.DayIndex(day)
	if dayIdx < 0 {
		return false
	}
	return g.allowedAt(s, dayIdx, period, roomID)
}

func (g *candidateGenerator) allowedAt(s Session, day, period int, roomID string) bool {
	if !g.dayAllowed(s, day) {
		return false
	}
	if !g.slotAllowed(s, day, period) {
		return false
	}
	room, ok := g.idx.roomsByID[roomID]
	if !ok {
		return false
	}
	if !g.roomTypeAllowed(s, room) {
		return false
	}
	return g.roomFreeAll(roomID, day, period, s.Duration)
}

func (g *candidateGenerator) dayAllowed(s Session, day int) bool {
	if day == g.thesisIdx && g.thesisIdx >= 0 {
		// The reserved day carries thesis work only for final-year
		// batches; junior batches use it normally.
		if s.FinalYear && !s.IsThesis {
			return false
		}
	} else if s.IsThesis {
		return false
	}
	return true
}

func (g *candidateGenerator) slotAllowed(s Session, day, period int) bool {
	if !g.cal.FitsBlock(period, s.Duration) {
		return false
	}

	if day == g.fridayIdx && g.fridayIdx >= 0 {
		limit := g.opts.FridayTheoryCap
		if g.sectionHasPractical[s.Section] {
			limit = g.opts.FridayPracticalCap
		}
		if period+s.Duration-1 > limit {
			return false
		}
	}

	// A subject meets its section at most once per day.
	if g.idx.subjectOnDay(s.SubjectID, s.Section, day) {
		return false
	}

	if max := g.idx.teacherMaxPerDay[s.TeacherID]; max > 0 {
		if g.idx.teacherLoadOn(s.TeacherID, day)+s.Duration > max {
			return false
		}
	}

	for i := 0; i < s.Duration; i++ {
		ref := slotRef{Day: day, Period: period + i}
		if !g.idx.isTeacherFree(s.TeacherID, ref) {
			return false
		}
		if !g.idx.isSectionFree(s.Section, ref) {
			return false
		}
	}

	return true
}

func (g *candidateGenerator) roomPool(s Session) []models.Room {
	if s.IsPractical {
		return g.idx.labRooms
	}
	if g.opts.AllowLabFallback {
		pool := make([]models.Room, 0, len(g.idx.stdRooms)+len(g.idx.labRooms))
		pool = append(pool, g.idx.stdRooms...)
		pool = append(pool, g.idx.labRooms...)
		return pool
	}
	return g.idx.stdRooms
}

func (g *candidateGenerator) roomTypeAllowed(s Session, room models.Room) bool {
	if s.IsPractical {
		return room.Type == models.RoomTypeLab
	}
	if room.Type == models.RoomTypeLab {
		return g.opts.AllowLabFallback
	}
	return true
}

// roomFreeAll requires the same room across every period of a block,
// which is what keeps a practical in one lab throughout.
func (g *candidateGenerator) roomFreeAll(roomID string, day, period, duration int) bool {
	for i := 0; i < duration; i++ {
		if !g.idx.isRoomFree(roomID, slotRef{Day: day, Period: period + i}) {
			return false
		}
	}
	return true
}
