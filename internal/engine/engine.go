package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/campusops/timetable-api/internal/models"
)

// Engine runs the full scheduling pipeline: demand expansion, ordered
// placement with backtracking, compaction, and the validator
// self-check. A single run is synchronous and single-threaded; callers
// needing mutual exclusion per configuration hold a run lock around
// Generate.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	return &Engine{opts: opts.normalized()}
}

// Generate produces the timetable for a snapshot. The seed feeds only
// the scoring tie-break, so the same snapshot and seed always yield a
// byte-identical entry list. Fatal configuration problems return an
// error before any placement; unplaceable sessions do not, they are
// enumerated in the result instead.
func (e *Engine) Generate(ctx context.Context, snap *Snapshot, seed int64) (*Result, error) {
	if err := checkSnapshot(snap); err != nil {
		return nil, err
	}

	cal, err := NewCalendar(snap.Config)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar: %w", err)
	}

	idx, err := newAvailabilityIndex(snap, cal)
	if err != nil {
		return nil, fmt.Errorf("build availability index: %w", err)
	}

	sessions, issues := ExpandDemand(snap, cal, e.opts)
	if len(sessions) == 0 {
		return nil, fmt.Errorf("demand expansion produced no schedulable sessions")
	}

	gen := newCandidateGenerator(cal, idx, e.opts, sessions)
	sc := newScorer(cal, idx, e.opts, seed)
	placer := newPlacer(cal, idx, gen, sc, e.opts, len(sessions))

	placer.run(ctx, sessions)

	shifts := newCompactor(idx, gen, e.opts.CompactorMaxPasses).run(placer.placed)

	entries := e.buildEntries(snap.Config.ID, seed, cal, placer.placed)

	validator, err := NewValidator(snap, e.opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Entries:        entries,
		FailedSessions: placer.failed,
		ConfigIssues:   issues,
		Report:         validator.Validate(entries),
		Stats: Stats{
			SessionsTotal:   len(sessions),
			SessionsPlaced:  len(placer.placed),
			SessionsFailed:  len(placer.failed),
			BacktrackSteps:  placer.backtrackSteps,
			CompactorShifts: shifts,
		},
	}, nil
}

func checkSnapshot(snap *Snapshot) error {
	switch {
	case snap == nil:
		return fmt.Errorf("nil snapshot")
	case len(snap.Teachers) == 0:
		return fmt.Errorf("no teachers configured")
	case len(snap.Rooms) == 0:
		return fmt.Errorf("no rooms configured")
	case len(snap.Subjects) == 0:
		return fmt.Errorf("no subjects configured")
	case len(snap.Sections) == 0:
		return fmt.Errorf("no sections configured")
	}
	return nil
}

// buildEntries converts committed placements into persisted-shape
// entries. IDs derive from the placement content so unchanged inputs
// reproduce identical output byte for byte.
func (e *Engine) buildEntries(configID string, seed int64, cal *Calendar, placed []placement) []models.TimetableEntry {
	ordered := make([]placement, len(placed))
	copy(ordered, placed)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if a.Session.Section != b.Session.Section {
			return a.Session.Section < b.Session.Section
		}
		return a.Session.SubjectCode < b.Session.SubjectCode
	})

	var entries []models.TimetableEntry
	for _, pl := range ordered {
		var blockID *string
		if pl.Session.IsPractical {
			id := deterministicID(configID, seed, "block", pl.Session.Key(), pl.Day, pl.Period)
			blockID = &id
		}

		for i := 0; i < pl.Session.Duration; i++ {
			period := pl.Period + i
			entries = append(entries, models.TimetableEntry{
				ID:          deterministicID(configID, seed, "entry", pl.Session.Key(), pl.Day, period),
				ConfigID:    configID,
				SubjectID:   pl.Session.SubjectID,
				TeacherID:   pl.Session.TeacherID,
				RoomID:      pl.RoomID,
				BatchID:     pl.Session.BatchID,
				Section:     pl.Session.Section,
				Day:         cal.Days[pl.Day],
				Period:      period,
				IsPractical: pl.Session.IsPractical,
				BlockID:     blockID,
				StartTime:   cal.PeriodStart(period),
				EndTime:     cal.PeriodEnd(period),
			})
		}
	}

	return entries
}

func deterministicID(configID string, seed int64, kind, sessionKey string, day, period int) string {
	name := fmt.Sprintf("%s|%d|%s|%s|%d|%d", configID, seed, kind, sessionKey, day, period)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
