package engine

import (
	"fmt"

	"github.com/campusops/timetable-api/internal/models"
)

// practicalBlockLength is the number of consecutive periods a practical
// session occupies.
const practicalBlockLength = 3

// Snapshot is the read-only input to one generation run. The engine
// never touches storage; callers assemble the snapshot and persist the
// result.
type Snapshot struct {
	Config      models.ScheduleConfig
	Teachers    []models.Teacher
	Rooms       []models.Room
	Batches     []models.Batch
	Sections    []models.Section
	Subjects    []models.Subject
	Assignments []models.TeacherAssignment
}

// Options tunes scoring and search behaviour. Hard-constraint logic is
// never affected by options other than AllowLabFallback and the period
// caps, which define the constraints themselves.
type Options struct {
	WeightCompactness  float64
	WeightTeacherBreak float64
	WeightDaySpread    float64

	BacktrackMultiplier int
	CompactorMaxPasses  int

	AllowLabFallback    bool
	ThesisDay           string
	FridayPracticalCap  int
	FridayTheoryCap     int
	DayTailCap          int
	SeniorSemesterFloor int

	// Strategy swaps the soft-preference policy and retry budget. Nil
	// selects the built-in weighted heuristic.
	Strategy Strategy
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		WeightCompactness:   3.0,
		WeightTeacherBreak:  2.0,
		WeightDaySpread:     1.5,
		BacktrackMultiplier: 4,
		CompactorMaxPasses:  12,
		AllowLabFallback:    true,
		ThesisDay:           "WEDNESDAY",
		FridayPracticalCap:  4,
		FridayTheoryCap:     3,
		DayTailCap:          5,
		SeniorSemesterFloor: 7,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.WeightCompactness <= 0 {
		o.WeightCompactness = def.WeightCompactness
	}
	if o.WeightTeacherBreak <= 0 {
		o.WeightTeacherBreak = def.WeightTeacherBreak
	}
	if o.WeightDaySpread <= 0 {
		o.WeightDaySpread = def.WeightDaySpread
	}
	if o.BacktrackMultiplier <= 0 {
		o.BacktrackMultiplier = def.BacktrackMultiplier
	}
	if o.CompactorMaxPasses <= 0 {
		o.CompactorMaxPasses = def.CompactorMaxPasses
	}
	if o.ThesisDay == "" {
		o.ThesisDay = def.ThesisDay
	}
	if o.FridayPracticalCap <= 0 {
		o.FridayPracticalCap = def.FridayPracticalCap
	}
	if o.FridayTheoryCap <= 0 {
		o.FridayTheoryCap = def.FridayTheoryCap
	}
	if o.DayTailCap <= 0 {
		o.DayTailCap = def.DayTailCap
	}
	if o.SeniorSemesterFloor <= 0 {
		o.SeniorSemesterFloor = def.SeniorSemesterFloor
	}
	return o
}

// Session is one unit of weekly demand. Theory sessions span a single
// period; practicals span practicalBlockLength consecutive periods.
type Session struct {
	SubjectID   string
	SubjectCode string
	SubjectName string
	TeacherID   string
	BatchID     string
	Section     string
	Occurrence  int
	IsPractical bool
	IsThesis    bool
	FinalYear   bool
	Duration    int
}

// Key identifies a session uniquely within a run.
func (s Session) Key() string {
	return fmt.Sprintf("%s/%s/%d", s.SubjectCode, s.Section, s.Occurrence)
}

// ConfigIssue is a configuration error detected before placement. It
// excludes the offending record from the run without aborting it.
type ConfigIssue struct {
	SubjectID   string `json:"subject_id"`
	SubjectCode string `json:"subject_code"`
	Section     string `json:"section,omitempty"`
	Message     string `json:"message"`
}

// Result is the output of one generation run.
type Result struct {
	Entries        []models.TimetableEntry
	FailedSessions []models.FailedSession
	ConfigIssues   []ConfigIssue
	Report         *models.ValidationReport
	Stats          Stats
}

// Stats summarizes search effort for logging and metrics.
type Stats struct {
	SessionsTotal   int
	SessionsPlaced  int
	SessionsFailed  int
	BacktrackSteps  int
	CompactorShifts int
}
