package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ExpandDemand converts subject credit hours into the full session list
// for a run. Theory subjects yield one single-period session per credit,
// required on distinct days. Practical subjects yield exactly one
// 3-consecutive-period block per week regardless of credits.
//
// Records that cannot produce a valid session are reported as
// configuration issues and excluded from the run, never silently
// dropped.
func ExpandDemand(snap *Snapshot, cal *Calendar, opts Options) ([]Session, []ConfigIssue) {
	batchByID := make(map[string]int, len(snap.Batches))
	for i, b := range snap.Batches {
		batchByID[b.ID] = i
	}

	sectionsByBatch := make(map[string][]string)
	for _, sec := range snap.Sections {
		sectionsByBatch[sec.BatchID] = append(sectionsByBatch[sec.BatchID], sec.Label)
	}
	for _, labels := range sectionsByBatch {
		sort.Strings(labels)
	}

	// subject -> section -> teacher IDs claiming responsibility
	responsible := make(map[string]map[string][]string)
	for _, a := range snap.Assignments {
		labels, err := a.SectionLabels()
		if err != nil {
			continue
		}
		if responsible[a.SubjectID] == nil {
			responsible[a.SubjectID] = make(map[string][]string)
		}
		for _, label := range labels {
			label = strings.TrimSpace(label)
			responsible[a.SubjectID][label] = append(responsible[a.SubjectID][label], a.TeacherID)
		}
	}

	subjects := make([]int, 0, len(snap.Subjects))
	for i := range snap.Subjects {
		subjects = append(subjects, i)
	}
	sort.Slice(subjects, func(i, j int) bool {
		return snap.Subjects[subjects[i]].Code < snap.Subjects[subjects[j]].Code
	})

	var sessions []Session
	var issues []ConfigIssue

	for _, idx := range subjects {
		subject := snap.Subjects[idx]

		weekly := subject.Credits
		if subject.IsPractical {
			weekly = 1
		}
		if weekly <= 0 {
			issues = append(issues, ConfigIssue{
				SubjectID:   subject.ID,
				SubjectCode: subject.Code,
				Message:     fmt.Sprintf("subject %s derives zero weekly sessions from %d credits", subject.Code, subject.Credits),
			})
			continue
		}
		if !subject.IsPractical && weekly > len(cal.Days) {
			issues = append(issues, ConfigIssue{
				SubjectID:   subject.ID,
				SubjectCode: subject.Code,
				Message:     fmt.Sprintf("subject %s needs %d distinct days but the calendar has %d", subject.Code, weekly, len(cal.Days)),
			})
			continue
		}

		finalYear := false
		if bi, ok := batchByID[subject.BatchID]; ok {
			finalYear = snap.Batches[bi].IsFinalYear(opts.SeniorSemesterFloor)
		}

		for _, section := range sectionsByBatch[subject.BatchID] {
			teachers := responsible[subject.ID][section]
			switch len(teachers) {
			case 0:
				issues = append(issues, ConfigIssue{
					SubjectID:   subject.ID,
					SubjectCode: subject.Code,
					Section:     section,
					Message:     fmt.Sprintf("subject %s has no responsible teacher for section %s", subject.Code, section),
				})
				continue
			case 1:
			default:
				issues = append(issues, ConfigIssue{
					SubjectID:   subject.ID,
					SubjectCode: subject.Code,
					Section:     section,
					Message:     fmt.Sprintf("subject %s has %d responsible teachers for section %s, expected exactly one", subject.Code, len(teachers), section),
				})
				continue
			}

			duration := 1
			if subject.IsPractical {
				duration = practicalBlockLength
			}

			for occ := 1; occ <= weekly; occ++ {
				sessions = append(sessions, Session{
					SubjectID:   subject.ID,
					SubjectCode: subject.Code,
					SubjectName: subject.Name,
					TeacherID:   teachers[0],
					BatchID:     subject.BatchID,
					Section:     section,
					Occurrence:  occ,
					IsPractical: subject.IsPractical,
					IsThesis:    subject.IsThesis,
					FinalYear:   finalYear,
					Duration:    duration,
				})
			}
		}
	}

	return sessions, issues
}
