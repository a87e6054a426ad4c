package features

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iapioniers/evasion-backend/internal/types"
)

// RecentWindowDays is the span of the recent-action histogram, anchored at the
// reference date.
const RecentWindowDays = 7

type globalAgg struct {
	userName   string
	lastAccess time.Time
	total      int
	courses    map[string]bool
	forum      int
	quiz       int
	activeDays map[string]bool
}

type courseAgg struct {
	lastAccess time.Time
	total      int
	viewed     int
	graded     int
}

type pairKey struct {
	userID string
	course string
}

// BuildFeatures turns a flat event table into one merged feature row per
// (student, course) pair that actually occurred. A zero referenceDate defaults
// to the maximum event timestamp. Empty input yields an empty table.
//
// Output order is deterministic: rows sort by user id, then course name, so
// repeated runs over the same input are byte-identical.
func BuildFeatures(events []types.RawEvent, referenceDate time.Time) []types.FeatureRow {
	if len(events) == 0 {
		return []types.FeatureRow{}
	}
	if referenceDate.IsZero() {
		for _, ev := range events {
			if ev.Date.After(referenceDate) {
				referenceDate = ev.Date
			}
		}
	}

	globals := make(map[string]*globalAgg)
	courseRows := make(map[pairKey]*courseAgg)
	recent := make(map[string]map[string]int)
	windowStart := referenceDate.AddDate(0, 0, -RecentWindowDays)

	for _, ev := range events {
		g, ok := globals[ev.UserID]
		if !ok {
			g = &globalAgg{
				userName:   ev.UserName,
				lastAccess: ev.Date,
				courses:    make(map[string]bool),
				activeDays: make(map[string]bool),
			}
			globals[ev.UserID] = g
		}
		if ev.Date.After(g.lastAccess) {
			g.lastAccess = ev.Date
		}
		g.total++
		g.courses[ev.CourseFullname] = true
		g.activeDays[ev.Date.Format("2006-01-02")] = true
		if strings.Contains(ev.Action, "forum") {
			g.forum++
		}
		if strings.Contains(ev.Action, "quiz") {
			g.quiz++
		}

		key := pairKey{userID: ev.UserID, course: ev.CourseFullname}
		cr, ok := courseRows[key]
		if !ok {
			cr = &courseAgg{lastAccess: ev.Date}
			courseRows[key] = cr
		}
		if ev.Date.After(cr.lastAccess) {
			cr.lastAccess = ev.Date
		}
		cr.total++

		// Viewed/graded classification works on the mapped label; raw-code
		// substring matching is too coarse to split views from submissions.
		label := MapAction(ev.Action)
		if viewedLabels[label] {
			cr.viewed++
		}
		if gradedLabels[label] {
			cr.graded++
		}

		if !ev.Date.Before(windowStart) && !ev.Date.After(referenceDate) {
			hist, ok := recent[ev.UserID]
			if !ok {
				hist = make(map[string]int)
				recent[ev.UserID] = hist
			}
			hist[label]++
		}
	}

	presence := presenceScores(globals)

	keys := make([]pairKey, 0, len(courseRows))
	for key := range courseRows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].userID != keys[j].userID {
			return keys[i].userID < keys[j].userID
		}
		return keys[i].course < keys[j].course
	})

	rows := make([]types.FeatureRow, 0, len(keys))
	for _, key := range keys {
		g := globals[key.userID]
		cr := courseRows[key]
		hist := recent[key.userID]
		if hist == nil {
			hist = map[string]int{}
		}
		rows = append(rows, types.FeatureRow{
			UserID:         key.userID,
			UserName:       g.userName,
			CourseFullname: key.course,

			CourseLastAccess:          cr.lastAccess,
			CourseTotalActions:        cr.total,
			DaysSinceCourseLastAccess: daysBetween(cr.lastAccess, referenceDate),
			ViewedCountCourse:         cr.viewed,
			GradedCountCourse:         cr.graded,

			LastAccessGlobal:          g.lastAccess,
			DaysSinceLastAccessGlobal: daysBetween(g.lastAccess, referenceDate),
			TotalActionsGlobal:        g.total,
			UniqueCoursesGlobal:       len(g.courses),
			ForumInteractionsGlobal:   g.forum,
			QuizInteractionsGlobal:    g.quiz,
			ActiveDaysGlobal:          len(g.activeDays),
			PresenceScoreGlobal:       presence[key.userID],

			RecentActions: hist,
		})
	}
	return rows
}

// presenceScores normalizes each student's average actions per active day
// against the batch maximum, onto a 0..100 scale. Students with zero active
// days score 0; when the batch maximum itself is 0, everyone scores 0.
func presenceScores(globals map[string]*globalAgg) map[string]float64 {
	avg := make(map[string]float64, len(globals))
	maxAvg := 0.0
	for userID, g := range globals {
		v := 0.0
		if len(g.activeDays) > 0 {
			v = float64(g.total) / float64(len(g.activeDays))
		}
		avg[userID] = v
		if v > maxAvg {
			maxAvg = v
		}
	}
	scores := make(map[string]float64, len(globals))
	for userID, v := range avg {
		if maxAvg > 0 {
			scores[userID] = round2(v / maxAvg * 100)
		} else {
			scores[userID] = 0
		}
	}
	return scores
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
