package scoring

import (
	"fmt"

	"github.com/iapioniers/evasion-backend/internal/types"
)

// Rule weights and thresholds. Each rule triggers independently and its
// weight is added to the row's score.
const (
	PointsGlobalInactivity = 40
	PointsCourseInactivity = 30
	PointsLowGlobalActions = 20
	PointsLowCourseActions = 10

	ThresholdGlobalInactivityDays = 30
	ThresholdCourseInactivityDays = 15
	ThresholdLowGlobalActions     = 10
	ThresholdLowCourseActions     = 3

	MinScoreForRisk  = 20
	MaxPossibleScore = PointsGlobalInactivity + PointsCourseInactivity + PointsLowGlobalActions + PointsLowCourseActions
)

func globalInactivityReason() string {
	return fmt.Sprintf("Globally inactive (> %d days)", ThresholdGlobalInactivityDays)
}

func courseInactivityReason(course string) string {
	return fmt.Sprintf("Inactive in course '%s' (> %d days)", course, ThresholdCourseInactivityDays)
}

func lowGlobalActionsReason() string {
	return fmt.Sprintf("Low global interactions (< %d total actions)", ThresholdLowGlobalActions)
}

func lowCourseActionsReason(course string) string {
	return fmt.Sprintf("Low interactions in course '%s' (< %d actions)", course, ThresholdLowCourseActions)
}

// ScoreRow applies the rule set to one feature row and returns the additive
// score with the triggered-rule descriptions in rule order.
func ScoreRow(row types.FeatureRow) (int, []string) {
	score := 0
	reasons := make([]string, 0, 4)

	if row.DaysSinceLastAccessGlobal > ThresholdGlobalInactivityDays {
		score += PointsGlobalInactivity
		reasons = append(reasons, globalInactivityReason())
	}
	if row.DaysSinceCourseLastAccess > ThresholdCourseInactivityDays {
		score += PointsCourseInactivity
		reasons = append(reasons, courseInactivityReason(row.CourseFullname))
	}
	if row.TotalActionsGlobal < ThresholdLowGlobalActions {
		score += PointsLowGlobalActions
		reasons = append(reasons, lowGlobalActionsReason())
	}
	if row.CourseTotalActions < ThresholdLowCourseActions {
		score += PointsLowCourseActions
		reasons = append(reasons, lowCourseActionsReason(row.CourseFullname))
	}
	return score, reasons
}

// Score scores every feature row and rolls the results up to a student-level
// verdict repeated on each of the student's rows: overall score is the max
// over course rows, overall risk the OR of course flags, and overall reasons
// the first-seen-order de-duplicated union of reasons from at-risk course rows
// plus the two global rules re-checked against the global figures. Empty input
// yields empty output.
func Score(rows []types.FeatureRow) []types.ScoredRow {
	if len(rows) == 0 {
		return []types.ScoredRow{}
	}

	scored := make([]types.ScoredRow, len(rows))
	for i, row := range rows {
		score, reasons := ScoreRow(row)
		scored[i] = types.ScoredRow{
			FeatureRow:     row,
			EvasionScore:   score,
			EvasionReasons: reasons,
			AtRiskInCourse: score >= MinScoreForRisk,
		}
	}

	type verdict struct {
		score   int
		atRisk  bool
		reasons []string
		seen    map[string]bool
	}
	verdicts := make(map[string]*verdict)
	for i := range scored {
		row := &scored[i]
		v, ok := verdicts[row.UserID]
		if !ok {
			v = &verdict{seen: make(map[string]bool)}
			verdicts[row.UserID] = v
		}
		if row.EvasionScore > v.score {
			v.score = row.EvasionScore
		}
		if row.AtRiskInCourse {
			v.atRisk = true
			for _, r := range row.EvasionReasons {
				if !v.seen[r] {
					v.seen[r] = true
					v.reasons = append(v.reasons, r)
				}
			}
		}
	}

	// Global rules re-evaluated once per student, so a student at risk only
	// through course rules still surfaces independently-holding global
	// reasons.
	for i := range scored {
		row := &scored[i]
		v := verdicts[row.UserID]
		if row.DaysSinceLastAccessGlobal > ThresholdGlobalInactivityDays {
			r := globalInactivityReason()
			if !v.seen[r] {
				v.seen[r] = true
				v.reasons = append(v.reasons, r)
			}
		}
		if row.TotalActionsGlobal < ThresholdLowGlobalActions {
			r := lowGlobalActionsReason()
			if !v.seen[r] {
				v.seen[r] = true
				v.reasons = append(v.reasons, r)
			}
		}
	}

	for i := range scored {
		row := &scored[i]
		v := verdicts[row.UserID]
		row.OverallScore = v.score
		row.AtRisk = v.atRisk
		reasons := make([]string, len(v.reasons))
		copy(reasons, v.reasons)
		row.OverallReasons = reasons
	}
	return scored
}
