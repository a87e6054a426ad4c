package report

import (
	"math"
	"sort"

	"github.com/iapioniers/evasion-backend/internal/scoring"
	"github.com/iapioniers/evasion-backend/internal/types"
)

// BuildOverallReport shapes a scored table into the population-level view.
// Empty input produces a zeroed report with empty collections, never an error.
func BuildOverallReport(rows []types.ScoredRow) types.EvasionReport {
	report := types.EvasionReport{
		EvasionByCourse: map[string]types.CourseEvasionSummary{},
		StudentDetails:  []types.StudentDetail{},
	}
	if len(rows) == 0 {
		return report
	}

	// One representative row per student, in first-seen order. Roll-up fields
	// are repeated on every row, so any row of a student will do.
	order := make([]string, 0)
	firstRow := make(map[string]types.ScoredRow)
	byStudent := make(map[string][]types.ScoredRow)
	for _, row := range rows {
		if _, ok := firstRow[row.UserID]; !ok {
			firstRow[row.UserID] = row
			order = append(order, row.UserID)
		}
		byStudent[row.UserID] = append(byStudent[row.UserID], row)
	}

	atRisk := 0
	for _, userID := range order {
		if firstRow[userID].AtRisk {
			atRisk++
		}
	}
	report.TotalStudentsAnalyzed = len(order)
	report.StudentsAtRisk = atRisk
	if len(order) > 0 {
		report.EstimatedEvasionPct = round2(float64(atRisk) / float64(len(order)) * 100)
	}

	report.EvasionByCourse = courseBreakdown(rows)

	for _, userID := range order {
		report.StudentDetails = append(report.StudentDetails, studentDetail(firstRow[userID], byStudent[userID]))
	}
	return report
}

func courseBreakdown(rows []types.ScoredRow) map[string]types.CourseEvasionSummary {
	totals := make(map[string]map[string]bool)
	risky := make(map[string]map[string]bool)
	for _, row := range rows {
		if totals[row.CourseFullname] == nil {
			totals[row.CourseFullname] = make(map[string]bool)
			risky[row.CourseFullname] = make(map[string]bool)
		}
		totals[row.CourseFullname][row.UserID] = true
		if row.AtRisk {
			risky[row.CourseFullname][row.UserID] = true
		}
	}
	out := make(map[string]types.CourseEvasionSummary, len(totals))
	for course, students := range totals {
		total := len(students)
		riskCount := len(risky[course])
		pct := 0.0
		if total > 0 {
			pct = round2(float64(riskCount) / float64(total) * 100)
		}
		out[course] = types.CourseEvasionSummary{
			TotalStudents:  total,
			StudentsAtRisk: riskCount,
			RiskPct:        pct,
		}
	}
	return out
}

func studentDetail(rep types.ScoredRow, courseRows []types.ScoredRow) types.StudentDetail {
	courses := make([]types.CourseDetail, 0, len(courseRows))
	for _, row := range courseRows {
		courses = append(courses, types.CourseDetail{
			CourseFullname:            row.CourseFullname,
			EvasionScore:              row.EvasionScore,
			EvasionRiskPct:            scorePct(row.EvasionScore),
			AtRiskInCourse:            row.AtRiskInCourse,
			DaysSinceCourseLastAccess: row.DaysSinceCourseLastAccess,
			CourseTotalActions:        row.CourseTotalActions,
			ViewedCountCourse:         row.ViewedCountCourse,
			GradedCountCourse:         row.GradedCountCourse,
			EvasionReasons:            row.EvasionReasons,
		})
	}
	recent := rep.RecentActions
	if recent == nil {
		recent = map[string]int{}
	}
	return types.StudentDetail{
		UserID:                    rep.UserID,
		UserName:                  rep.UserName,
		AtRisk:                    rep.AtRisk,
		OverallEvasionScore:       rep.OverallScore,
		OverallEvasionRiskPct:     scorePct(rep.OverallScore),
		OverallEvasionReasons:     rep.OverallReasons,
		DaysSinceLastAccessGlobal: rep.DaysSinceLastAccessGlobal,
		TotalActionsGlobal:        rep.TotalActionsGlobal,
		UniqueCoursesGlobal:       rep.UniqueCoursesGlobal,
		ForumInteractionsGlobal:   rep.ForumInteractionsGlobal,
		QuizInteractionsGlobal:    rep.QuizInteractionsGlobal,
		PresenceScoreGlobal:       rep.PresenceScoreGlobal,
		Courses:                   courses,
		RecentActionsSummary:      recent,
	}
}

// BuildProfessorRiskList returns one row per at-risk (student, owned course)
// pair for the given professor, sorted by course name then student name. An
// unmapped professor or a clean roster yields an empty list.
func BuildProfessorRiskList(rows []types.ScoredRow, ownedCourses []string) []types.ProfessorRiskRow {
	out := []types.ProfessorRiskRow{}
	if len(rows) == 0 || len(ownedCourses) == 0 {
		return out
	}
	owned := make(map[string]bool, len(ownedCourses))
	for _, c := range ownedCourses {
		owned[c] = true
	}

	for _, row := range rows {
		if !owned[row.CourseFullname] || !row.AtRisk {
			continue
		}
		recent := row.RecentActions
		if recent == nil {
			recent = map[string]int{}
		}
		out = append(out, types.ProfessorRiskRow{
			UserID:         row.UserID,
			UserName:       row.UserName,
			CourseFullname: row.CourseFullname,

			AtRiskInCourse:            row.AtRiskInCourse,
			CourseEvasionScore:        row.EvasionScore,
			CourseEvasionRiskPct:      scorePct(row.EvasionScore),
			CourseEvasionReasons:      row.EvasionReasons,
			DaysSinceCourseLastAccess: row.DaysSinceCourseLastAccess,
			CourseTotalActions:        row.CourseTotalActions,
			ViewedCountCourse:         row.ViewedCountCourse,
			GradedCountCourse:         row.GradedCountCourse,

			OverallEvasionScore:       row.OverallScore,
			AtRiskGlobal:              row.AtRisk,
			OverallEvasionReasons:     row.OverallReasons,
			DaysSinceLastAccessGlobal: row.DaysSinceLastAccessGlobal,
			TotalActionsGlobal:        row.TotalActionsGlobal,
			ForumInteractionsGlobal:   row.ForumInteractionsGlobal,
			QuizInteractionsGlobal:    row.QuizInteractionsGlobal,
			PresenceScoreGlobal:       row.PresenceScoreGlobal,
			RecentActionsSummary:      recent,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CourseFullname != out[j].CourseFullname {
			return out[i].CourseFullname < out[j].CourseFullname
		}
		return out[i].UserName < out[j].UserName
	})
	return out
}

func scorePct(score int) float64 {
	if scoring.MaxPossibleScore <= 0 {
		return 0
	}
	return round2(float64(score) / float64(scoring.MaxPossibleScore) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
