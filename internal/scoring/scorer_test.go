package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/iapioniers/evasion-backend/internal/features"
	"github.com/iapioniers/evasion-backend/internal/types"
)

func featureRow(user, course string, daysGlobal, daysCourse, totalGlobal, totalCourse int) types.FeatureRow {
	return types.FeatureRow{
		UserID:                    user,
		UserName:                  "Student " + user,
		CourseFullname:            course,
		DaysSinceLastAccessGlobal: daysGlobal,
		DaysSinceCourseLastAccess: daysCourse,
		TotalActionsGlobal:        totalGlobal,
		CourseTotalActions:        totalCourse,
	}
}

func TestScoreRowNoRulesTriggered(t *testing.T) {
	row := featureRow("user1", "Curso X", 5, 5, 10, 3)
	score, reasons := ScoreRow(row)
	if score != 0 {
		t.Fatalf("score = %d, want 0", score)
	}
	if len(reasons) != 0 {
		t.Fatalf("reasons = %v, want none", reasons)
	}
}

func TestScoreRowAllRulesTriggered(t *testing.T) {
	row := featureRow("u", "C", 31, 16, 9, 2)
	score, reasons := ScoreRow(row)
	if score != MaxPossibleScore {
		t.Fatalf("score = %d, want %d", score, MaxPossibleScore)
	}
	if len(reasons) != 4 {
		t.Fatalf("expected 4 reasons, got %v", reasons)
	}
}

func TestScoreRowThresholdBoundaries(t *testing.T) {
	// Exactly at every threshold: nothing triggers.
	row := featureRow("u", "C", ThresholdGlobalInactivityDays, ThresholdCourseInactivityDays, ThresholdLowGlobalActions, ThresholdLowCourseActions)
	if score, _ := ScoreRow(row); score != 0 {
		t.Fatalf("score at thresholds = %d, want 0", score)
	}
}

func TestScoreBoundsAndRiskFlag(t *testing.T) {
	rows := []types.FeatureRow{
		featureRow("u1", "A", 5, 5, 50, 10),
		featureRow("u2", "A", 31, 5, 50, 10),
		featureRow("u3", "A", 5, 16, 50, 10),
		featureRow("u4", "A", 5, 5, 5, 10),
		featureRow("u5", "A", 5, 5, 50, 1),
		featureRow("u6", "A", 40, 40, 2, 1),
	}
	for _, scored := range Score(rows) {
		if scored.EvasionScore < 0 || scored.EvasionScore > MaxPossibleScore {
			t.Fatalf("score %d out of [0, %d]", scored.EvasionScore, MaxPossibleScore)
		}
		if scored.AtRiskInCourse != (scored.EvasionScore >= MinScoreForRisk) {
			t.Fatalf("risk flag inconsistent with score %d", scored.EvasionScore)
		}
	}
}

func TestRollupMaxAndOr(t *testing.T) {
	rows := []types.FeatureRow{
		featureRow("u1", "A", 5, 20, 50, 10), // course inactivity: 30
		featureRow("u1", "B", 5, 5, 50, 10),  // clean: 0
	}
	scored := Score(rows)
	for _, row := range scored {
		if row.OverallScore != 30 {
			t.Fatalf("overall score = %d, want 30 (max over courses)", row.OverallScore)
		}
		if !row.AtRisk {
			t.Fatalf("overall risk should be OR of course flags")
		}
	}
	// Per-course flags stay per-course.
	if !scored[0].AtRiskInCourse || scored[1].AtRiskInCourse {
		t.Fatalf("per-course flags wrong: %v %v", scored[0].AtRiskInCourse, scored[1].AtRiskInCourse)
	}
	if scored[0].OverallScore < scored[0].EvasionScore || scored[1].OverallScore < scored[1].EvasionScore {
		t.Fatalf("overall score must be >= every course score")
	}
}

func TestGlobalReasonsSurfaceInRollup(t *testing.T) {
	// Global last access 40 days ago with only 2 total actions: both global
	// rules hold, overall score must be at least 60.
	rows := []types.FeatureRow{
		featureRow("u1", "A", 40, 40, 2, 1),
	}
	scored := Score(rows)
	row := scored[0]
	if row.OverallScore < 60 {
		t.Fatalf("overall score = %d, want >= 60", row.OverallScore)
	}
	wantGlobal := globalInactivityReason()
	wantLow := lowGlobalActionsReason()
	seen := map[string]bool{}
	for _, r := range row.OverallReasons {
		seen[r] = true
	}
	if !seen[wantGlobal] || !seen[wantLow] {
		t.Fatalf("overall reasons %v missing global reasons", row.OverallReasons)
	}
}

func TestOverallReasonsDeduplicated(t *testing.T) {
	// Same global rule triggers on both course rows; the roll-up must carry
	// it once, in first-seen order.
	rows := []types.FeatureRow{
		featureRow("u1", "A", 40, 5, 50, 10),
		featureRow("u1", "B", 40, 5, 50, 10),
	}
	scored := Score(rows)
	counts := map[string]int{}
	for _, r := range scored[0].OverallReasons {
		counts[r]++
	}
	for reason, n := range counts {
		if n != 1 {
			t.Fatalf("reason %q appears %d times", reason, n)
		}
	}
}

func TestScoreEmptyInput(t *testing.T) {
	if got := Score(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %d rows", len(got))
	}
}

func TestPipelineIdempotent(t *testing.T) {
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	events := []types.RawEvent{
		{UserID: "u1", UserName: "A", CourseFullname: "X", Action: "core_user_login", Date: ref.AddDate(0, 0, -2)},
		{UserID: "u1", UserName: "A", CourseFullname: "Y", Action: "mod_quiz_attempt_submitted", Date: ref.AddDate(0, 0, -40)},
		{UserID: "u2", UserName: "B", CourseFullname: "X", Action: "mod_page_view_page", Date: ref.AddDate(0, 0, -1)},
	}
	first := Score(features.BuildFeatures(events, ref))
	second := Score(features.BuildFeatures(events, ref))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("pipeline output not idempotent")
	}
}
