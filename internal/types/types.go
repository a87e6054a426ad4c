package types

import "time"

// StudentDescriptor is one entry from the Moodle user listing.
type StudentDescriptor struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	LastAccess string `json:"user_lastaccess,omitempty"`
}

// RawEvent is one recorded student action inside a course. Events are
// value-typed and immutable once the collector has emitted them.
type RawEvent struct {
	UserID         string     `gorm:"index" json:"user_id"`
	UserName       string     `json:"name"`
	CourseFullname string     `gorm:"index" json:"course_fullname"`
	Action         string     `json:"action"`
	Date           time.Time  `json:"date"`
	UserLastAccess *time.Time `json:"user_lastaccess,omitempty"`
}

// FeatureRow is one (student, course) pair with its merged global, per-course
// and recent-window features. Rows exist only for pairs that actually occurred.
type FeatureRow struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	CourseFullname string `json:"course_fullname"`

	CourseLastAccess          time.Time `json:"course_last_access_date"`
	CourseTotalActions        int       `json:"course_total_actions"`
	DaysSinceCourseLastAccess int       `json:"days_since_course_last_access"`
	ViewedCountCourse         int       `json:"viewed_count_course"`
	GradedCountCourse         int       `json:"graded_count_course"`

	LastAccessGlobal          time.Time `json:"last_access_date_global"`
	DaysSinceLastAccessGlobal int       `json:"days_since_last_access_global"`
	TotalActionsGlobal        int       `json:"total_actions_global"`
	UniqueCoursesGlobal       int       `json:"unique_courses_accessed_global"`
	ForumInteractionsGlobal   int       `json:"forum_interactions_global"`
	QuizInteractionsGlobal    int       `json:"quiz_interactions_global"`
	ActiveDaysGlobal          int       `json:"active_days_global"`
	PresenceScoreGlobal       float64   `json:"presence_score_global"`

	// RecentActions counts mapped action labels over the 7-day window ending
	// at the reference date, keyed per student (not per course).
	RecentActions map[string]int `gorm:"serializer:json" json:"recent_actions_summary_global"`
}

// ScoredRow is a FeatureRow plus its rule-engine outcome and the student-level
// roll-up repeated on every one of the student's rows.
type ScoredRow struct {
	FeatureRow `gorm:"embedded"`

	EvasionScore   int      `json:"evasion_score"`
	EvasionReasons []string `gorm:"serializer:json" json:"evasion_reasons"`
	AtRiskInCourse bool     `json:"is_at_risk_in_this_course"`

	OverallScore   int      `json:"overall_evasion_score"`
	AtRisk         bool     `json:"is_at_risk"`
	OverallReasons []string `gorm:"serializer:json" json:"overall_evasion_reasons"`
}

// CourseEvasionSummary is the per-course slice of the population report.
type CourseEvasionSummary struct {
	TotalStudents  int     `json:"total_students"`
	StudentsAtRisk int     `json:"students_at_risk"`
	RiskPct        float64 `json:"risk_pct"`
}

// CourseDetail is one course row nested under a student detail entry.
type CourseDetail struct {
	CourseFullname            string   `json:"course_fullname"`
	EvasionScore              int      `json:"evasion_score"`
	EvasionRiskPct            float64  `json:"evasion_risk_pct"`
	AtRiskInCourse            bool     `json:"is_at_risk_in_this_course"`
	DaysSinceCourseLastAccess int      `json:"days_since_course_last_access"`
	CourseTotalActions        int      `json:"course_total_actions"`
	ViewedCountCourse         int      `json:"viewed_count_course"`
	GradedCountCourse         int      `json:"graded_count_course"`
	EvasionReasons            []string `json:"evasion_reasons_course"`
}

// StudentDetail carries one student's global verdict and per-course rows.
type StudentDetail struct {
	UserID                    string         `json:"user_id"`
	UserName                  string         `json:"user_name"`
	AtRisk                    bool           `json:"is_at_risk"`
	OverallEvasionScore       int            `json:"overall_evasion_score"`
	OverallEvasionRiskPct     float64        `json:"overall_evasion_risk_pct"`
	OverallEvasionReasons     []string       `json:"overall_evasion_reasons"`
	DaysSinceLastAccessGlobal int            `json:"days_since_last_access_global"`
	TotalActionsGlobal        int            `json:"total_actions_global"`
	UniqueCoursesGlobal       int            `json:"unique_courses_accessed_global"`
	ForumInteractionsGlobal   int            `json:"forum_interactions_global"`
	QuizInteractionsGlobal    int            `json:"quiz_interactions_global"`
	PresenceScoreGlobal       float64        `json:"presence_score_global"`
	Courses                   []CourseDetail `json:"courses_details"`
	RecentActionsSummary      map[string]int `json:"recent_actions_summary_global"`
}

// EvasionReport is the population-level view.
type EvasionReport struct {
	TotalStudentsAnalyzed int                             `json:"total_students_analyzed"`
	StudentsAtRisk        int                             `json:"students_at_risk"`
	EstimatedEvasionPct   float64                         `json:"estimated_evasion_pct"`
	EvasionByCourse       map[string]CourseEvasionSummary `json:"evasion_by_course"`
	StudentDetails        []StudentDetail                 `json:"student_details"`
}

// ProfessorRiskRow is one at-risk (student, owned course) pair enriched with
// the student's global verdict.
type ProfessorRiskRow struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	CourseFullname string `json:"course_fullname"`

	AtRiskInCourse            bool     `json:"is_at_risk_in_this_course"`
	CourseEvasionScore        int      `json:"course_evasion_score"`
	CourseEvasionRiskPct      float64  `json:"course_evasion_risk_pct"`
	CourseEvasionReasons      []string `json:"evasion_reasons_course"`
	DaysSinceCourseLastAccess int      `json:"days_since_course_last_access"`
	CourseTotalActions        int      `json:"course_total_actions"`
	ViewedCountCourse         int      `json:"viewed_count_course"`
	GradedCountCourse         int      `json:"graded_count_course"`

	OverallEvasionScore       int            `json:"overall_evasion_score"`
	AtRiskGlobal              bool           `json:"is_at_risk_global"`
	OverallEvasionReasons     []string       `json:"overall_evasion_reasons"`
	DaysSinceLastAccessGlobal int            `json:"days_since_last_access_global"`
	TotalActionsGlobal        int            `json:"total_actions_global"`
	ForumInteractionsGlobal   int            `json:"forum_interactions_global"`
	QuizInteractionsGlobal    int            `json:"quiz_interactions_global"`
	PresenceScoreGlobal       float64        `json:"presence_score_global"`
	RecentActionsSummary      map[string]int `json:"recent_actions_summary_global"`
}

// RecentActionDetail is one raw event rendered for the student profile, with
// the action code already mapped to its label.
type RecentActionDetail struct {
	Date           time.Time `json:"date"`
	Action         string    `json:"mapped_action"`
	CourseFullname string    `json:"course_fullname"`
}

// StudentProfile is one student's report entry plus their most recent raw
// actions (up to 50, newest first).
type StudentProfile struct {
	StudentDetail
	RecentActionsDetailed []RecentActionDetail `json:"all_recent_actions_detailed"`
}
