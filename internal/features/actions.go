package features

// actionLabels maps raw Moodle action codes to human-readable labels. The
// mapping is closed and internal; codes without an entry pass through
// unchanged, so MapAction is total.
var actionLabels = map[string]string{
	"mod_assign_view_assign":             "Viewed Assignment",
	"mod_assign_submit_form":             "Submitted Assignment",
	"mod_quiz_attempt_started":           "Started Quiz",
	"mod_quiz_attempt_submitted":         "Submitted Quiz",
	"mod_forum_view_forum":               "Viewed Forum",
	"mod_forum_post_created":             "Created Forum Post",
	"mod_url_viewed":                     "Viewed URL",
	"core_course_view_course":            "Viewed Course",
	"core_user_login":                    "Logged In",
	"core_user_logout":                   "Logged Out",
	"mod_resource_view_resource":         "Viewed Resource",
	"mod_folder_view_folder":             "Viewed Folder",
	"mod_page_view_page":                 "Viewed Page",
	"core_completion_view_course_module": "Viewed Module",
	"mod_glossary_view_glossary":         "Viewed Glossary",
	"mod_lesson_view_lesson":             "Viewed Lesson",
	"mod_wiki_view_wiki":                 "Viewed Wiki",
	"mod_scorm_view_scorm":               "Viewed SCORM",
	"mod_quiz_report_viewed":             "Viewed Quiz Report",
	"mod_feedback_view_feedback":         "Viewed Feedback",
	"mod_choice_view_choice":             "Viewed Choice",
	"mod_data_view_database":             "Viewed Database",
	"mod_h5pactivity_viewed":             "Viewed H5P",
	"mod_workshop_view_workshop":         "Viewed Workshop",
}

// viewedLabels are the labels counted as passive "viewed" interactions at the
// course level. Course, forum and assignment views are deliberately excluded;
// they feed other features.
var viewedLabels = map[string]bool{
	"Viewed Resource": true,
	"Viewed Page":     true,
	"Viewed Module":   true,
	"Viewed URL":      true,
	"Viewed Glossary": true,
	"Viewed Lesson":   true,
	"Viewed Wiki":     true,
	"Viewed SCORM":    true,
	"Viewed Feedback": true,
	"Viewed Choice":   true,
	"Viewed Database": true,
	"Viewed H5P":      true,
	"Viewed Workshop": true,
}

// gradedLabels are the labels counted as graded/submitted interactions.
var gradedLabels = map[string]bool{
	"Submitted Assignment": true,
	"Submitted Quiz":       true,
}

// MapAction translates a raw action code to its label, returning the code
// itself when no mapping exists.
func MapAction(code string) string {
	if label, ok := actionLabels[code]; ok {
		return label
	}
	return code
}
