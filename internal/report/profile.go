package report

import (
	"sort"

	"github.com/iapioniers/evasion-backend/internal/features"
	pkgerrors "github.com/iapioniers/evasion-backend/internal/pkg/errors"
	"github.com/iapioniers/evasion-backend/internal/types"
)

// maxProfileActions bounds the raw-event detail attached to a profile.
const maxProfileActions = 50

// BuildStudentProfile resolves one student's report entry and attaches up to
// the 50 most recent raw events, newest first, with mapped action labels.
// Unknown students return ErrNotFound; missing raw events degrade to an empty
// detail list.
func BuildStudentProfile(userID string, rows []types.ScoredRow, rawEvents []types.RawEvent) (types.StudentProfile, error) {
	overall := BuildOverallReport(rows)

	var detail *types.StudentDetail
	for i := range overall.StudentDetails {
		if overall.StudentDetails[i].UserID == userID {
			detail = &overall.StudentDetails[i]
			break
		}
	}
	if detail == nil {
		return types.StudentProfile{}, pkgerrors.ErrNotFound
	}

	profile := types.StudentProfile{
		StudentDetail:         *detail,
		RecentActionsDetailed: []types.RecentActionDetail{},
	}

	mine := make([]types.RawEvent, 0)
	for _, ev := range rawEvents {
		if ev.UserID == userID {
			mine = append(mine, ev)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].Date.After(mine[j].Date) })
	if len(mine) > maxProfileActions {
		mine = mine[:maxProfileActions]
	}
	for _, ev := range mine {
		profile.RecentActionsDetailed = append(profile.RecentActionsDetailed, types.RecentActionDetail{
			Date:           ev.Date,
			Action:         features.MapAction(ev.Action),
			CourseFullname: ev.CourseFullname,
		})
	}
	return profile, nil
}
