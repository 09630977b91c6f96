// file: internals/features/assignments/submissions/model/submission_status.go
package model

import (
	"time"

	"kelasku_backend/internals/helpers/apperr"
)

type SubmissionStatus string

const (
	SubmissionStatusSubmitted   SubmissionStatus = "submitted"
	SubmissionStatusLate        SubmissionStatus = "late"
	SubmissionStatusCanResubmit SubmissionStatus = "canResubmit"

	// Label baca saja untuk scoreboard/overview siswa; tidak pernah disimpan.
	SubmissionStatusNotSubmitted SubmissionStatus = "not submitted"
)

// Feedback bawaan saat guru membuka kesempatan kirim ulang.
const ResubmitFeedback = "ให้นักเรียนส่งงานที่หมอบหมายนี้ใหม่"

type SubmissionEvent string

const (
	EventAllowResubmission SubmissionEvent = "allow_resubmission"
	EventResubmit          SubmissionEvent = "resubmit"
)

var submissionTransitions = map[SubmissionStatus]map[SubmissionEvent]SubmissionStatus{
	SubmissionStatusSubmitted: {
		EventAllowResubmission: SubmissionStatusCanResubmit,
	},
	SubmissionStatusLate: {
		EventAllowResubmission: SubmissionStatusCanResubmit,
	},
	SubmissionStatusCanResubmit: {
		EventResubmit: SubmissionStatusSubmitted,
	},
}

// ClassifySubmission: terlambat jika now >= due (batas inklusif).
// Dipanggil sekali saat submission dibuat; status tidak dihitung ulang.
func ClassifySubmission(now, due time.Time) SubmissionStatus {
	if now.Before(due) {
		return SubmissionStatusSubmitted
	}
	return SubmissionStatusLate
}

// Transition menjalankan event pada status; event yang tidak sah → INVALID_STATE.
func (s SubmissionStatus) Transition(ev SubmissionEvent) (SubmissionStatus, error) {
	if next, ok := submissionTransitions[s][ev]; ok {
		return next, nil
	}
	switch ev {
	case EventResubmit:
		return s, apperr.InvalidState(apperr.CodeCannotResubmit, "cannot resubmit now")
	case EventAllowResubmission:
		return s, apperr.InvalidState(apperr.CodeCannotAllowResubmission, "resubmission is already allowed for this submission")
	default:
		return s, apperr.InvalidState(apperr.CodeInvalidInput, "unknown submission event")
	}
}

func (s SubmissionStatus) Valid() bool {
	_, ok := submissionTransitions[s]
	return ok
}
