package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
)

// Enrollment is the ledger row of one user in one level.
type Enrollment struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	LevelID          uuid.UUID `json:"level_id"`
	IsCompleted      bool      `json:"is_completed"`
	CanTakeFinalExam bool      `json:"can_take_final_exam"`
	InitialExamScore *float64  `json:"initial_exam_score"`
	FinalExamScore   *float64  `json:"final_exam_score"`
	ScoreDifference  *float64  `json:"score_difference"`
	CreatedAt        time.Time `json:"created_at"`
}

type VideoProgress struct {
	ID           uuid.UUID `json:"id"`
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	VideoID      uuid.UUID `json:"video_id"`
	IsOpened     bool      `json:"is_opened"`
	IsCompleted  bool      `json:"is_completed"`
}

// SeedProgress builds one progress row per video with only the first video
// in sequence opened.
func SeedProgress(enrollmentID uuid.UUID, videos []Video) []VideoProgress {
	ordered := make([]Video, len(videos))
	copy(ordered, videos)
	SortVideos(ordered)

	rows := make([]VideoProgress, 0, len(ordered))
	for i, v := range ordered {
		rows = append(rows, VideoProgress{
			ID:           uuid.New(),
			EnrollmentID: enrollmentID,
			VideoID:      v.ID,
			IsOpened:     i == 0,
		})
	}
	return rows
}

// AllCompleted reports whether every row is completed. An empty set is never
// complete, so a level without videos keeps its final exam locked.
func AllCompleted(rows []VideoProgress) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !r.IsCompleted {
			return false
		}
	}
	return true
}

// ApplyExam records an exam score on the enrollment.
func (e *Enrollment) ApplyExam(examType ExamType, score float64) error {
	switch examType {
	case ExamInitial:
		e.InitialExamScore = &score
	case ExamFinal:
		if !e.CanTakeFinalExam {
			return app_errors.ErrExamNotAvailable
		}
		e.FinalExamScore = &score
		e.IsCompleted = true
	default:
		return app_errors.Invalid("unknown exam type %q", examType)
	}

	if e.InitialExamScore != nil && e.FinalExamScore != nil {
		diff := *e.FinalExamScore - *e.InitialExamScore
		e.ScoreDifference = &diff
	}
	return nil
}

// LevelProgress is a read-only view of one enrollment.
type LevelProgress struct {
	Level           Level                 `json:"level"`
	Enrollment      Enrollment            `json:"enrollment"`
	CompletedVideos int                   `json:"completed_videos"`
	TotalVideos     int                   `json:"total_videos"`
	Videos          []VideoProgressDetail `json:"videos"`
}

type VideoProgressDetail struct {
	Video       Video            `json:"video"`
	IsOpened    bool             `json:"is_opened"`
	IsCompleted bool             `json:"is_completed"`
	Answers     []QuestionAnswer `json:"answers,omitempty"`
}

// ProgressCounters is the compact progress view of one enrollment.
type ProgressCounters struct {
	CompletedVideos  int  `json:"completed_videos"`
	TotalVideos      int  `json:"total_videos"`
	CanTakeFinalExam bool `json:"can_take_final_exam"`
}
