package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
)

type ExamType string

const (
	ExamInitial ExamType = "initial"
	ExamFinal   ExamType = "final"
)

func ParseExamType(s string) (ExamType, error) {
	switch t := ExamType(s); t {
	case ExamInitial, ExamFinal:
		return t, nil
	}
	return "", app_errors.Invalid("unknown exam type %q", s)
}

// Submission is one scored pronunciation attempt.
// MaxWordCount bounds the words of one submission.
const MaxWordCount = math.MaxInt32

type Submission struct {
	CorrectWords     int      `json:"correct_words"`
	WrongWords       int      `json:"wrong_words"`
	CorrectWordsList []string `json:"correct_words_list"`
	WrongWordsList   []string `json:"wrong_words_list"`
}

func (s Submission) Validate() error {
	if s.CorrectWords < 0 {
		return app_errors.Invalid("correct_words must not be negative")
	}
	if s.WrongWords < 0 {
		return app_errors.Invalid("wrong_words must not be negative")
	}
	// Counts are stored as INTEGER columns.
	if s.CorrectWords > MaxWordCount || s.WrongWords > MaxWordCount || s.CorrectWords > MaxWordCount-s.WrongWords {
		return app_errors.Invalid("correct_words plus wrong_words must not exceed %d", MaxWordCount)
	}
	return nil
}

func (s Submission) Percentage() float64 {
	return Percentage(s.CorrectWords, s.WrongWords)
}

// Percentage is correct/(correct+wrong)*100, or 0 for an empty attempt.
func Percentage(correct, wrong int) float64 {
	total := correct + wrong
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Ratio returns part/whole as a percentage rounded to two decimals, 0 when whole is 0.
func Ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return Round2(float64(part) / float64(whole) * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type QuestionAnswer struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	CorrectWords     int       `json:"correct_words"`
	WrongWords       int       `json:"wrong_words"`
	Percentage       float64   `json:"percentage"`
	CorrectWordsList []string  `json:"correct_words_list"`
	WrongWordsList   []string  `json:"wrong_words_list"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

func NewQuestionAnswer(userID, questionID uuid.UUID, s Submission, now time.Time) QuestionAnswer {
	return QuestionAnswer{
		ID:               uuid.New(),
		UserID:           userID,
		QuestionID:       questionID,
		CorrectWords:     s.CorrectWords,
		WrongWords:       s.WrongWords,
		Percentage:       s.Percentage(),
		CorrectWordsList: nonNil(s.CorrectWordsList),
		WrongWordsList:   nonNil(s.WrongWordsList),
		SubmittedAt:      now,
	}
}

type ExamResult struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	LevelID          uuid.UUID `json:"level_id"`
	Type             ExamType  `json:"type"`
	CorrectWords     int       `json:"correct_words"`
	WrongWords       int       `json:"wrong_words"`
	Percentage       float64   `json:"percentage"`
	CorrectWordsList []string  `json:"correct_words_list"`
	WrongWordsList   []string  `json:"wrong_words_list"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewExamResult(userID, levelID uuid.UUID, t ExamType, s Submission, now time.Time) ExamResult {
	return ExamResult{
		ID:               uuid.New(),
		UserID:           userID,
		LevelID:          levelID,
		Type:             t,
		CorrectWords:     s.CorrectWords,
		WrongWords:       s.WrongWords,
		Percentage:       s.Percentage(),
		CorrectWordsList: nonNil(s.CorrectWordsList),
		WrongWordsList:   nonNil(s.WrongWordsList),
		CreatedAt:        now,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
