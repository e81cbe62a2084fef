package models

import (
	"time"

	"github.com/google/uuid"
)

type UserReport struct {
	User        User          `json:"user"`
	Levels      []LevelReport `json:"levels"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type LevelReport struct {
	Level      Level         `json:"level"`
	Enrollment Enrollment    `json:"enrollment"`
	Videos     []VideoReport `json:"videos"`
	Exams      []ExamResult  `json:"exams"`
}

type VideoReport struct {
	Video       Video            `json:"video"`
	IsOpened    bool             `json:"is_opened"`
	IsCompleted bool             `json:"is_completed"`
	Questions   []QuestionReport `json:"questions"`
}

// QuestionReport pairs a question with the user's answer, if any.
type QuestionReport struct {
	Question Question        `json:"question"`
	Answer   *QuestionAnswer `json:"answer"`
}

// AnswerIndex groups a user's answers by question.
type AnswerIndex map[uuid.UUID]QuestionAnswer
