package models

import "github.com/google/uuid"

type PopularLevel struct {
	LevelID   uuid.UUID `json:"level_id"`
	Name      string    `json:"name"`
	Purchases int       `json:"purchases"`
}

type PlatformStatistics struct {
	TotalUsers        int            `json:"total_users"`
	TotalLevels       int            `json:"total_levels"`
	TotalPurchases    int            `json:"total_purchases"`
	CompletedLevels   int            `json:"completed_levels"`
	CompletionRate    float64        `json:"completion_rate"`
	MostPopularLevels []PopularLevel `json:"most_popular_levels"`
}

// UserCounts are the raw aggregates UserStatistics is derived from.
type UserCounts struct {
	PurchasedLevels   int
	CompletedLevels   int
	InitialScoreSum   float64
	InitialScoreCount int
	FinalScoreSum     float64
	FinalScoreCount   int
	ExamsTaken        int
	QuestionsAnswered int
	QuestionScoreSum  float64
}

type UserStatistics struct {
	UserID               uuid.UUID `json:"user_id"`
	UserName             string    `json:"user_name"`
	PurchasedLevels      int       `json:"purchased_levels"`
	CompletedLevels      int       `json:"completed_levels"`
	CompletionRate       float64   `json:"completion_rate"`
	AverageInitialScore  float64   `json:"average_initial_score"`
	AverageFinalScore    float64   `json:"average_final_score"`
	AverageImprovement   float64   `json:"average_improvement"`
	TotalExamsTaken      int       `json:"total_exams_taken"`
	QuestionsAnswered    int       `json:"total_questions_answered"`
	AverageQuestionScore float64   `json:"average_question_score"`
}

// BuildUserStatistics rounds every average to two decimals. The improvement
// is only reported when both exam kinds have been taken.
func BuildUserStatistics(userID uuid.UUID, c UserCounts) UserStatistics {
	st := UserStatistics{
		UserID:            userID,
		PurchasedLevels:   c.PurchasedLevels,
		CompletedLevels:   c.CompletedLevels,
		CompletionRate:    Ratio(c.CompletedLevels, c.PurchasedLevels),
		TotalExamsTaken:   c.ExamsTaken,
		QuestionsAnswered: c.QuestionsAnswered,
	}

	initial := average(c.InitialScoreSum, c.InitialScoreCount)
	final := average(c.FinalScoreSum, c.FinalScoreCount)
	st.AverageInitialScore = Round2(initial)
	st.AverageFinalScore = Round2(final)
	if c.InitialScoreCount > 0 && c.FinalScoreCount > 0 {
		st.AverageImprovement = Round2(final - initial)
	}
	st.AverageQuestionScore = Round2(average(c.QuestionScoreSum, c.QuestionsAnswered))
	return st
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
