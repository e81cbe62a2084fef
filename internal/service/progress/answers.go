package progress

import (
	"context"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service/policy"
)

// SubmitAnswer records the actor's attempt at a question, replacing any earlier one.
func (s *ProgressService) SubmitAnswer(ctx context.Context, actor models.Actor, questionID uuid.UUID, sub models.Submission) (*models.QuestionAnswer, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	answer, err := s.recorder.SubmitAnswer(ctx, actor.UserID, questionID, sub)
	if err != nil {
		return nil, err
	}
	s.log.Debug("answer recorded", "user_id", actor.UserID, "question_id", questionID, "percentage", answer.Percentage)
	return answer, nil
}

func (s *ProgressService) Answer(ctx context.Context, actor models.Actor, userID, questionID uuid.UUID) (*models.QuestionAnswer, error) {
	if err := policy.CanActFor(actor, userID); err != nil {
		return nil, err
	}
	return s.recorder.Answer(ctx, userID, questionID)
}

func (s *ProgressService) QuestionAnswers(ctx context.Context, actor models.Actor, questionID uuid.UUID) ([]models.QuestionAnswer, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.questions.QuestionByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.recorder.AnswersByQuestion(ctx, questionID)
}

// SubmitExam appends an exam attempt and updates the enrollment scores.
func (s *ProgressService) SubmitExam(ctx context.Context, actor models.Actor, levelID uuid.UUID, examType string, sub models.Submission) (*models.ExamResult, *models.Enrollment, error) {
	t, err := models.ParseExamType(examType)
	if err != nil {
		return nil, nil, err
	}
	if err := sub.Validate(); err != nil {
		return nil, nil, err
	}

	result, enrollment, err := s.recorder.SubmitExam(ctx, actor.UserID, levelID, t, sub)
	if err != nil {
		return nil, nil, err
	}
	if t == models.ExamFinal {
		s.invalidateStats(ctx)
	}
	s.log.Info("exam submitted", "user_id", actor.UserID, "level_id", levelID, "type", t, "percentage", result.Percentage)
	return result, enrollment, nil
}

func (s *ProgressService) ExamResults(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) ([]models.ExamResult, error) {
	if err := policy.CanActFor(actor, userID); err != nil {
		return nil, err
	}
	return s.recorder.ExamResults(ctx, userID, levelID)
}

func (s *ProgressService) AllExamResults(ctx context.Context, actor models.Actor) ([]models.ExamResult, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.recorder.AllExamResults(ctx)
}
