package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service/policy"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type Ledger interface {
	Enroll(ctx context.Context, userID, levelID uuid.UUID) (*models.Enrollment, []models.VideoProgress, error)
	CompleteVideo(ctx context.Context, userID, levelID, videoID uuid.UUID) (*models.VideoProgress, *models.Enrollment, error)
	Enrollment(ctx context.Context, userID, levelID uuid.UUID) (*models.Enrollment, error)
	EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	Progress(ctx context.Context, enrollment models.Enrollment) ([]models.Video, []models.VideoProgress, error)
}

type Recorder interface {
	SubmitAnswer(ctx context.Context, userID, questionID uuid.UUID, sub models.Submission) (*models.QuestionAnswer, error)
	Answer(ctx context.Context, userID, questionID uuid.UUID) (*models.QuestionAnswer, error)
	AnswersByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.QuestionAnswer, error)
	AnswersByUser(ctx context.Context, userID uuid.UUID) ([]models.QuestionAnswer, error)
	SubmitExam(ctx context.Context, userID, levelID uuid.UUID, examType models.ExamType, sub models.Submission) (*models.ExamResult, *models.Enrollment, error)
	ExamResults(ctx context.Context, userID, levelID uuid.UUID) ([]models.ExamResult, error)
	AllExamResults(ctx context.Context) ([]models.ExamResult, error)
}

type LevelReader interface {
	LevelsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Level, error)
}

type QuestionReader interface {
	QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	QuestionsByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Question, error)
}

// StatsInvalidator drops cached platform statistics after ledger writes.
type StatsInvalidator interface {
	InvalidatePlatform(ctx context.Context) error
}

type ProgressService struct {
	log       logger.Log
	ledger    Ledger
	recorder  Recorder
	levels    LevelReader
	questions QuestionReader
	stats     StatsInvalidator
}

func NewProgressService(l logger.Log, ledger Ledger, recorder Recorder, levels LevelReader, questions QuestionReader, stats StatsInvalidator) *ProgressService {
	return &ProgressService{
		log:       l,
		ledger:    ledger,
		recorder:  recorder,
		levels:    levels,
		questions: questions,
		stats:     stats,
	}
}

// Purchase enrolls the user in a level on their own behalf.
func (s *ProgressService) Purchase(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) (*models.Enrollment, error) {
	if err := policy.CanActFor(actor, userID); err != nil {
		return nil, err
	}
	enrollment, err := s.enroll(ctx, userID, levelID, app_errors.ErrAlreadyPurchased)
	if err != nil {
		return nil, err
	}
	s.log.Info("level purchased", "user_id", userID, "level_id", levelID)
	return enrollment, nil
}

// Assign enrolls a user in a level by an admin.
func (s *ProgressService) Assign(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) (*models.Enrollment, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	enrollment, err := s.enroll(ctx, userID, levelID, app_errors.ErrAlreadyAssigned)
	if err != nil {
		return nil, err
	}
	s.log.Info("level assigned", "user_id", userID, "level_id", levelID, "admin_id", actor.UserID)
	return enrollment, nil
}

func (s *ProgressService) enroll(ctx context.Context, userID, levelID uuid.UUID, exists error) (*models.Enrollment, error) {
	enrollment, _, err := s.ledger.Enroll(ctx, userID, levelID)
	if err != nil {
		if errors.Is(err, app_errors.ErrAlreadyEnrolled) {
			return nil, exists
		}
		return nil, err
	}
	s.invalidateStats(ctx)
	return enrollment, nil
}

func (s *ProgressService) CompleteVideo(ctx context.Context, actor models.Actor, userID, levelID, videoID uuid.UUID) (*models.VideoProgress, *models.Enrollment, error) {
	if err := policy.CanActFor(actor, userID); err != nil {
		return nil, nil, err
	}
	row, enrollment, err := s.ledger.CompleteVideo(ctx, userID, levelID, videoID)
	if err != nil {
		return nil, nil, err
	}
	if enrollment.CanTakeFinalExam {
		s.log.Debug("final exam unlocked", "user_id", userID, "level_id", levelID)
	}
	return row, enrollment, nil
}

// LevelProgress reports completion counters without touching the ledger.
func (s *ProgressService) LevelProgress(ctx context.Context, actor models.Actor, userID, levelID uuid.UUID) (*models.ProgressCounters, error) {
	if err := policy.CanActFor(actor, userID); err != nil {
		return nil, err
	}
	enrollment, err := s.ledger.Enrollment(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	_, rows, err := s.ledger.Progress(ctx, *enrollment)
	if err != nil {
		return nil, err
	}

	counters := &models.ProgressCounters{
		TotalVideos:      len(rows),
		CanTakeFinalExam: enrollment.CanTakeFinalExam,
	}
	for _, r := range rows {
		if r.IsCompleted {
			counters.CompletedVideos++
		}
	}
	return counters, nil
}

// UserLevels lists every enrollment of the user with per-video flags and the
// user's answers. Clients only see links of videos they have opened.
func (s *ProgressService) UserLevels(ctx context.Context, actor models.Actor, userID uuid.UUID) ([]models.LevelProgress, error) {
	if err := policy.CanActFor(actor, userID); err != nil {
		return nil, err
	}
	enrollments, err := s.ledger.EnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []models.LevelProgress{}, nil
	}

	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.LevelID)
	}
	levels, err := s.levels.LevelsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	levelByID := make(map[uuid.UUID]models.Level, len(levels))
	for _, l := range levels {
		levelByID[l.ID] = l
	}

	answers, err := s.recorder.AnswersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	answerByQuestion := make(models.AnswerIndex, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}

	out := make([]models.LevelProgress, 0, len(enrollments))
	for _, e := range enrollments {
		lp, err := s.levelProgress(ctx, e, levelByID[e.LevelID], answerByQuestion, actor.IsAdmin())
		if err != nil {
			return nil, err
		}
		out = append(out, lp)
	}
	return out, nil
}

func (s *ProgressService) levelProgress(ctx context.Context, e models.Enrollment, level models.Level, answers models.AnswerIndex, admin bool) (models.LevelProgress, error) {
	videos, rows, err := s.ledger.Progress(ctx, e)
	if err != nil {
		return models.LevelProgress{}, err
	}
	questions, err := s.questions.QuestionsByLevel(ctx, e.LevelID)
	if err != nil {
		return models.LevelProgress{}, err
	}
	byVideo := make(map[uuid.UUID][]models.Question, len(videos))
	for _, q := range questions {
		byVideo[q.VideoID] = append(byVideo[q.VideoID], q)
	}

	lp := models.LevelProgress{
		Level:       level,
		Enrollment:  e,
		TotalVideos: len(videos),
		Videos:      make([]models.VideoProgressDetail, 0, len(videos)),
	}
	for i, v := range videos {
		row := rows[i]
		if row.IsCompleted {
			lp.CompletedVideos++
		}
		if !admin && !row.IsOpened {
			v.YoutubeLink = ""
		}
		detail := models.VideoProgressDetail{Video: v, IsOpened: row.IsOpened, IsCompleted: row.IsCompleted}
		if row.IsOpened {
			for _, q := range byVideo[v.ID] {
				if a, ok := answers[q.ID]; ok {
					detail.Answers = append(detail.Answers, a)
				}
			}
		}
		lp.Videos = append(lp.Videos, detail)
	}
	return lp, nil
}

func (s *ProgressService) invalidateStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	if err := s.stats.InvalidatePlatform(ctx); err != nil {
		s.log.ErrorErr("failed to invalidate statistics cache", err)
	}
}
