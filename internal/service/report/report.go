package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type UserRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Ledger interface {
	EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	Progress(ctx context.Context, enrollment models.Enrollment) ([]models.Video, []models.VideoProgress, error)
}

type LevelReader interface {
	LevelsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Level, error)
}

type QuestionReader interface {
	QuestionsByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Question, error)
}

type Recorder interface {
	AnswersByUser(ctx context.Context, userID uuid.UUID) ([]models.QuestionAnswer, error)
	ExamResultsByUser(ctx context.Context, userID uuid.UUID) ([]models.ExamResult, error)
}

type ReportService struct {
	log       logger.Log
	users     UserRepo
	ledger    Ledger
	levels    LevelReader
	questions QuestionReader
	recorder  Recorder
	now       func() time.Time
}

func NewReportService(l logger.Log, users UserRepo, ledger Ledger, levels LevelReader, questions QuestionReader, recorder Recorder) *ReportService {
	return &ReportService{
		log:       l,
		users:     users,
		ledger:    ledger,
		levels:    levels,
		questions: questions,
		recorder:  recorder,
		now:       time.Now,
	}
}

// UserReport collects the actor's whole learning history: every purchased
// level with its videos, questions, answers and exam attempts.
func (s *ReportService) UserReport(ctx context.Context, actor models.Actor) (*models.UserReport, error) {
	user, err := s.users.UserByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.ledger.EnrollmentsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	report := &models.UserReport{User: *user, Levels: []models.LevelReport{}, GeneratedAt: s.now().UTC()}
	if len(enrollments) == 0 {
		return report, nil
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

	answers, err := s.recorder.AnswersByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	index := make(models.AnswerIndex, len(answers))
	for _, a := range answers {
		index[a.QuestionID] = a
	}

	exams, err := s.recorder.ExamResultsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	examsByLevel := make(map[uuid.UUID][]models.ExamResult)
	for _, e := range exams {
		examsByLevel[e.LevelID] = append(examsByLevel[e.LevelID], e)
	}

	for _, e := range enrollments {
		lr, err := s.levelReport(ctx, e, levelByID[e.LevelID], index)
		if err != nil {
			return nil, err
		}
		lr.Exams = examsByLevel[e.LevelID]
		if lr.Exams == nil {
			lr.Exams = []models.ExamResult{}
		}
		report.Levels = append(report.Levels, lr)
	}

	s.log.Debug("user report built", "user_id", user.ID, "levels", len(report.Levels))
	return report, nil
}

func (s *ReportService) levelReport(ctx context.Context, e models.Enrollment, level models.Level, answers models.AnswerIndex) (models.LevelReport, error) {
	videos, rows, err := s.ledger.Progress(ctx, e)
	if err != nil {
		return models.LevelReport{}, err
	}
	questions, err := s.questions.QuestionsByLevel(ctx, e.LevelID)
	if err != nil {
		return models.LevelReport{}, err
	}
	byVideo := make(map[uuid.UUID][]models.Question)
	for _, q := range questions {
		byVideo[q.VideoID] = append(byVideo[q.VideoID], q)
	}

	lr := models.LevelReport{Level: level, Enrollment: e, Videos: make([]models.VideoReport, 0, len(videos))}
	for i, v := range videos {
		vr := models.VideoReport{
			Video:       v,
			IsOpened:    rows[i].IsOpened,
			IsCompleted: rows[i].IsCompleted,
			Questions:   []models.QuestionReport{},
		}
		for _, q := range byVideo[v.ID] {
			qr := models.QuestionReport{Question: q}
			if a, ok := answers[q.ID]; ok {
				qr.Answer = &a
			}
			vr.Questions = append(vr.Questions, qr)
		}
		lr.Videos = append(lr.Videos, vr)
	}
	return lr, nil
}
