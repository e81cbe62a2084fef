package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

type enrollmentKey struct{ user, level uuid.UUID }

type answerKey struct{ user, question uuid.UUID }

// memStore is an in-memory ledger and recorder applying the model transitions.
type memStore struct {
	mu          sync.Mutex
	levels      map[uuid.UUID]models.Level
	videos      map[uuid.UUID][]models.Video
	questions   map[uuid.UUID]models.Question
	enrollments map[enrollmentKey]*models.Enrollment
	rows        map[uuid.UUID][]models.VideoProgress
	answers     map[answerKey]models.QuestionAnswer
	exams       []models.ExamResult
	invalidated int
}

func newMemStore() *memStore {
	return &memStore{
		levels:      map[uuid.UUID]models.Level{},
		videos:      map[uuid.UUID][]models.Video{},
		questions:   map[uuid.UUID]models.Question{},
		enrollments: map[enrollmentKey]*models.Enrollment{},
		rows:        map[uuid.UUID][]models.VideoProgress{},
		answers:     map[answerKey]models.QuestionAnswer{},
	}
}

func (m *memStore) addLevel(videoCount int) (models.Level, []models.Video) {
	level := models.Level{ID: uuid.New(), Name: "Level", LevelNumber: len(m.levels) + 1}
	m.levels[level.ID] = level
	var videos []models.Video
	for i := 0; i < videoCount; i++ {
		v := models.Video{ID: uuid.New(), LevelID: level.ID, Order: i + 1, YoutubeLink: "https://y/" + uuid.NewString()}
		videos = append(videos, v)
		q := models.Question{ID: uuid.New(), VideoID: v.ID, Text: "say it", Order: 1}
		m.questions[q.ID] = q
	}
	m.videos[level.ID] = videos
	return level, videos
}

func (m *memStore) Enroll(_ context.Context, userID, levelID uuid.UUID) (*models.Enrollment, []models.VideoProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.levels[levelID]; !ok {
		return nil, nil, app_errors.ErrLevelNotFound
	}
	key := enrollmentKey{userID, levelID}
	if _, ok := m.enrollments[key]; ok {
		return nil, nil, app_errors.ErrAlreadyEnrolled
	}
	e := &models.Enrollment{ID: uuid.New(), UserID: userID, LevelID: levelID, CreatedAt: time.Now()}
	m.enrollments[key] = e
	rows := models.SeedProgress(e.ID, m.videos[levelID])
	m.rows[e.ID] = rows
	out := *e
	return &out, rows, nil
}

func (m *memStore) CompleteVideo(_ context.Context, userID, levelID, videoID uuid.UUID) (*models.VideoProgress, *models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[enrollmentKey{userID, levelID}]
	if !ok {
		return nil, nil, app_errors.ErrNotEnrolled
	}
	rows := m.rows[e.ID]
	idx := -1
	for i := range rows {
		if rows[i].VideoID == videoID {
			idx = i
		}
	}
	if idx < 0 {
		return nil, nil, app_errors.ErrVideoNotAccessible
	}
	rows[idx].IsCompleted = true
	if next, ok := models.NextVideo(m.videos[levelID], videoID); ok {
		for i := range rows {
			if rows[i].VideoID == next.ID {
				rows[i].IsOpened = true
			}
		}
	}
	if models.AllCompleted(rows) {
		e.CanTakeFinalExam = true
	}
	row, out := rows[idx], *e
	return &row, &out, nil
}

func (m *memStore) Enrollment(_ context.Context, userID, levelID uuid.UUID) (*models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[enrollmentKey{userID, levelID}]
	if !ok {
		return nil, app_errors.ErrLevelNotPurchased
	}
	out := *e
	return &out, nil
}

func (m *memStore) EnrollmentsByUser(_ context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Enrollment{}
	for k, e := range m.enrollments {
		if k.user == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memStore) Progress(_ context.Context, e models.Enrollment) ([]models.Video, []models.VideoProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]models.VideoProgress, len(m.rows[e.ID]))
	copy(rows, m.rows[e.ID])
	return m.videos[e.LevelID], rows, nil
}

func (m *memStore) SubmitAnswer(_ context.Context, userID, questionID uuid.UUID, sub models.Submission) (*models.QuestionAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[questionID]
	if !ok {
		return nil, app_errors.ErrQuestionNotFound
	}
	var level uuid.UUID
	for id, videos := range m.videos {
		for _, v := range videos {
			if v.ID == q.VideoID {
				level = id
			}
		}
	}
	e, ok := m.enrollments[enrollmentKey{userID, level}]
	if !ok {
		return nil, app_errors.ErrLevelNotPurchased
	}
	opened := false
	for _, r := range m.rows[e.ID] {
		if r.VideoID == q.VideoID {
			opened = r.IsOpened
		}
	}
	if !opened {
		return nil, app_errors.ErrVideoNotOpened
	}
	a := models.NewQuestionAnswer(userID, questionID, sub, time.Now())
	m.answers[answerKey{userID, questionID}] = a
	return &a, nil
}

func (m *memStore) Answer(_ context.Context, userID, questionID uuid.UUID) (*models.QuestionAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[answerKey{userID, questionID}]
	if !ok {
		return nil, app_errors.ErrAnswerNotFound
	}
	return &a, nil
}

func (m *memStore) AnswersByQuestion(_ context.Context, questionID uuid.UUID) ([]models.QuestionAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.QuestionAnswer{}
	for k, a := range m.answers {
		if k.question == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) AnswersByUser(_ context.Context, userID uuid.UUID) ([]models.QuestionAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.QuestionAnswer{}
	for k, a := range m.answers {
		if k.user == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) SubmitExam(_ context.Context, userID, levelID uuid.UUID, t models.ExamType, sub models.Submission) (*models.ExamResult, *models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[enrollmentKey{userID, levelID}]
	if !ok {
		return nil, nil, app_errors.ErrLevelNotPurchased
	}
	updated := *e
	result := models.NewExamResult(userID, levelID, t, sub, time.Now())
	if err := updated.ApplyExam(t, result.Percentage); err != nil {
		return nil, nil, err
	}
	*e = updated
	m.exams = append(m.exams, result)
	return &result, &updated, nil
}

func (m *memStore) ExamResults(_ context.Context, userID, levelID uuid.UUID) ([]models.ExamResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ExamResult{}
	for _, r := range m.exams {
		if r.UserID == userID && r.LevelID == levelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) AllExamResults(context.Context) ([]models.ExamResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ExamResult{}, m.exams...), nil
}

func (m *memStore) LevelsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Level, error) {
	var out []models.Level
	for _, id := range ids {
		if l, ok := m.levels[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) QuestionByID(_ context.Context, id uuid.UUID) (*models.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, app_errors.ErrQuestionNotFound
	}
	return &q, nil
}

func (m *memStore) QuestionsByLevel(_ context.Context, levelID uuid.UUID) ([]models.Question, error) {
	var out []models.Question
	for _, v := range m.videos[levelID] {
		for _, q := range m.questions {
			if q.VideoID == v.ID {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

func (m *memStore) InvalidatePlatform(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
	return nil
}

func (m *memStore) questionOf(video models.Video) uuid.UUID {
	for _, q := range m.questions {
		if q.VideoID == video.ID {
			return q.ID
		}
	}
	return uuid.Nil
}
