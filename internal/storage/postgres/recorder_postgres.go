package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

// RecorderPostgres stores question answers (one per user and question) and
// the append-only exam history.
type RecorderPostgres struct {
	db *pgxpool.Pool
	tr *Transactor
}

func NewRecorderPostgres(db *pgxpool.Pool) *RecorderPostgres {
	return &RecorderPostgres{db: db, tr: NewTransactor(db)}
}

const answerColumns = `id, user_id, question_id, correct_words, wrong_words, percentage,
	correct_words_list, wrong_words_list, submitted_at`

func scanAnswer(row pgx.Row) (*models.QuestionAnswer, error) {
	var a models.QuestionAnswer
	err := row.Scan(
		&a.ID, &a.UserID, &a.QuestionID, &a.CorrectWords, &a.WrongWords, &a.Percentage,
		&a.CorrectWordsList, &a.WrongWordsList, &a.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAnswers(rows pgx.Rows) ([]models.QuestionAnswer, error) {
	defer rows.Close()

	answers := []models.QuestionAnswer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, storageErr("failed to scan answer", err)
		}
		answers = append(answers, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate answers", err)
	}
	return answers, nil
}

// SubmitAnswer upserts the user's answer. The question's level must be
// purchased and its video opened.
func (r *RecorderPostgres) SubmitAnswer(ctx context.Context, userID, questionID uuid.UUID, sub models.Submission) (*models.QuestionAnswer, error) {
	var answer *models.QuestionAnswer

	err := r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var videoID, levelID uuid.UUID
		err := tx.QueryRow(ctx, `
			SELECT v.id, v.level_id
			  FROM questions q
			  JOIN videos v ON v.id = q.video_id
			 WHERE q.id = $1
		`, questionID).Scan(&videoID, &levelID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return app_errors.ErrQuestionNotFound
			}
			return storageErr("failed to resolve question level", err)
		}

		var opened *bool
		err = tx.QueryRow(ctx, `
			SELECT vp.is_opened
			  FROM enrollments e
			  LEFT JOIN video_progress vp ON vp.enrollment_id = e.id AND vp.video_id = $3
			 WHERE e.user_id = $1 AND e.level_id = $2
			   FOR SHARE OF e
		`, userID, levelID, videoID).Scan(&opened)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return app_errors.ErrLevelNotPurchased
			}
			return storageErr("failed to check video progress", err)
		}
		if opened == nil || !*opened {
			return app_errors.ErrVideoNotOpened
		}

		a := models.NewQuestionAnswer(userID, questionID, sub, time.Now().UTC())
		query := `
			INSERT INTO question_answers (` + answerColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (user_id, question_id) DO UPDATE
			   SET correct_words      = EXCLUDED.correct_words,
			       wrong_words        = EXCLUDED.wrong_words,
			       percentage         = EXCLUDED.percentage,
			       correct_words_list = EXCLUDED.correct_words_list,
			       wrong_words_list   = EXCLUDED.wrong_words_list,
			       submitted_at       = EXCLUDED.submitted_at
			RETURNING ` + answerColumns

		answer, err = scanAnswer(tx.QueryRow(ctx, query,
			a.ID, a.UserID, a.QuestionID, a.CorrectWords, a.WrongWords, a.Percentage,
			a.CorrectWordsList, a.WrongWordsList, a.SubmittedAt,
		))
		if err != nil {
			return storageErr("failed to upsert answer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answer, nil
}

func (r *RecorderPostgres) Answer(ctx context.Context, userID, questionID uuid.UUID) (*models.QuestionAnswer, error) {
	query := `SELECT ` + answerColumns + ` FROM question_answers WHERE user_id = $1 AND question_id = $2`

	answer, err := scanAnswer(r.db.QueryRow(ctx, query, userID, questionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrAnswerNotFound
		}
		return nil, storageErr("failed to get answer", err)
	}
	return answer, nil
}

func (r *RecorderPostgres) AnswersByQuestion(ctx context.Context, questionID uuid.UUID) ([]models.QuestionAnswer, error) {
	query := `SELECT ` + answerColumns + ` FROM question_answers WHERE question_id = $1 ORDER BY submitted_at DESC, id`

	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, storageErr("failed to query answers", err)
	}
	return collectAnswers(rows)
}

func (r *RecorderPostgres) AnswersByUser(ctx context.Context, userID uuid.UUID) ([]models.QuestionAnswer, error) {
	query := `SELECT ` + answerColumns + ` FROM question_answers WHERE user_id = $1 ORDER BY submitted_at, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, storageErr("failed to query answers", err)
	}
	return collectAnswers(rows)
}

const examColumns = `id, user_id, level_id, type, correct_words, wrong_words, percentage,
	correct_words_list, wrong_words_list, created_at`

func scanExam(row pgx.Row) (*models.ExamResult, error) {
	var e models.ExamResult
	err := row.Scan(
		&e.ID, &e.UserID, &e.LevelID, &e.Type, &e.CorrectWords, &e.WrongWords, &e.Percentage,
		&e.CorrectWordsList, &e.WrongWordsList, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *RecorderPostgres) queryExams(ctx context.Context, query string, args ...any) ([]models.ExamResult, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to query exam results", err)
	}
	defer rows.Close()

	results := []models.ExamResult{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, storageErr("failed to scan exam result", err)
		}
		results = append(results, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate exam results", err)
	}
	return results, nil
}

// SubmitExam appends an exam result and records its score on the
// enrollment. A final exam needs the gate to be open.
func (r *RecorderPostgres) SubmitExam(ctx context.Context, userID, levelID uuid.UUID, examType models.ExamType, sub models.Submission) (*models.ExamResult, *models.Enrollment, error) {
	var (
		result     models.ExamResult
		enrollment *models.Enrollment
	)

	err := r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		enrollment, err = lockEnrollment(ctx, tx, userID, levelID, app_errors.ErrLevelNotPurchased)
		if err != nil {
			return err
		}

		result = models.NewExamResult(userID, levelID, examType, sub, time.Now().UTC())
		if err := enrollment.ApplyExam(examType, result.Percentage); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO exam_results (`+examColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, result.ID, result.UserID, result.LevelID, string(result.Type), result.CorrectWords, result.WrongWords,
			result.Percentage, result.CorrectWordsList, result.WrongWordsList, result.CreatedAt,
		)
		if err != nil {
			return storageErr("failed to insert exam result", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE enrollments
			   SET initial_exam_score = $2,
			       final_exam_score   = $3,
			       score_difference   = $4,
			       is_completed       = $5
			 WHERE id = $1
		`, enrollment.ID, enrollment.InitialExamScore, enrollment.FinalExamScore, enrollment.ScoreDifference, enrollment.IsCompleted)
		if err != nil {
			return storageErr("failed to record exam score", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &result, enrollment, nil
}

func (r *RecorderPostgres) ExamResults(ctx context.Context, userID, levelID uuid.UUID) ([]models.ExamResult, error) {
	query := `SELECT ` + examColumns + ` FROM exam_results WHERE user_id = $1 AND level_id = $2 ORDER BY created_at, id`
	return r.queryExams(ctx, query, userID, levelID)
}

func (r *RecorderPostgres) ExamResultsByUser(ctx context.Context, userID uuid.UUID) ([]models.ExamResult, error) {
	query := `SELECT ` + examColumns + ` FROM exam_results WHERE user_id = $1 ORDER BY created_at, id`
	return r.queryExams(ctx, query, userID)
}

func (r *RecorderPostgres) AllExamResults(ctx context.Context) ([]models.ExamResult, error) {
	query := `SELECT ` + examColumns + ` FROM exam_results ORDER BY created_at DESC, id`
	return r.queryExams(ctx, query)
}
