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

type VideoPostgres struct {
	db *pgxpool.Pool
	tr *Transactor
}

func NewVideoPostgres(db *pgxpool.Pool) *VideoPostgres {
	return &VideoPostgres{db: db, tr: NewTransactor(db)}
}

const videoColumns = `id, level_id, name, youtube_link, video_order, created_at`

func scanVideo(row pgx.Row) (*models.Video, error) {
	var v models.Video
	if err := row.Scan(&v.ID, &v.LevelID, &v.Name, &v.YoutubeLink, &v.Order, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, storageErr("failed to scan video", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate videos", err)
	}
	return videos, nil
}

// CreateVideo appends the video after the level's last one unless an order
// is given.
func (r *VideoPostgres) CreateVideo(ctx context.Context, video models.Video) (*models.Video, error) {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	video.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO videos (id, level_id, name, youtube_link, video_order, created_at)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text,
		       CASE WHEN $5::int > 0 THEN $5::int ELSE COALESCE(MAX(video_order), 0) + 1 END,
		       $6::timestamptz
		  FROM videos WHERE level_id = $2::uuid
		RETURNING video_order
	`
	err := r.db.QueryRow(ctx, query,
		video.ID, video.LevelID, video.Name, video.YoutubeLink, video.Order, video.CreatedAt,
	).Scan(&video.Order)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return nil, app_errors.ErrLevelNotFound
		case isUniqueViolation(err):
			return nil, app_errors.ErrDuplicateVideo
		}
		return nil, storageErr("failed to insert video", err)
	}
	return &video, nil
}

func (r *VideoPostgres) VideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	video, err := scanVideo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrVideoNotFound
		}
		return nil, storageErr("failed to get video", err)
	}
	return video, nil
}

// VideosByLevel returns the level's videos in sequence.
func (r *VideoPostgres) VideosByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE level_id = $1 ORDER BY video_order, id`

	rows, err := r.db.Query(ctx, query, levelID)
	if err != nil {
		return nil, storageErr("failed to query videos", err)
	}
	return collectVideos(rows)
}

func (r *VideoPostgres) AllVideos(ctx context.Context) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY level_id, video_order, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, storageErr("failed to query videos", err)
	}
	return collectVideos(rows)
}

func (r *VideoPostgres) UpdateVideo(ctx context.Context, id uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	query := `
		UPDATE videos
		   SET name         = COALESCE($2, name),
		       youtube_link = COALESCE($3, youtube_link),
		       video_order  = COALESCE($4, video_order)
		 WHERE id = $1
		RETURNING ` + videoColumns

	video, err := scanVideo(r.db.QueryRow(ctx, query, id, upd.Name, upd.YoutubeLink, upd.Order))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrVideoNotFound
		}
		if isUniqueViolation(err) {
			return nil, app_errors.ErrDuplicateVideo
		}
		return nil, storageErr("failed to update video", err)
	}
	return video, nil
}

// DeleteVideo removes the video together with its questions and progress rows.
func (r *VideoPostgres) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return storageErr("failed to delete video", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrVideoNotFound
	}
	return nil
}

// SwapVideos exchanges the sequence positions of two videos of one level.
func (r *VideoPostgres) SwapVideos(ctx context.Context, firstID, secondID uuid.UUID) ([]models.Video, error) {
	var swapped []models.Video

	err := r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ANY($1) ORDER BY id FOR UPDATE`
		rows, err := tx.Query(ctx, query, []uuid.UUID{firstID, secondID})
		if err != nil {
			return storageErr("failed to lock videos", err)
		}
		locked, err := collectVideos(rows)
		if err != nil {
			return err
		}
		if len(locked) != 2 {
			return app_errors.ErrVideoNotFound
		}
		if locked[0].LevelID != locked[1].LevelID {
			return app_errors.ErrVideosDiffer
		}

		a, b := locked[0], locked[1]
		_, err = tx.Exec(ctx, `
			UPDATE videos
			   SET video_order = CASE id WHEN $1 THEN $3::int WHEN $2 THEN $4::int END
			 WHERE id IN ($1, $2)
		`, a.ID, b.ID, b.Order, a.Order)
		if err != nil {
			return storageErr("failed to swap videos", err)
		}

		a.Order, b.Order = b.Order, a.Order
		swapped = []models.Video{a, b}
		return nil
	})
	if err != nil {
		return nil, err
	}

	models.SortVideos(swapped)
	return swapped, nil
}

const questionColumns = `q.id, q.video_id, q.text, q.question_order, q.created_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	if err := row.Scan(&q.ID, &q.VideoID, &q.Text, &q.Order, &q.CreatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

func collectQuestions(rows pgx.Rows) ([]models.Question, error) {
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, storageErr("failed to scan question", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate questions", err)
	}
	return questions, nil
}

func (r *VideoPostgres) CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error) {
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	question.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO questions (id, video_id, text, question_order, created_at)
		SELECT $1::uuid, $2::uuid, $3::text,
		       CASE WHEN $4::int > 0 THEN $4::int ELSE COALESCE(MAX(question_order), 0) + 1 END,
		       $5::timestamptz
		  FROM questions WHERE video_id = $2::uuid
		RETURNING question_order
	`
	err := r.db.QueryRow(ctx, query,
		question.ID, question.VideoID, question.Text, question.Order, question.CreatedAt,
	).Scan(&question.Order)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, app_errors.ErrVideoNotFound
		}
		return nil, storageErr("failed to insert question", err)
	}
	return &question, nil
}

func (r *VideoPostgres) QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q WHERE q.id = $1`

	question, err := scanQuestion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrQuestionNotFound
		}
		return nil, storageErr("failed to get question", err)
	}
	return question, nil
}

func (r *VideoPostgres) QuestionsByVideo(ctx context.Context, videoID uuid.UUID) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q WHERE q.video_id = $1 ORDER BY q.question_order, q.id`

	rows, err := r.db.Query(ctx, query, videoID)
	if err != nil {
		return nil, storageErr("failed to query questions", err)
	}
	return collectQuestions(rows)
}

// QuestionsByLevel returns every question of the level's videos, grouped by
// video sequence.
func (r *VideoPostgres) QuestionsByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		  FROM questions q
		  JOIN videos v ON v.id = q.video_id
		 WHERE v.level_id = $1
		 ORDER BY v.video_order, v.id, q.question_order, q.id
	`
	rows, err := r.db.Query(ctx, query, levelID)
	if err != nil {
		return nil, storageErr("failed to query level questions", err)
	}
	return collectQuestions(rows)
}

func (r *VideoPostgres) AllQuestions(ctx context.Context) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q ORDER BY q.video_id, q.question_order, q.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, storageErr("failed to query questions", err)
	}
	return collectQuestions(rows)
}

func (r *VideoPostgres) UpdateQuestion(ctx context.Context, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error) {
	query := `
		UPDATE questions q
		   SET text           = COALESCE($2, q.text),
		       question_order = COALESCE($3, q.question_order)
		 WHERE q.id = $1
		RETURNING ` + questionColumns

	question, err := scanQuestion(r.db.QueryRow(ctx, query, id, upd.Text, upd.Order))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrQuestionNotFound
		}
		return nil, storageErr("failed to update question", err)
	}
	return question, nil
}

// DeleteQuestion removes the question and its answers.
func (r *VideoPostgres) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return storageErr("failed to delete question", err)
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrQuestionNotFound
	}
	return nil
}
