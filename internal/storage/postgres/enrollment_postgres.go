package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

// EnrollmentPostgres is the progress ledger. Every mutation runs in one
// transaction; completion and exam submission hold the enrollment row lock.
type EnrollmentPostgres struct {
	db *pgxpool.Pool
	tr *Transactor
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db, tr: NewTransactor(db)}
}

const enrollmentColumns = `id, user_id, level_id, is_completed, can_take_final_exam,
	initial_exam_score, final_exam_score, score_difference, created_at`

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	err := row.Scan(
		&e.ID, &e.UserID, &e.LevelID, &e.IsCompleted, &e.CanTakeFinalExam,
		&e.InitialExamScore, &e.FinalExamScore, &e.ScoreDifference, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Enroll creates the enrollment and seeds one progress row per level video.
// A second enrollment for the same pair fails with ErrAlreadyEnrolled.
func (r *EnrollmentPostgres) Enroll(ctx context.Context, userID, levelID uuid.UUID) (*models.Enrollment, []models.VideoProgress, error) {
	var (
		enrollment *models.Enrollment
		progress   []models.VideoProgress
	)

	err := r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO enrollments (id, user_id, level_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, level_id) DO NOTHING
			RETURNING ` + enrollmentColumns

		var err error
		enrollment, err = scanEnrollment(tx.QueryRow(ctx, query, uuid.New(), userID, levelID, time.Now().UTC()))
		if err != nil {
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				return app_errors.ErrAlreadyEnrolled
			case isForeignKeyViolation(err):
				if strings.Contains(UnwrapPgError(err).ConstraintName, "level") {
					return app_errors.ErrLevelNotFound
				}
				return app_errors.ErrUserNotFound
			}
			return storageErr("failed to insert enrollment", err)
		}

		videos, err := videosByLevel(ctx, tx, levelID)
		if err != nil {
			return err
		}

		progress = models.SeedProgress(enrollment.ID, videos)
		return insertProgress(ctx, tx, progress)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, app_errors.Wrap(app_errors.ErrConflict, err)
		}
		return nil, nil, err
	}

	return enrollment, progress, nil
}

// insertProgress skips rows that already exist for their (enrollment, video).
func insertProgress(ctx context.Context, tx pgx.Tx, rows []models.VideoProgress) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO video_progress (id, enrollment_id, video_id, is_opened, is_completed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (enrollment_id, video_id) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, p := range rows {
		batch.Queue(query, p.ID, p.EnrollmentID, p.VideoID, p.IsOpened, p.IsCompleted)
	}

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return storageErr("failed to seed video progress", err)
		}
	}
	if err := br.Close(); err != nil {
		return storageErr("failed to seed video progress", err)
	}
	return nil
}

func videosByLevel(ctx context.Context, db DBTX, levelID uuid.UUID) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE level_id = $1 ORDER BY video_order, id`
	rows, err := db.Query(ctx, query, levelID)
	if err != nil {
		return nil, storageErr("failed to query videos", err)
	}
	return collectVideos(rows)
}

// lockEnrollment locks the (user, level) enrollment row for the rest of tx.
// A missing row is reported as notFound.
func lockEnrollment(ctx context.Context, tx pgx.Tx, userID, levelID uuid.UUID, notFound error) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 AND level_id = $2 FOR UPDATE`

	enrollment, err := scanEnrollment(tx.QueryRow(ctx, query, userID, levelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, storageErr("failed to lock enrollment", err)
	}
	return enrollment, nil
}

// levelProgress returns one row per level video in sequence. Videos added
// after the enrollment was seeded come back closed and incomplete with a nil id.
func levelProgress(ctx context.Context, db DBTX, enrollmentID, levelID uuid.UUID) ([]models.Video, []models.VideoProgress, error) {
	query := `
		SELECT v.id, v.level_id, v.name, v.youtube_link, v.video_order, v.created_at,
		       vp.id, COALESCE(vp.is_opened, FALSE), COALESCE(vp.is_completed, FALSE)
		  FROM videos v
		  LEFT JOIN video_progress vp ON vp.video_id = v.id AND vp.enrollment_id = $1
		 WHERE v.level_id = $2
		 ORDER BY v.video_order, v.id
	`
	rows, err := db.Query(ctx, query, enrollmentID, levelID)
	if err != nil {
		return nil, nil, storageErr("failed to query video progress", err)
	}
	defer rows.Close()

	var (
		videos   []models.Video
		progress []models.VideoProgress
	)
	for rows.Next() {
		var (
			v  models.Video
			p  models.VideoProgress
			id *uuid.UUID
		)
		if err := rows.Scan(&v.ID, &v.LevelID, &v.Name, &v.YoutubeLink, &v.Order, &v.CreatedAt,
			&id, &p.IsOpened, &p.IsCompleted); err != nil {
			return nil, nil, storageErr("failed to scan video progress", err)
		}
		if id != nil {
			p.ID = *id
		}
		p.EnrollmentID = enrollmentID
		p.VideoID = v.ID
		videos = append(videos, v)
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageErr("failed to iterate video progress", err)
	}
	return videos, progress, nil
}

// CompleteVideo marks the video complete, opens the next one in sequence and
// unlocks the final exam once every level video is complete.
func (r *EnrollmentPostgres) CompleteVideo(ctx context.Context, userID, levelID, videoID uuid.UUID) (*models.VideoProgress, *models.Enrollment, error) {
	var (
		completed  models.VideoProgress
		enrollment *models.Enrollment
	)

	err := r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		enrollment, err = lockEnrollment(ctx, tx, userID, levelID, app_errors.ErrNotEnrolled)
		if err != nil {
			return err
		}

		videos, progress, err := levelProgress(ctx, tx, enrollment.ID, levelID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range progress {
			if progress[i].VideoID == videoID && progress[i].ID != uuid.Nil {
				idx = i
				break
			}
		}
		if idx < 0 {
			return app_errors.ErrVideoNotAccessible
		}

		_, err = tx.Exec(ctx, `UPDATE video_progress SET is_completed = TRUE WHERE id = $1`, progress[idx].ID)
		if err != nil {
			return storageErr("failed to complete video", err)
		}
		progress[idx].IsCompleted = true
		completed = progress[idx]

		if next, ok := models.NextVideo(videos, videoID); ok {
			openQuery := `
				INSERT INTO video_progress (id, enrollment_id, video_id, is_opened, is_completed)
				VALUES ($1, $2, $3, TRUE, FALSE)
				ON CONFLICT (enrollment_id, video_id) DO UPDATE SET is_opened = TRUE
			`
			if _, err := tx.Exec(ctx, openQuery, uuid.New(), enrollment.ID, next.ID); err != nil {
				return storageErr("failed to open next video", err)
			}
		}

		if !enrollment.CanTakeFinalExam && models.AllCompleted(progress) {
			_, err = tx.Exec(ctx, `UPDATE enrollments SET can_take_final_exam = TRUE WHERE id = $1`, enrollment.ID)
			if err != nil {
				return storageErr("failed to unlock final exam", err)
			}
			enrollment.CanTakeFinalExam = true
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &completed, enrollment, nil
}

func (r *EnrollmentPostgres) Enrollment(ctx context.Context, userID, levelID uuid.UUID) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 AND level_id = $2`

	enrollment, err := scanEnrollment(r.db.QueryRow(ctx, query, userID, levelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrLevelNotPurchased
		}
		return nil, storageErr("failed to get enrollment", err)
	}
	return enrollment, nil
}

func (r *EnrollmentPostgres) EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, storageErr("failed to query enrollments", err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, storageErr("failed to scan enrollment", err)
		}
		enrollments = append(enrollments, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate enrollments", err)
	}
	return enrollments, nil
}

// Progress returns the level's videos in sequence with the enrollment's flags.
func (r *EnrollmentPostgres) Progress(ctx context.Context, enrollment models.Enrollment) ([]models.Video, []models.VideoProgress, error) {
	return levelProgress(ctx, r.db, enrollment.ID, enrollment.LevelID)
}
